package models

type DeviceToken struct {
	Base
	DriverID string `json:"driver_id" gorm:"type:uuid;index;not null"`
	Token    string `json:"token" gorm:"uniqueIndex;not null"`
	Platform string `json:"platform"` // android, ios
}
