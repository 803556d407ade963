package models

type Vehicle struct {
	Base
	DriverID    string             `json:"driver_id" gorm:"type:uuid;index;not null"`
	VehicleType string             `json:"vehicle_type" gorm:"index;not null"` // SUV, Sedan, Hatchback, Mini Bus, Bus, Heavy
	Seats       int                `json:"seats"`
	ModelNo     string             `json:"model_no"`
	RcNumber    string             `json:"rc_number"`
	Status      VerificationStatus `json:"status" gorm:"type:text;not null"`
	IsActive    bool               `json:"is_active"`
}

// Assignable holds only for verified, active vehicles.
func (v *Vehicle) Assignable() bool {
	return v.Status == VerificationVerified && v.IsActive
}
