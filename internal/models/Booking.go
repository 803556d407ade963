package models

import (
	"encoding/json"
	"time"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
)

type BookingStatus string

const (
	BookingOpen      BookingStatus = "open"
	BookingAccepted  BookingStatus = "accepted"
	BookingStarted   BookingStatus = "started"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking is an offer broadcast to the driver pool. It leaves open at most
// once, and an accepted booking always carries both assignment ids.
type Booking struct {
	Base
	PickupAddress       string        `json:"pickup_address"`
	PickupLat           *float64      `json:"pickup_lat"`
	PickupLng           *float64      `json:"pickup_lng"`
	DropAddress         string        `json:"drop_address"`
	DropLat             *float64      `json:"drop_lat"`
	DropLng             *float64      `json:"drop_lng"`
	VehicleTypeRequired string        `json:"vehicle_type_required" gorm:"index"`
	SeatsRequired       int           `json:"seats_required"`
	FareEstimate        float64       `json:"fare_estimate"`
	CustomerName        string        `json:"customer_name"`
	CustomerPhone       string        `json:"customer_phone"`
	Status              BookingStatus `json:"status" gorm:"type:text;index;not null"`
	AssignedDriverID    *string       `json:"assigned_driver_id" gorm:"type:uuid;index"`
	AssignedVehicleID   *string       `json:"assigned_vehicle_id" gorm:"type:uuid"`
	AcceptedAt          *time.Time    `json:"accepted_at"`
	CancelledAt         *time.Time    `json:"cancelled_at"`
	CancellationReason  *string       `json:"cancellation_reason"`
	NotificationSent    bool          `json:"notification_sent" gorm:"not null;default:false"`
}

// Cancellable reports whether the assigned driver may still cancel.
func (b *Booking) Cancellable() bool {
	return b.Status == BookingOpen || b.Status == BookingAccepted
}

// AssignedTo reports whether driverID holds the booking.
func (b *Booking) AssignedTo(driverID string) bool {
	return b.AssignedDriverID != nil && *b.AssignedDriverID == driverID
}

// TripGeoJSON renders pickup -> drop as a GeoJSON LineString. It returns nil
// when either end has no coordinates.
func (b *Booking) TripGeoJSON() (json.RawMessage, error) {
	if b.PickupLat == nil || b.PickupLng == nil || b.DropLat == nil || b.DropLng == nil {
		return nil, nil
	}
	line, err := geom.NewLineString(geom.XY).SetCoords([]geom.Coord{
		{*b.PickupLng, *b.PickupLat},
		{*b.DropLng, *b.DropLat},
	})
	if err != nil {
		return nil, err
	}
	line.SetSRID(4326)
	raw, err := gjson.Marshal(line)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(raw), nil
}
