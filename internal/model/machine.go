package model

import "time"

// Machine is a shipped unit of equipment, identified by its serial number.
type Machine struct {
	ID     int64  `gorm:"primaryKey"`
	Serial string `gorm:"uniqueIndex;size:255;not null"`

	EquipmentID        int64  `gorm:"index;not null"`
	EngineID           int64  `gorm:"index;not null"`
	EngineSerial       string `gorm:"size:255;not null"`
	TransmissionID     int64  `gorm:"index;not null"`
	TransmissionSerial string `gorm:"size:255;not null"`
	DrivingAxleID      int64  `gorm:"index;not null"`
	DrivingAxleSerial  string `gorm:"size:255;not null"`
	SteeringAxleID     int64  `gorm:"index;not null"`
	SteeringAxleSerial string `gorm:"size:255;not null"`

	SupplyContract  string    `gorm:"size:255;not null"`
	ShipmentDate    time.Time `gorm:"type:date;index;not null"`
	EndConsumer     string    `gorm:"size:255;not null"`
	ShippingAddress string    `gorm:"size:255;not null"`
	Options         string    `gorm:"size:1000;not null;default:Standard"`

	ClientID         int64 `gorm:"index;not null"`
	ServiceCompanyID int64 `gorm:"index;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// Associations
	Equipment      Equipment      `gorm:"constraint:OnDelete:CASCADE"`
	Engine         Engine         `gorm:"constraint:OnDelete:CASCADE"`
	Transmission   Transmission   `gorm:"constraint:OnDelete:CASCADE"`
	DrivingAxle    DrivingAxle    `gorm:"constraint:OnDelete:CASCADE"`
	SteeringAxle   SteeringAxle   `gorm:"constraint:OnDelete:CASCADE"`
	Client         Client         `gorm:"constraint:OnDelete:CASCADE"`
	ServiceCompany ServiceCompany `gorm:"constraint:OnDelete:CASCADE"`
}
