package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Maintenance is a logged service event against a machine.
type Maintenance struct {
	ID                   int64     `gorm:"primaryKey"`
	MaintenanceTypeID    int64     `gorm:"index;not null"`
	MaintenanceDate      time.Time `gorm:"type:date;index;not null"`
	OperatingTime        int       `gorm:"not null;default:0"`
	OrderNumber          string    `gorm:"size:255;not null"`
	OrderDate            time.Time `gorm:"type:date;not null"`
	MaintenanceCompanyID int64     `gorm:"index;not null"`
	MachineID            int64     `gorm:"index;not null"`
	// ServiceCompanyID is copied from the machine on every save.
	ServiceCompanyID int64 `gorm:"index;not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Associations
	MaintenanceType    MaintenanceType    `gorm:"constraint:OnDelete:CASCADE"`
	MaintenanceCompany MaintenanceCompany `gorm:"constraint:OnDelete:CASCADE"`
	Machine            Machine            `gorm:"constraint:OnDelete:CASCADE"`
	ServiceCompany     ServiceCompany     `gorm:"constraint:OnDelete:CASCADE"`
}

// TableName keeps the singular table name used by the API.
func (Maintenance) TableName() string { return "maintenance" }

// DeriveFrom overwrites the fields that are never taken from the caller.
func (m *Maintenance) DeriveFrom(machine Machine) {
	m.ServiceCompanyID = machine.ServiceCompanyID
}

// BeforeSave runs on every create and full save.
func (m *Maintenance) BeforeSave(tx *gorm.DB) error {
	machine, err := loadOwningMachine(tx, m.MachineID)
	if err != nil {
		return err
	}
	m.DeriveFrom(machine)
	return nil
}

// loadOwningMachine reads the machine's current assignment inside the
// statement's transaction.
func loadOwningMachine(tx *gorm.DB, machineID int64) (Machine, error) {
	var machine Machine
	err := tx.Session(&gorm.Session{NewDB: true}).
		Select("id", "service_company_id").
		First(&machine, machineID).Error
	if err != nil {
		return Machine{}, fmt.Errorf("failed to load machine %d: %w", machineID, err)
	}
	return machine, nil
}
