package model

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ErrRecoveryBeforeRefusal is returned when a claim would persist with a
// negative downtime.
var ErrRecoveryBeforeRefusal = errors.New("recovery date is earlier than refusal date")

// Claim is a logged failure against a machine.
type Claim struct {
	ID                 int64     `gorm:"primaryKey"`
	RefusalDate        time.Time `gorm:"type:date;index;not null"`
	OperatingTime      int       `gorm:"not null;default:0"`
	RefusalNodeID      int64     `gorm:"index;not null"`
	RefusalDescription string    `gorm:"size:1000;not null"`
	RecoveryMethodID   int64     `gorm:"index;not null"`
	RepairParts        string    `gorm:"size:1000"`
	RecoveryDate       time.Time `gorm:"type:date;not null"`
	// Downtime is recovery minus refusal in whole days, recomputed on every save.
	Downtime  int   `gorm:"not null;default:0"`
	MachineID int64 `gorm:"index;not null"`
	// ServiceCompanyID is copied from the machine on every save.
	ServiceCompanyID int64 `gorm:"index;not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Associations
	RefusalNode    RefusalNode    `gorm:"constraint:OnDelete:CASCADE"`
	RecoveryMethod RecoveryMethod `gorm:"constraint:OnDelete:CASCADE"`
	Machine        Machine        `gorm:"constraint:OnDelete:CASCADE"`
	ServiceCompany ServiceCompany `gorm:"constraint:OnDelete:CASCADE"`
}

// DeriveFrom overwrites the fields that are never taken from the caller.
func (c *Claim) DeriveFrom(machine Machine) {
	c.ServiceCompanyID = machine.ServiceCompanyID
	c.Downtime = DaysBetween(c.RefusalDate, c.RecoveryDate)
}

// BeforeSave runs on every create and full save.
func (c *Claim) BeforeSave(tx *gorm.DB) error {
	if CivilDate(c.RecoveryDate).Before(CivilDate(c.RefusalDate)) {
		return fmt.Errorf("claim for machine %d: %w", c.MachineID, ErrRecoveryBeforeRefusal)
	}
	machine, err := loadOwningMachine(tx, c.MachineID)
	if err != nil {
		return err
	}
	c.DeriveFrom(machine)
	return nil
}
