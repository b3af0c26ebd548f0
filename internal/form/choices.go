package form

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"silant-backend/internal/access"
	"silant-backend/internal/model"
)

// Choice is one selectable machine.
type Choice struct {
	ID     int64  `json:"id"`
	Serial string `json:"serial"`
}

// MachineChoices lists the machines fc may attach records to, by serial.
func MachineChoices(ctx context.Context, db *gorm.DB, fc Context) ([]Choice, error) {
	choices := []Choice{}
	err := db.WithContext(ctx).Model(&model.Machine{}).
		Scopes(access.Machines(fc.Principal)).
		Select("machines.id", "machines.serial").
		Order("machines.serial").
		Find(&choices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list machine choices: %w", err)
	}
	return choices, nil
}
