package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"silant-backend/internal/access"
	e "silant-backend/internal/errors"
	"silant-backend/internal/filter"
	"silant-backend/internal/model"
)

const machineOrder = "machines.shipment_date, machines.id"

func preloadMachine(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Equipment").
		Preload("Engine").
		Preload("Transmission").
		Preload("DrivingAxle").
		Preload("SteeringAxle").
		Preload("Client").
		Preload("ServiceCompany")
}

// ListMachines returns the machines p may see, narrowed by opts.Scopes.
func (s *gormStore) ListMachines(ctx context.Context, p access.Principal, opts ListOptions) (Page[model.Machine], error) {
	q := s.db.WithContext(ctx).Model(&model.Machine{}).
		Scopes(access.Machines(p)).
		Scopes(opts.Scopes...)
	page, err := paginate[model.Machine](q, opts, machineOrder, preloadMachine)
	if err != nil {
		return Page[model.Machine]{}, fmt.Errorf("failed to list machines: %w", err)
	}
	return page, nil
}

// SearchMachines is the unauthenticated serial lookup. It ignores visibility
// and returns nothing for an empty term.
func (s *gormStore) SearchMachines(ctx context.Context, serial string, opts ListOptions) (Page[model.Machine], error) {
	q := s.db.WithContext(ctx).Model(&model.Machine{}).Scopes(filter.Preview(serial))
	page, err := paginate[model.Machine](q, opts, machineOrder, preloadMachine)
	if err != nil {
		return Page[model.Machine]{}, fmt.Errorf("failed to search machines: %w", err)
	}
	return page, nil
}

// GetMachine returns one machine with its references loaded.
func (s *gormStore) GetMachine(ctx context.Context, p access.Principal, id int64) (model.Machine, error) {
	var machine model.Machine
	err := s.db.WithContext(ctx).
		Scopes(access.Machines(p), preloadMachine).
		First(&machine, "machines.id = ?", id).Error
	if err != nil {
		return model.Machine{}, notFound(err, "machine", id)
	}
	return machine, nil
}

// CreateMachine inserts a machine. A taken serial yields e.ErrDuplicateSerial.
func (s *gormStore) CreateMachine(ctx context.Context, machine *model.Machine) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(machine).Error; err != nil {
		return machineWriteError(err, machine.Serial)
	}
	s.logger.Info("machine created", zap.Int64("machine_id", machine.ID), zap.String("serial", machine.Serial))
	return nil
}

// UpdateMachine overwrites every column of a visible machine. Child records
// keep their derived service company until they are saved again.
func (s *gormStore) UpdateMachine(ctx context.Context, p access.Principal, machine *model.Machine) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireVisible(tx, "machines", access.Machines(p), "machine", machine.ID); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations, "CreatedAt").Save(machine).Error; err != nil {
			return machineWriteError(err, machine.Serial)
		}
		return nil
	})
}

// DeleteMachine removes a machine together with its maintenance and claims.
func (s *gormStore) DeleteMachine(ctx context.Context, p access.Principal, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireVisible(tx, "machines", access.Machines(p), "machine", id); err != nil {
			return err
		}
		if err := tx.Where("machine_id = ?", id).Delete(&model.Claim{}).Error; err != nil {
			return fmt.Errorf("failed to delete claims of machine %d: %w", id, err)
		}
		if err := tx.Where("machine_id = ?", id).Delete(&model.Maintenance{}).Error; err != nil {
			return fmt.Errorf("failed to delete maintenance of machine %d: %w", id, err)
		}
		if err := tx.Delete(&model.Machine{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete machine %d: %w", id, err)
		}
		s.logger.Info("machine deleted", zap.Int64("machine_id", id))
		return nil
	})
}

// ResyncMachine re-saves every maintenance and claim record of a machine so
// their derived fields match the machine's current assignment.
func (s *gormStore) ResyncMachine(ctx context.Context, p access.Principal, id int64) (ResyncResult, error) {
	var result ResyncResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireVisible(tx, "machines", access.Machines(p), "machine", id); err != nil {
			return err
		}

		var maintenance []model.Maintenance
		if err := tx.Where("machine_id = ?", id).Find(&maintenance).Error; err != nil {
			return fmt.Errorf("failed to load maintenance of machine %d: %w", id, err)
		}
		for i := range maintenance {
			if err := tx.Omit(clause.Associations).Save(&maintenance[i]).Error; err != nil {
				return fmt.Errorf("failed to resync maintenance %d: %w", maintenance[i].ID, err)
			}
		}

		var claims []model.Claim
		if err := tx.Where("machine_id = ?", id).Find(&claims).Error; err != nil {
			return fmt.Errorf("failed to load claims of machine %d: %w", id, err)
		}
		for i := range claims {
			if err := tx.Omit(clause.Associations).Save(&claims[i]).Error; err != nil {
				return fmt.Errorf("failed to resync claim %d: %w", claims[i].ID, err)
			}
		}

		result = ResyncResult{Maintenance: len(maintenance), Claims: len(claims)}
		return nil
	})
	if err != nil {
		return ResyncResult{}, err
	}
	s.logger.Info("machine children resynced",
		zap.Int64("machine_id", id),
		zap.Int("maintenance", result.Maintenance),
		zap.Int("claims", result.Claims),
	)
	return result, nil
}

func machineWriteError(err error, serial string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("serial %q: %w", serial, e.ErrDuplicateSerial)
	}
	return fmt.Errorf("failed to save machine %q: %w", serial, err)
}
