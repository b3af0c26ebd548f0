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
	"silant-backend/internal/model"
)

const (
	maintenanceOrder = "maintenance.maintenance_date, maintenance.id"
	claimOrder       = "claims.refusal_date, claims.id"
)

func preloadMaintenance(db *gorm.DB) *gorm.DB {
	return db.
		Preload("MaintenanceType").
		Preload("MaintenanceCompany").
		Preload("Machine").
		Preload("ServiceCompany")
}

func preloadClaim(db *gorm.DB) *gorm.DB {
	return db.
		Preload("RefusalNode").
		Preload("RecoveryMethod").
		Preload("Machine").
		Preload("ServiceCompany")
}

// ListMaintenance returns the maintenance records p may see.
func (s *gormStore) ListMaintenance(ctx context.Context, p access.Principal, opts ListOptions) (Page[model.Maintenance], error) {
	q := s.db.WithContext(ctx).Model(&model.Maintenance{}).
		Scopes(access.Maintenance(p)).
		Scopes(opts.Scopes...)
	page, err := paginate[model.Maintenance](q, opts, maintenanceOrder, preloadMaintenance)
	if err != nil {
		return Page[model.Maintenance]{}, fmt.Errorf("failed to list maintenance: %w", err)
	}
	return page, nil
}

// GetMaintenance returns one maintenance record.
func (s *gormStore) GetMaintenance(ctx context.Context, p access.Principal, id int64) (model.Maintenance, error) {
	var m model.Maintenance
	err := s.db.WithContext(ctx).
		Scopes(access.Maintenance(p), preloadMaintenance).
		First(&m, "maintenance.id = ?", id).Error
	if err != nil {
		return model.Maintenance{}, notFound(err, "maintenance", id)
	}
	return m, nil
}

// CreateMaintenance inserts a record. Its service company is taken from the machine.
func (s *gormStore) CreateMaintenance(ctx context.Context, m *model.Maintenance) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
		return recordWriteError(err, "maintenance")
	}
	s.logger.Info("maintenance created",
		zap.Int64("maintenance_id", m.ID),
		zap.Int64("machine_id", m.MachineID),
		zap.Int64("service_company_id", m.ServiceCompanyID),
	)
	return nil
}

// UpdateMaintenance overwrites a visible record and re-derives its service company.
func (s *gormStore) UpdateMaintenance(ctx context.Context, p access.Principal, m *model.Maintenance) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireVisible(tx, "maintenance", access.Maintenance(p), "maintenance", m.ID); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations, "CreatedAt").Save(m).Error; err != nil {
			return recordWriteError(err, "maintenance")
		}
		return nil
	})
}

// DeleteMaintenance removes a visible record.
func (s *gormStore) DeleteMaintenance(ctx context.Context, p access.Principal, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireVisible(tx, "maintenance", access.Maintenance(p), "maintenance", id); err != nil {
			return err
		}
		if err := tx.Delete(&model.Maintenance{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete maintenance %d: %w", id, err)
		}
		return nil
	})
}

// ListClaims returns the claims p may see.
func (s *gormStore) ListClaims(ctx context.Context, p access.Principal, opts ListOptions) (Page[model.Claim], error) {
	q := s.db.WithContext(ctx).Model(&model.Claim{}).
		Scopes(access.Claims(p)).
		Scopes(opts.Scopes...)
	page, err := paginate[model.Claim](q, opts, claimOrder, preloadClaim)
	if err != nil {
		return Page[model.Claim]{}, fmt.Errorf("failed to list claims: %w", err)
	}
	return page, nil
}

// GetClaim returns one claim.
func (s *gormStore) GetClaim(ctx context.Context, p access.Principal, id int64) (model.Claim, error) {
	var c model.Claim
	err := s.db.WithContext(ctx).
		Scopes(access.Claims(p), preloadClaim).
		First(&c, "claims.id = ?", id).Error
	if err != nil {
		return model.Claim{}, notFound(err, "claim", id)
	}
	return c, nil
}

// CreateClaim inserts a claim, deriving its service company and downtime.
func (s *gormStore) CreateClaim(ctx context.Context, c *model.Claim) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error; err != nil {
		return recordWriteError(err, "claim")
	}
	s.logger.Info("claim created",
		zap.Int64("claim_id", c.ID),
		zap.Int64("machine_id", c.MachineID),
		zap.Int("downtime", c.Downtime),
	)
	return nil
}

// UpdateClaim overwrites a visible claim and re-derives its computed fields.
func (s *gormStore) UpdateClaim(ctx context.Context, p access.Principal, c *model.Claim) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireVisible(tx, "claims", access.Claims(p), "claim", c.ID); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations, "CreatedAt").Save(c).Error; err != nil {
			return recordWriteError(err, "claim")
		}
		return nil
	})
}

// DeleteClaim removes a visible claim.
func (s *gormStore) DeleteClaim(ctx context.Context, p access.Principal, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireVisible(tx, "claims", access.Claims(p), "claim", id); err != nil {
			return err
		}
		if err := tx.Delete(&model.Claim{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete claim %d: %w", id, err)
		}
		return nil
	})
}

// recordWriteError turns save-hook failures into field errors.
func recordWriteError(err error, what string) error {
	switch {
	case errors.Is(err, model.ErrRecoveryBeforeRefusal):
		return e.NewValidationError("recovery_date", "must not be earlier than the refusal date")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return e.NewValidationError("machine", "select a valid choice")
	default:
		return fmt.Errorf("failed to save %s: %w", what, err)
	}
}
