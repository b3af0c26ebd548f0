package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	e "silant-backend/internal/errors"
	"silant-backend/internal/model"
)

// ListReferences returns every row of one reference table ordered by title.
func (s *gormStore) ListReferences(ctx context.Context, kind model.ReferenceKind) ([]model.Reference, error) {
	refs := []model.Reference{}
	if err := s.db.WithContext(ctx).Table(kind.Table).Order("title, id").Find(&refs).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind.Name, err)
	}
	return refs, nil
}

// GetReference returns one reference row.
func (s *gormStore) GetReference(ctx context.Context, kind model.ReferenceKind, id int64) (model.Reference, error) {
	var ref model.Reference
	if err := s.db.WithContext(ctx).Table(kind.Table).Where("id = ?", id).Take(&ref).Error; err != nil {
		return model.Reference{}, notFound(err, kind.Name, id)
	}
	return ref, nil
}

// CreateReference inserts a row, defaulting its description to the kind's label.
func (s *gormStore) CreateReference(ctx context.Context, kind model.ReferenceKind, ref *model.Reference) error {
	if ref.Title == "" {
		ref.Title = "noname"
	}
	if ref.Description == "" {
		ref.Description = kind.Label
	}
	if err := s.db.WithContext(ctx).Table(kind.Table).Create(ref).Error; err != nil {
		return fmt.Errorf("failed to create %s: %w", kind.Name, err)
	}
	s.logger.Info("reference created", zap.String("kind", kind.Name), zap.Int64("id", ref.ID))
	return nil
}

// UpdateReference overwrites title and description of an existing row.
func (s *gormStore) UpdateReference(ctx context.Context, kind model.ReferenceKind, ref *model.Reference) error {
	if ref.Description == "" {
		ref.Description = kind.Label
	}
	res := s.db.WithContext(ctx).Table(kind.Table).
		Where("id = ?", ref.ID).
		Updates(map[string]any{"title": ref.Title, "description": ref.Description})
	if res.Error != nil {
		return fmt.Errorf("failed to update %s %d: %w", kind.Name, ref.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s %d: %w", kind.Name, ref.ID, e.ErrNotFound)
	}
	return nil
}

// DeleteReference removes a row that no record points at.
func (s *gormStore) DeleteReference(ctx context.Context, kind model.ReferenceKind, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var users int64
		if err := tx.Table(kind.UsedBy).Where(kind.ForeignKey+" = ?", id).Count(&users).Error; err != nil {
			return fmt.Errorf("failed to check usage of %s %d: %w", kind.Name, id, err)
		}
		if users > 0 {
			return fmt.Errorf("%s %d is used by %d %s: %w", kind.Name, id, users, kind.UsedBy, e.ErrReferenceInUse)
		}

		res := tx.Table(kind.Table).Where("id = ?", id).Delete(&model.Reference{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete %s %d: %w", kind.Name, id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%s %d: %w", kind.Name, id, e.ErrNotFound)
		}
		return nil
	})
}

// ReferenceExists reports whether table has a row with id.
func (s *gormStore) ReferenceExists(ctx context.Context, table string, id int64) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Table(table).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to look up %s %d: %w", table, id, err)
	}
	return n > 0, nil
}
