package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"silant-backend/internal/access"
	e "silant-backend/internal/errors"
	"silant-backend/internal/model"
)

// Store defines the interface for all database operations.
//
// Methods that take a Principal only ever see the rows that principal may
// see; records outside that set are reported as e.ErrNotFound.
type Store interface {
	DB() *gorm.DB

	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id int64) (model.User, error)
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
	CountUsers(ctx context.Context) (int64, error)

	ListClients(ctx context.Context) ([]model.Client, error)
	CreateClient(ctx context.Context, client *model.Client) error
	ListServiceCompanies(ctx context.Context) ([]model.ServiceCompany, error)
	CreateServiceCompany(ctx context.Context, company *model.ServiceCompany) error

	ListReferences(ctx context.Context, kind model.ReferenceKind) ([]model.Reference, error)
	GetReference(ctx context.Context, kind model.ReferenceKind, id int64) (model.Reference, error)
	CreateReference(ctx context.Context, kind model.ReferenceKind, ref *model.Reference) error
	UpdateReference(ctx context.Context, kind model.ReferenceKind, ref *model.Reference) error
	DeleteReference(ctx context.Context, kind model.ReferenceKind, id int64) error
	ReferenceExists(ctx context.Context, table string, id int64) (bool, error)

	ListMachines(ctx context.Context, p access.Principal, opts ListOptions) (Page[model.Machine], error)
	SearchMachines(ctx context.Context, serial string, opts ListOptions) (Page[model.Machine], error)
	GetMachine(ctx context.Context, p access.Principal, id int64) (model.Machine, error)
	CreateMachine(ctx context.Context, machine *model.Machine) error
	UpdateMachine(ctx context.Context, p access.Principal, machine *model.Machine) error
	DeleteMachine(ctx context.Context, p access.Principal, id int64) error
	ResyncMachine(ctx context.Context, p access.Principal, id int64) (ResyncResult, error)

	ListMaintenance(ctx context.Context, p access.Principal, opts ListOptions) (Page[model.Maintenance], error)
	GetMaintenance(ctx context.Context, p access.Principal, id int64) (model.Maintenance, error)
	CreateMaintenance(ctx context.Context, m *model.Maintenance) error
	UpdateMaintenance(ctx context.Context, p access.Principal, m *model.Maintenance) error
	DeleteMaintenance(ctx context.Context, p access.Principal, id int64) error

	ListClaims(ctx context.Context, p access.Principal, opts ListOptions) (Page[model.Claim], error)
	GetClaim(ctx context.Context, p access.Principal, id int64) (model.Claim, error)
	CreateClaim(ctx context.Context, c *model.Claim) error
	UpdateClaim(ctx context.Context, p access.Principal, c *model.Claim) error
	DeleteClaim(ctx context.Context, p access.Principal, id int64) error

	GetSubscription(ctx context.Context, userID int64, endpoint string) (model.PushSubscription, error)
	PutSubscription(ctx context.Context, sub *model.PushSubscription) error
	DeleteSubscription(ctx context.Context, userID int64, endpoint string) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB, logger *zap.Logger) Store {
	return &gormStore{db: db, logger: logger.Named("store")}
}

// DB exposes the underlying connection for components that run their own queries.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// paginate counts q, then loads the requested page ordered by order with
// preload applied to the page query only.
func paginate[T any](q *gorm.DB, opts ListOptions, order string, preload Scope) (Page[T], error) {
	page := Page[T]{Page: max(opts.Page, 1), PageSize: opts.PageSize, Items: []T{}}

	if err := q.Session(&gorm.Session{}).Count(&page.Total).Error; err != nil {
		return Page[T]{}, err
	}
	if page.Total == 0 {
		return page, nil
	}

	find := q.Scopes(preload).Order(order)
	if opts.PageSize > 0 {
		find = find.Limit(opts.PageSize).Offset(opts.offset())
	}
	if err := find.Find(&page.Items).Error; err != nil {
		return Page[T]{}, err
	}
	return page, nil
}

// notFound maps gorm's missing-row error to e.ErrNotFound.
func notFound(err error, what string, id int64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", what, id, e.ErrNotFound)
	}
	return fmt.Errorf("failed to load %s %d: %w", what, id, err)
}

// requireVisible returns e.ErrNotFound unless row id of table is inside scope.
func requireVisible(tx *gorm.DB, table string, scope Scope, what string, id int64) error {
	var n int64
	if err := tx.Table(table).Scopes(scope).Where(table+".id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("failed to check %s %d: %w", what, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, e.ErrNotFound)
	}
	return nil
}
