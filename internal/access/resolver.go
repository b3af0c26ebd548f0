package access

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"silant-backend/internal/model"
)

// Resolver maps an authenticated user to a Principal.
type Resolver struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewResolver creates a Resolver backed by db.
func NewResolver(db *gorm.DB, logger *zap.Logger) *Resolver {
	return &Resolver{db: db, logger: logger.Named("access")}
}

// Resolve returns the principal for user. A nil user is anonymous.
//
// A user linked to both a client and a service company resolves as the
// client; the conflict is logged.
func (r *Resolver) Resolve(ctx context.Context, user *model.User) (Principal, error) {
	if user == nil {
		return Anonymous, nil
	}
	if user.IsSuperuser || user.IsStaff {
		p := Admin(user.ID)
		p.Username = user.Username
		return p, nil
	}

	clientID, err := r.partyID(ctx, &model.Client{}, user.ID)
	if err != nil {
		return Principal{}, err
	}
	companyID, err := r.partyID(ctx, &model.ServiceCompany{}, user.ID)
	if err != nil {
		return Principal{}, err
	}

	var p Principal
	switch {
	case clientID != 0:
		if companyID != 0 {
			r.logger.Warn("user is linked to both a client and a service company; using client",
				zap.Int64("user_id", user.ID),
				zap.Int64("client_id", clientID),
				zap.Int64("service_company_id", companyID),
			)
		}
		p = Client(user.ID, clientID)
	case companyID != 0:
		p = ServiceCompany(user.ID, companyID)
	default:
		p = Principal{Role: RoleUnrecognized, UserID: user.ID}
	}
	p.Username = user.Username
	return p, nil
}

// partyID returns the ID of the row of dest's table linked to userID, or 0.
func (r *Resolver) partyID(ctx context.Context, dest any, userID int64) (int64, error) {
	var id int64
	err := r.db.WithContext(ctx).Model(dest).
		Select("id").
		Where("user_id = ?", userID).
		Limit(1).
		Scan(&id).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("failed to resolve party for user %d: %w", userID, err)
	}
	return id, nil
}
