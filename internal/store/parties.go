package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	e "silant-backend/internal/errors"
	"silant-backend/internal/model"
)

// CreateUser inserts a user. A taken username yields e.ErrDuplicateUsername.
func (s *gormStore) CreateUser(ctx context.Context, user *model.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("username %q: %w", user.Username, e.ErrDuplicateUsername)
		}
		return fmt.Errorf("failed to create user %q: %w", user.Username, err)
	}
	s.logger.Info("user created", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return nil
}

func (s *gormStore) GetUser(ctx context.Context, id int64) (model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return model.User{}, notFound(err, "user", id)
	}
	return user, nil
}

func (s *gormStore) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.User{}, fmt.Errorf("user %q: %w", username, e.ErrNotFound)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to load user %q: %w", username, err)
	}
	return user, nil
}

func (s *gormStore) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func (s *gormStore) ListClients(ctx context.Context) ([]model.Client, error) {
	clients := []model.Client{}
	if err := s.db.WithContext(ctx).Order("title, id").Find(&clients).Error; err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

// CreateClient links a new client to an existing user. A user already linked
// to a client is rejected as a field error.
func (s *gormStore) CreateClient(ctx context.Context, client *model.Client) error {
	if client.Description == "" {
		client.Description = "Client"
	}
	return s.createParty(ctx, client, client.UserID, "client")
}

func (s *gormStore) ListServiceCompanies(ctx context.Context) ([]model.ServiceCompany, error) {
	companies := []model.ServiceCompany{}
	if err := s.db.WithContext(ctx).Order("title, id").Find(&companies).Error; err != nil {
		return nil, fmt.Errorf("failed to list service companies: %w", err)
	}
	return companies, nil
}

func (s *gormStore) CreateServiceCompany(ctx context.Context, company *model.ServiceCompany) error {
	if company.Description == "" {
		company.Description = "Service company"
	}
	return s.createParty(ctx, company, company.UserID, "service company")
}

func (s *gormStore) createParty(ctx context.Context, party any, userID int64, what string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.User{}).Where("id = ?", userID).Count(&n).Error; err != nil {
			return fmt.Errorf("failed to look up user %d: %w", userID, err)
		}
		if n == 0 {
			return e.NewValidationError("user_id", "select a valid choice")
		}
		if err := tx.Omit(clause.Associations).Create(party).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return e.NewValidationError("user_id", "user is already linked to a "+what)
			}
			return fmt.Errorf("failed to create %s: %w", what, err)
		}
		return nil
	})
}
