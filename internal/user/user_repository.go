package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskchat/internal/common"
	"taskchat/internal/dbmysql"
)

// activityGranularity limits last-active writes to one per user per window.
const activityGranularity = 30 * time.Second

type UserRepository interface {
	CreateUser(ctx context.Context, user *dbmysql.User) error
	GetUserByID(ctx context.Context, userID string) (*dbmysql.User, error)
	GetUsersByIDs(ctx context.Context, userIDs []string) (map[string]*dbmysql.User, error)
	TouchLastActive(ctx context.Context, userID string, at time.Time) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(ctx context.Context, user *dbmysql.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetUserByID(ctx context.Context, userID string) (*dbmysql.User, error) {
	var user dbmysql.User
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewNotFoundError("User not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (r *userRepository) GetUsersByIDs(ctx context.Context, userIDs []string) (map[string]*dbmysql.User, error) {
	result := make(map[string]*dbmysql.User, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	var users []*dbmysql.User
	if err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	for _, u := range users {
		result[u.UserID] = u
	}
	return result, nil
}

func (r *userRepository) TouchLastActive(ctx context.Context, userID string, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&dbmysql.User{}).
		Where("user_id = ? AND (last_active IS NULL OR last_active < ?)", userID, at.Add(-activityGranularity)).
		UpdateColumn("last_active", at).Error
	if err != nil {
		return fmt.Errorf("failed to update last active: %w", err)
	}
	return nil
}
