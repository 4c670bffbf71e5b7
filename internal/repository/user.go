package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/glowday/api/config"
	"github.com/glowday/api/internal/model"
	"gorm.io/gorm"
)

// UserRepository extends the generic store with identity lookups that need
// the credential columns excluded from the fillables projection.
type UserRepository struct {
	*Store[model.User]
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		Store: NewStore[model.User](db, Config{
			Fillables:  model.User{}.Fillables(),
			SoftDelete: model.User{}.SoftDelete(),
		}),
	}
}

// FindByIdentity fetches the full record, credentials included, matching the
// configured identity column case-insensitively. Returns nil without error
// when no user matches.
func (r *UserRepository) FindByIdentity(ctx context.Context, mode config.IdentityMode, value string) (*model.User, error) {
	var user model.User
	err := r.DB().WithContext(ctx).
		Where("LOWER("+mode.Column()+") = ?", strings.ToLower(value)).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Exists reports whether any non-deleted user has the given column value,
// compared case-insensitively.
func (r *UserRepository) Exists(ctx context.Context, column, value string) (bool, error) {
	var count int64
	err := r.DB().WithContext(ctx).Model(&model.User{}).
		Where("LOWER("+column+") = ?", strings.ToLower(value)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UsernameExists reports whether a username is already taken.
func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	return r.Exists(ctx, "username", username)
}

// UpdateByIdentity applies column changes to the user matching the identity
// value. Missing users surface as gorm.ErrRecordNotFound.
func (r *UserRepository) UpdateByIdentity(ctx context.Context, mode config.IdentityMode, value string, changes map[string]interface{}) error {
	result := r.DB().WithContext(ctx).Model(&model.User{}).
		Where("LOWER("+mode.Column()+") = ?", strings.ToLower(value)).
		Updates(changes)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindFull fetches a user by id with all columns, credentials included.
func (r *UserRepository) FindFull(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.DB().WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
