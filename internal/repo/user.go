package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/idea_drop/internal/hash"
	"github.com/Skotchmaster/idea_drop/internal/models"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserAlreadyExist = errors.New("user already exist")
)

func (r *GormRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser hashes password and inserts the user. The plaintext never reaches
// the database layer.
func (r *GormRepo) CreateUser(ctx context.Context, name, email, password string) (*models.User, error) {
	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: pwHash,
	}
	if err := r.DB.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUserAlreadyExist
		}
		return nil, err
	}
	return &user, nil
}

// VerifyPassword reports whether password matches the user's stored hash. A nil
// user still pays for a full bcrypt comparison.
func (r *GormRepo) VerifyPassword(user *models.User, password string) bool {
	if user == nil || user.PasswordHash == "" {
		_ = hash.CheckDummy(password)
		return false
	}
	return hash.CheckPassword(user.PasswordHash, password)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

// EnsureUser creates the user unless the email is already taken. It reports
// whether a row was inserted.
func (r *GormRepo) EnsureUser(ctx context.Context, name, email, password string) (bool, error) {
	if _, err := r.FindByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrUserNotFound) {
		return false, err
	}

	if _, err := r.CreateUser(ctx, name, email, password); err != nil {
		if errors.Is(err, ErrUserAlreadyExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
