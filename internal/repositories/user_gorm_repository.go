package repositories

import (
	"context"
	"strings"
	"time"

	"notes/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create inserts a user, assigning an id when missing.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.UsernameKey = strings.ToLower(user.Username)
	return translateError(r.db.WithContext(ctx).Create(user).Error, "failed to create user")
}

// GetByID retrieves a user by id.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "failed to get user by id "+id)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email, ignoring case.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", strings.ToLower(email)).Error; err != nil {
		return nil, translateError(err, "failed to get user by email")
	}
	return &user, nil
}

// FindByEmailOrUsername returns the first user whose email or username
// matches, both compared case-insensitively.
func (r *GORMUserRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ? OR username_key = ?", strings.ToLower(email), strings.ToLower(username)).
		Order("created_at ASC").
		First(&user).Error
	if err != nil {
		return nil, translateError(err, "failed to look up user by email or username")
	}
	return &user, nil
}

// List returns one page of users matching q.Search on email or username,
// together with the number of matching users.
func (r *GORMUserRepository) List(ctx context.Context, q ListQuery) ([]models.User, int64, error) {
	filter := func(tx *gorm.DB) *gorm.DB {
		tx = tx.Model(&models.User{})
		if s := strings.TrimSpace(q.Search); s != "" {
			p := containsPattern(s)
			tx = tx.Where(`(email LIKE ? ESCAPE '\' OR username_key LIKE ? ESCAPE '\')`, p, p)
		}
		return tx
	}

	var matched int64
	if err := r.db.WithContext(ctx).Scopes(filter).Count(&matched).Error; err != nil {
		return nil, 0, translateError(err, "failed to count users")
	}

	users := make([]models.User, 0, q.Limit)
	err := r.db.WithContext(ctx).Scopes(filter).
		Order("created_at ASC, id ASC").
		Offset(q.Offset).Limit(q.Limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, translateError(err, "failed to list users")
	}
	return users, matched, nil
}

// Count returns the number of users in the collection.
func (r *GORMUserRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return 0, translateError(err, "failed to count users")
	}
	return total, nil
}

// Update writes the mutable account fields of user.
func (r *GORMUserRepository) Update(ctx context.Context, user *models.User) error {
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = time.Now()
	}
	user.UsernameKey = strings.ToLower(user.Username)
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]any{
		"username":     user.Username,
		"username_key": user.UsernameKey,
		"email":        user.Email,
		"role":         user.Role,
		"status":       user.Status,
		"updated_at":   user.UpdatedAt,
	})
	if res.Error != nil {
		return translateError(res.Error, "failed to update user "+user.ID)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a user by id. Notes owned by the user are left in place.
func (r *GORMUserRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return translateError(res.Error, "failed to delete user "+id)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
