package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"notes/internal/models"
	"notes/internal/repositories"
)

// UserService handles account administration and privilege checks.
type UserService struct {
	userRepo repositories.UserRepository
	events   EventPublisher
}

// NewUserService creates a new UserService. events may be nil.
func NewUserService(userRepo repositories.UserRepository, events EventPublisher) *UserService {
	return &UserService{
		userRepo: userRepo,
		events:   events,
	}
}

// UserUpdate carries the account fields an admin may change.
type UserUpdate struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Status   string `json:"status"`
	Role     string `json:"role"`
}

const userNotFound = "User not found"

// RequireRole loads the user fresh from the store and checks that it holds
// role. The role is never taken from the token, so a downgrade applies on the
// next request.
func (s *UserService) RequireRole(ctx context.Context, userID string, role models.Role) error {
	// A subject that cannot be an id cannot be a user either.
	if validID(userID) != nil {
		return notFoundError(userNotFound)
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFoundError(userNotFound)
		}
		return fmt.Errorf("failed to load user %s for role check: %w", userID, err)
	}
	if user.Role != role {
		return newError(ErrForbidden, "Access denied. Admin privileges required")
	}
	return nil
}

// List returns a page of all users. Search matches email or username. Total
// and TotalPages count every user, Matched counts the users the search hit.
func (s *UserService) List(ctx context.Context, p Pagination) (*Page[models.User], error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	users, matched, err := s.userRepo.List(ctx, repositories.ListQuery{
		Offset: p.Offset(),
		Limit:  p.Limit,
		Search: p.Search,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	return &Page[models.User]{
		Items:      users,
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: p.TotalPages(total),
		Matched:    matched,
	}, nil
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

// Update merges the supplied non-empty fields over the stored account.
// Email format and uniqueness are not re-checked here; the store's unique
// indexes still reject a collision.
func (s *UserService) Update(ctx context.Context, id string, in UserUpdate) (*models.User, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	err := firstFailure(
		func() error { return check(in.Role, "omitempty,oneof=USER ADMIN", "Invalid role") },
		func() error { return check(in.Status, "omitempty,oneof=ACTIVE INACTIVE", "Invalid status") },
	)
	if err != nil {
		return nil, err
	}

	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Username = pick(in.Username, user.Username)
	user.Email = pick(strings.ToLower(in.Email), user.Email)
	user.Status = pick(in.Status, user.Status)
	user.Role = pick(in.Role, user.Role)
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, notFoundError(userNotFound)
		case errors.Is(err, repositories.ErrDuplicate):
			return nil, conflictError("User with this email or username already exists")
		}
		return nil, fmt.Errorf("failed to update user %s: %w", id, err)
	}
	publishEvent(s.events, EventUserUpdated, user.ID, user.ID)
	return user, nil
}

// Delete removes a user by id. The user's notes are kept.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := validID(id); err != nil {
		return err
	}
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFoundError(userNotFound)
		}
		return fmt.Errorf("failed to delete user %s: %w", id, err)
	}
	publishEvent(s.events, EventUserDeleted, id, id)
	return nil
}

func (s *UserService) find(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFoundError(userNotFound)
		}
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return user, nil
}

