package services

import (
	"context"
	"errors"
	"fmt"

	"LittleLemon/models"
	"LittleLemon/repository"

	"gorm.io/gorm"
)

// GroupService manages the membership of one named group. The Manager and
// Delivery Crew endpoints each get their own instance.
type GroupService struct {
	Group string
	Users *repository.UserRepository
}

func NewGroupService(group string, users *repository.UserRepository) *GroupService {
	return &GroupService{Group: group, Users: users}
}

func (s *GroupService) Members(ctx context.Context) ([]models.User, error) {
	return s.Users.GroupMembers(ctx, s.Group)
}

// Add puts the user into the group. Adding an existing member is a validation error.
func (s *GroupService) Add(ctx context.Context, userID uint) (*models.User, error) {
	if userID == 0 {
		return nil, validationError("'userId' is missing from request body")
	}
	user, group, err := s.lookup(ctx, userID)
	if err != nil {
		return nil, err
	}

	member, err := s.Users.HasRole(ctx, userID, s.Group)
	if err != nil {
		return nil, err
	}
	if member {
		return nil, validationError("user %s is already a %s", user.Username, s.Group)
	}

	if err := s.Users.AddToGroup(ctx, user, group); err != nil {
		return nil, err
	}
	return user, nil
}

// Remove takes the user out of the group. Removing a non-member is a validation error.
func (s *GroupService) Remove(ctx context.Context, userID uint) (*models.User, error) {
	user, group, err := s.lookup(ctx, userID)
	if err != nil {
		return nil, err
	}

	member, err := s.Users.HasRole(ctx, userID, s.Group)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, validationError("user %s is not a %s", user.Username, s.Group)
	}

	if err := s.Users.RemoveFromGroup(ctx, user, group); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *GroupService) lookup(ctx context.Context, userID uint) (*models.User, *models.Group, error) {
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, notFound(err, ErrUserNotFound, userID)
	}
	group, err := s.Users.FindGroup(ctx, s.Group)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("group %q %w", s.Group, ErrNotFound)
		}
		return nil, nil, err
	}
	return user, group, nil
}
