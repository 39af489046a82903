package user

import (
	"context"

	"food-delivery/internal/domain"
)

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	Fullname       string
	Email          string
	Address        string
	City           string
	Country        string
	ProfilePicture string
}

// Repository persists and fetches user accounts.
type Repository interface {
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	TouchLastLogin(ctx context.Context, id string) error
	UpdateProfile(ctx context.Context, id string, in ProfileUpdate) (*domain.User, error)
}
