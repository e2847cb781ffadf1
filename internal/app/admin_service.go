package app

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/pBarszczewska/booking-api/internal/clock"
	"github.com/pBarszczewska/booking-api/internal/domain"
)

// AdminRepository covers the administrative catalog and user registry.
type AdminRepository interface {
	CreateItem(ctx context.Context, item domain.Item) error
	ListItems(ctx context.Context) ([]domain.Item, error)
	DeleteItem(ctx context.Context, id string) (bool, error)
	CreateUser(ctx context.Context, user domain.User) error
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// AdminService manages the item catalog and user registration. Both sit
// outside the booking engine proper; the engine only reads them.
type AdminService struct {
	repo  AdminRepository
	clock clock.Clock
}

func NewAdminService(repo AdminRepository, clk clock.Clock) *AdminService {
	return &AdminService{
		repo:  repo,
		clock: clk,
	}
}

func (s *AdminService) CreateItem(ctx context.Context, name string) (domain.Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Item{}, domain.ErrItemNameRequired
	}

	item := domain.Item{
		ID:   newID(),
		Name: name,
	}
	// Case-insensitive uniqueness is enforced by the storage layer, which
	// surfaces duplicates as ErrItemAlreadyExists.
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return domain.Item{}, err
	}
	return item, nil
}

func (s *AdminService) ListItems(ctx context.Context) ([]domain.Item, error) {
	return s.repo.ListItems(ctx)
}

func (s *AdminService) DeleteItem(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.ErrInvalidID
	}
	removed, err := s.repo.DeleteItem(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return domain.ErrItemNotFound
	}
	return nil
}

type RegisterUserInput struct {
	Username string
	Email    string
	Password string
}

func (s *AdminService) RegisterUser(ctx context.Context, in RegisterUserInput) (domain.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if username == "" {
		return domain.User{}, domain.ErrInvalidRequest
	}
	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, domain.ErrInvalidEmail
	}
	if in.Password == "" {
		return domain.User{}, domain.ErrInvalidRequest
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           newID(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now(),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return domain.User{}, err
	}

	user.PasswordHash = ""
	return user, nil
}

// ListUsers returns registered users with the credential hash stripped.
func (s *AdminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}
