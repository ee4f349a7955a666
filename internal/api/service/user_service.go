package service

import (
	"context"

	"ctchen222/Task-Tracker/internal/api/models"
	"ctchen222/Task-Tracker/internal/api/repository"
	"ctchen222/Task-Tracker/internal/api/response"
	"ctchen222/Task-Tracker/internal/password"
	"ctchen222/Task-Tracker/internal/validator"

	"go.opentelemetry.io/otel"
)

var userServiceTracer = otel.Tracer("service.user")

// UserService defines the interface for user-related business logic.
type UserService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Authenticate(ctx context.Context, username, plaintext string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, search string) ([]models.User, error)
	Update(ctx context.Context, actor *models.User, id int64, req *models.UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, actor *models.User, id int64) (*models.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// Register creates a new user, rejecting duplicate usernames or emails
// before anything is inserted.
func (s *userService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	ctx, span := userServiceTracer.Start(ctx, "UserService.Register")
	defer span.End()

	if existing, err := s.userRepo.GetByUsername(ctx, req.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, response.ErrConflict
	}
	if existing, err := s.userRepo.GetByEmail(ctx, req.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, response.ErrConflict
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FullName:     req.FullName,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, response.ErrConflict
		}
		return nil, err
	}
	return user, nil
}

// Authenticate resolves a username/password pair to a user. Unknown
// usernames burn a dummy hash comparison so both failure paths cost the
// same, and both yield the same generic error.
func (s *userService) Authenticate(ctx context.Context, username, plaintext string) (*models.User, error) {
	ctx, span := userServiceTracer.Start(ctx, "UserService.Authenticate")
	defer span.End()

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		password.VerifyDummy(plaintext)
		return nil, response.ErrInvalidCredentials
	}
	if !password.Verify(plaintext, user.PasswordHash) {
		return nil, response.ErrInvalidCredentials
	}
	return user, nil
}

// GetByID fetches a user, returning ErrNotFound for an absent id.
func (s *userService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	ctx, span := userServiceTracer.Start(ctx, "UserService.GetByID")
	defer span.End()

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, response.ErrNotFound
	}
	return user, nil
}

// List returns users, optionally filtered by full name.
func (s *userService) List(ctx context.Context, search string) ([]models.User, error) {
	ctx, span := userServiceTracer.Start(ctx, "UserService.List")
	defer span.End()

	return s.userRepo.List(ctx, search)
}

// Update applies a profile update. Existence is checked before ownership,
// so an absent id reads as 404 even to the wrong caller.
func (s *userService) Update(ctx context.Context, actor *models.User, id int64, req *models.UpdateUserRequest) (*models.User, error) {
	ctx, span := userServiceTracer.Start(ctx, "UserService.Update")
	defer span.End()

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, response.ErrNotFound
	}
	if user.ID != actor.ID {
		return nil, response.ErrForbidden
	}

	if err := validator.GetValidator().StructCtx(ctx, req); err != nil {
		return nil, response.ErrValidation
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Email != nil && *req.Email != user.Email {
		if existing, err := s.userRepo.GetByEmail(ctx, *req.Email); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, response.ErrConflict
		}
		user.Email = *req.Email
	}
	if req.Password != nil {
		hash, err := password.Hash(*req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, response.ErrConflict
		}
		return nil, err
	}
	return user, nil
}

// Delete removes a user, self-service only. Returns the deleted user so
// the caller can render a farewell message.
func (s *userService) Delete(ctx context.Context, actor *models.User, id int64) (*models.User, error) {
	ctx, span := userServiceTracer.Start(ctx, "UserService.Delete")
	defer span.End()

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, response.ErrNotFound
	}
	if user.ID != actor.ID {
		return nil, response.ErrForbidden
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return user, nil
}
