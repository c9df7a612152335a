package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"smartstudy/internal/apperror"
	"smartstudy/internal/model"
	"smartstudy/internal/repository"
	"smartstudy/internal/validation"
)

// TokenIssuer signs identity tokens.
type TokenIssuer interface {
	Issue(userID string, role model.Role) (string, error)
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,notblank,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserPatch carries an admin's partial update of an account. Nil fields are left unchanged.
type UserPatch struct {
	Username *string `json:"username" validate:"omitempty,notblank,max=50"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Role     *string `json:"role" validate:"omitempty,role"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
}

// AuthResult is a user together with a freshly issued token.
type AuthResult struct {
	User  *model.User
	Token string
}

// UserService defines account and authentication use cases.
type UserService interface {
	// Register creates a student account and signs it in.
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	// Login verifies credentials. Unknown email and wrong password fail identically.
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	Profile(ctx context.Context, userID string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, id string, p UserPatch) (*model.User, error)
	Delete(ctx context.Context, id string) error
	// CurrentRole returns the stored role of a user.
	CurrentRole(ctx context.Context, userID string) (model.Role, error)
	// EnsureAdmin creates an admin account or promotes the account with that email and resets its password.
	EnsureAdmin(ctx context.Context, in RegisterInput) (user *model.User, created bool, err error)
}

type userService struct {
	users    repository.UserRepository
	settings SettingsReader
	tokens   TokenIssuer
	validate *validation.Validator
}

func NewUserService(users repository.UserRepository, settings SettingsReader, tokens TokenIssuer, v *validation.Validator) UserService {
	return &userService{users: users, settings: settings, tokens: tokens, validate: v}
}

var errInvalidCredentials = apperror.InvalidCredentials("invalid email or password")

func (s *userService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.AllowRegistration {
		return nil, apperror.Forbidden("registration is currently disabled")
	}

	email := normalizeEmail(in.Email)
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, apperror.Conflict("user already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.Internal(err)
	}

	ts := now()
	u := &model.User{
		ID:        newID(),
		Username:  strings.TrimSpace(in.Username),
		Email:     email,
		Role:      model.RoleStudent,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := setPassword(u, in.Password); err != nil {
		return nil, err
	}

	created, err := s.users.Create(ctx, u)
	if err != nil {
		// The email check above races with concurrent registrations; the unique index decides.
		if errors.Is(err, repository.ErrDuplicate) {
			var dup *repository.DuplicateError
			if errors.As(err, &dup) && dup.Field == "username" {
				return nil, apperror.Conflict("username is already taken")
			}
			return nil, apperror.Conflict("user already exists")
		}
		return nil, apperror.Internal(err)
	}
	return s.withToken(created)
}

func (s *userService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	u, err := s.users.FindByEmail(ctx, normalizeEmail(in.Email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if err := u.CheckPassword(in.Password); err != nil {
		return nil, errInvalidCredentials
	}
	return s.withToken(u)
}

func (s *userService) withToken(u *model.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &AuthResult{User: u, Token: token}, nil
}

func (s *userService) Profile(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, translate(err, "user")
	}
	return u, nil
}

func (s *userService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return users, nil
}

func (s *userService) Update(ctx context.Context, id string, p UserPatch) (*model.User, error) {
	if err := parseID(id, "user"); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(p); err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "user")
	}

	if v, ok := trimmed(p.Username); ok {
		u.Username = v
	}
	if p.Email != nil {
		u.Email = normalizeEmail(*p.Email)
	}
	if p.Role != nil {
		u.Role = model.Role(*p.Role)
	}
	if p.Password != nil {
		if err := setPassword(u, *p.Password); err != nil {
			return nil, err
		}
	}
	u.UpdatedAt = now()

	if err := s.users.Update(ctx, u); err != nil {
		return nil, translate(err, "user")
	}
	return u, nil
}

func (s *userService) Delete(ctx context.Context, id string) error {
	if err := parseID(id, "user"); err != nil {
		return err
	}
	return translate(s.users.Delete(ctx, id), "user")
}

func (s *userService) CurrentRole(ctx context.Context, userID string) (model.Role, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", translate(err, "user")
	}
	return u.Role, nil
}

func (s *userService) EnsureAdmin(ctx context.Context, in RegisterInput) (*model.User, bool, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, false, err
	}
	email := normalizeEmail(in.Email)

	existing, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		existing.Role = model.RoleAdmin
		if err := setPassword(existing, in.Password); err != nil {
			return nil, false, err
		}
		existing.UpdatedAt = now()
		if err := s.users.Update(ctx, existing); err != nil {
			return nil, false, translate(err, "user")
		}
		return existing, false, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, false, apperror.Internal(err)
	}

	ts := now()
	u := &model.User{
		ID:        newID(),
		Username:  strings.TrimSpace(in.Username),
		Email:     email,
		Role:      model.RoleAdmin,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := setPassword(u, in.Password); err != nil {
		return nil, false, err
	}
	created, err := s.users.Create(ctx, u)
	if err != nil {
		return nil, false, translate(err, "user")
	}
	return created, true, nil
}

// setPassword hashes pwd onto u. bcrypt limits input to 72 bytes, which multi-byte
// passwords can exceed while passing the rune-counted max rule.
func setPassword(u *model.User, pwd string) error {
	err := u.SetPassword(pwd)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrPasswordTooLong):
		return fieldError("password", "password must be at most 72 bytes")
	default:
		return apperror.Internal(err)
	}
}
