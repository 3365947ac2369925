package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/arena-club/arena-club/internal/shared"
)

var nameCaser = cases.Title(language.Portuguese)

// RegisterInput is the public self-registration payload. Registrations
// always start as clients.
type RegisterInput struct {
	Name      string
	Email     string
	Phone     string
	Password  string
	BirthDate time.Time
}

// CreateInput is the admin-side creation payload with an explicit role.
type CreateInput struct {
	RegisterInput
	Role      Role
	Specialty string
}

// UpdateInput mutates the editable identity fields.
type UpdateInput struct {
	Name      string
	Phone     string
	BirthDate time.Time
}

// Service handles identity store business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Register creates a new client account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	return s.create(ctx, CreateInput{RegisterInput: in, Role: RoleClient})
}

// Create creates an account with an explicit role. Teacher accounts require
// a specialty.
func (s *Service) Create(ctx context.Context, in CreateInput) (*User, error) {
	if !in.Role.Valid() {
		return nil, shared.NewValidationError("role", "perfil inválido")
	}
	if in.Role == RoleTeacher && strings.TrimSpace(in.Specialty) == "" {
		return nil, shared.NewValidationError("specialty", "obrigatório para professores")
	}
	return s.create(ctx, in)
}

func (s *Service) create(ctx context.Context, in CreateInput) (*User, error) {
	if in.Password == "" {
		return nil, shared.NewValidationError("password", "obrigatório")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("users: hash password: %w", err)
	}

	user := User{
		Name:         nameCaser.String(strings.TrimSpace(in.Name)),
		Email:        strings.TrimSpace(in.Email),
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: string(hash),
		Role:         in.Role,
		BirthDate:    in.BirthDate,
	}
	if in.Role == RoleTeacher {
		user.Teacher = &TeacherDetail{Specialty: strings.TrimSpace(in.Specialty)}
	}

	id, err := s.repo.Create(ctx, nil, user)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, nil, id)
}

// Get loads a single user.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.Get(ctx, nil, id)
}

// List returns a page of users.
func (s *Service) List(ctx context.Context, page, perPage int) ([]User, shared.Pagination, error) {
	p := shared.NewPagination(page, perPage, 0)
	result, total, err := s.repo.List(ctx, nil, p)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return result, shared.NewPagination(page, perPage, total), nil
}

// Update mutates the editable identity fields of an existing user.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*User, error) {
	user, err := s.repo.Get(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	user.Name = nameCaser.String(strings.TrimSpace(in.Name))
	user.Phone = strings.TrimSpace(in.Phone)
	user.BirthDate = in.BirthDate
	if err := s.repo.Update(ctx, nil, *user); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, nil, id)
}

// Delete removes a user and its dependent records.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, nil, id)
}

// CheckPassword verifies a plaintext password against the stored hash.
func (s *Service) CheckPassword(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.GetByEmail(ctx, nil, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewValidationError("credentials", "credenciais inválidas")
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, shared.NewValidationError("credentials", "credenciais inválidas")
	}
	return user, nil
}
