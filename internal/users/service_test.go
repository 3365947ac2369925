package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/arena-club/arena-club/internal/platform/db"
	"github.com/arena-club/arena-club/internal/shared"
)

type mockRepository struct {
	users  map[int64]*User
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{users: map[int64]*User{}, nextID: 1}
}

func (m *mockRepository) Get(ctx context.Context, q db.DBTX, id int64) (*User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *mockRepository) GetByEmail(ctx context.Context, q db.DBTX, email string) (*User, error) {
	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockRepository) Create(ctx context.Context, q db.DBTX, user User) (int64, error) {
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return 0, shared.NewValidationError("email", "já registado")
		}
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = &user
	return user.ID, nil
}

func (m *mockRepository) Update(ctx context.Context, q db.DBTX, user User) error {
	if _, ok := m.users[user.ID]; !ok {
		return shared.ErrNotFound
	}
	m.users[user.ID] = &user
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, q db.DBTX, id int64) error {
	if _, ok := m.users[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockRepository) List(ctx context.Context, q db.DBTX, page shared.Pagination) ([]User, int, error) {
	out := make([]User, 0, len(m.users))
	for _, user := range m.users {
		out = append(out, *user)
	}
	return out, len(m.users), nil
}

func registerInput() RegisterInput {
	return RegisterInput{
		Name:      "joão da silva",
		Email:     "joao@arena.cv",
		Phone:     "9912345",
		Password:  "segredo123",
		BirthDate: time.Date(1998, time.May, 4, 0, 0, 0, 0, time.UTC),
	}
}

func TestRegisterDefaultsToClient(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	user, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)
	assert.Equal(t, RoleClient, user.Role)
	assert.Equal(t, "João Da Silva", user.Name)
	assert.Nil(t, user.Student)
	assert.Nil(t, user.Teacher)
}

func TestRegisterHashesPassword(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	user, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)
	assert.NotEqual(t, "segredo123", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("segredo123")))
}

func TestCreateTeacherRequiresSpecialty(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), CreateInput{
		RegisterInput: registerInput(),
		Role:          RoleTeacher,
	})
	validation, ok := shared.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, validation.Fields, "specialty")
}

func TestCreateTeacherCarriesDetail(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	user, err := svc.Create(context.Background(), CreateInput{
		RegisterInput: registerInput(),
		Role:          RoleTeacher,
		Specialty:     "natação",
	})
	require.NoError(t, err)
	require.NotNil(t, user.Teacher)
	assert.Equal(t, "natação", user.Teacher.Specialty)

	detail := user.Detail()
	assert.Equal(t, RoleTeacher, detail.Role)
	require.NotNil(t, detail.Teacher)
	assert.Nil(t, detail.Student)
}

func TestCreateRejectsUnknownRole(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), CreateInput{
		RegisterInput: registerInput(),
		Role:          Role("gerente"),
	})
	validation, ok := shared.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, validation.Fields, "role")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	_, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), registerInput())
	validation, ok := shared.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, validation.Fields, "email")
}

func TestCheckPassword(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	created, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	user, err := svc.CheckPassword(context.Background(), created.Email, "segredo123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = svc.CheckPassword(context.Background(), created.Email, "errada")
	_, ok := shared.AsValidation(err)
	assert.True(t, ok, "wrong password must fail as invalid credentials")

	_, err = svc.CheckPassword(context.Background(), "ninguem@arena.cv", "segredo123")
	_, ok = shared.AsValidation(err)
	assert.True(t, ok, "unknown email must not leak existence")
}
