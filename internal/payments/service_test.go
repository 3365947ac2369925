package payments

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arena-club/arena-club/internal/platform/db"
	"github.com/arena-club/arena-club/internal/roles"
	"github.com/arena-club/arena-club/internal/shared"
	"github.com/arena-club/arena-club/internal/users"
)

type stubRunner struct{}

func (stubRunner) RunTx(ctx context.Context, fn func(db.DBTX) error) error {
	return fn(nil)
}

type mockWorld struct {
	users    map[int64]*users.User
	payments map[int64]*Payment
	entries  []roles.Entry
	nextID   int64
}

func newMockWorld() *mockWorld {
	return &mockWorld{users: map[int64]*users.User{}, payments: map[int64]*Payment{}, nextID: 1}
}

func (m *mockWorld) addUser(role users.Role) *users.User {
	u := &users.User{ID: m.nextID, Name: "Teste", Email: "teste@arena.cv", Role: role}
	m.nextID++
	m.users[u.ID] = u
	return u
}

func (m *mockWorld) Get(ctx context.Context, q db.DBTX, id int64) (*users.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockWorld) GetRoleForUpdate(ctx context.Context, q db.DBTX, userID int64) (users.Role, error) {
	u, ok := m.users[userID]
	if !ok {
		return "", shared.ErrNotFound
	}
	return u.Role, nil
}

func (m *mockWorld) TransitionTx(ctx context.Context, q db.DBTX, req roles.Request) (roles.Result, error) {
	u, ok := m.users[req.UserID]
	if !ok {
		return roles.Result{}, shared.ErrNotFound
	}
	next, err := roles.Next(u.Role, req.Trigger, req.Target)
	if err != nil {
		return roles.Result{}, err
	}
	result := roles.Result{Changed: next != u.Role, OldRole: u.Role, NewRole: next}
	if result.Changed {
		m.entries = append(m.entries, roles.Entry{UserID: req.UserID, OldRole: u.Role, NewRole: next, Reason: req.Reason, Meta: req.Meta})
		u.Role = next
	}
	return result, nil
}

func (m *mockWorld) Create(ctx context.Context, q db.DBTX, payment Payment) (int64, error) {
	payment.ID = m.nextID
	m.nextID++
	m.payments[payment.ID] = &payment
	return payment.ID, nil
}

func (m *mockWorld) GetPayment(ctx context.Context, q db.DBTX, id int64) (*Payment, error) {
	p, ok := m.payments[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *mockWorld) ListByUser(ctx context.Context, q db.DBTX, userID int64) ([]Payment, error) {
	var out []Payment
	for _, p := range m.payments {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockWorld) ListRecent(ctx context.Context, q db.DBTX, limit int) ([]Payment, error) {
	var out []Payment
	for _, p := range m.payments {
		if len(out) == limit {
			break
		}
		out = append(out, *p)
	}
	return out, nil
}

// repoAdapter renames GetPayment to satisfy RepositoryPort without the
// method clashing with the user directory's Get.
type repoAdapter struct{ *mockWorld }

func (a repoAdapter) Get(ctx context.Context, q db.DBTX, id int64) (*Payment, error) {
	return a.GetPayment(ctx, q, id)
}

func newTestService(world *mockWorld) *Service {
	return NewService(stubRunner{}, repoAdapter{world}, world, world, world, nil, nil)
}

func TestProcessEnrollmentFeePromotesClient(t *testing.T) {
	world := newMockWorld()
	client := world.addUser(users.RoleClient)

	svc := newTestService(world)
	payment, err := svc.Process(context.Background(), ProcessInput{
		UserID:  client.ID,
		Service: ServiceEnrollmentFee,
		Amount:  1500,
		Method:  "dinheiro",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, payment.ReceiptNo)
	assert.Equal(t, users.RoleStudent, world.users[client.ID].Role)
	require.Len(t, world.entries, 1)
	assert.Equal(t, "Pagamento de matrícula", world.entries[0].Reason)
}

func TestProcessEnrollmentFeeTwicePromotesOnce(t *testing.T) {
	world := newMockWorld()
	client := world.addUser(users.RoleClient)

	svc := newTestService(world)
	for i := 0; i < 2; i++ {
		_, err := svc.Process(context.Background(), ProcessInput{
			UserID:  client.ID,
			Service: ServiceEnrollmentFee,
			Amount:  1500,
			Method:  "dinheiro",
		})
		require.NoError(t, err)
	}
	assert.Equal(t, users.RoleStudent, world.users[client.ID].Role)
	assert.Len(t, world.entries, 1, "second registration fee must not write another transition")
	assert.Len(t, world.payments, 2)
}

func TestProcessMonthlyFeeKeepsRole(t *testing.T) {
	world := newMockWorld()
	client := world.addUser(users.RoleClient)

	svc := newTestService(world)
	_, err := svc.Process(context.Background(), ProcessInput{
		UserID:  client.ID,
		Service: ServiceMonthlyFee,
		Amount:  800,
		Method:  "transferencia",
	})
	require.NoError(t, err)
	assert.Equal(t, users.RoleClient, world.users[client.ID].Role)
	assert.Empty(t, world.entries)
}

func TestProcessRejectsInvalidServiceBeforeWriting(t *testing.T) {
	world := newMockWorld()
	client := world.addUser(users.RoleClient)

	svc := newTestService(world)
	_, err := svc.Process(context.Background(), ProcessInput{
		UserID:  client.ID,
		Service: ServiceType("cancelamento"),
		Amount:  500,
		Method:  "dinheiro",
	})
	validation, ok := shared.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, validation.Fields, "service_type")
	assert.Empty(t, world.payments, "rejected payments must not be stored")
}

func TestProcessRejectsNonPositiveAmount(t *testing.T) {
	world := newMockWorld()
	client := world.addUser(users.RoleClient)

	svc := newTestService(world)
	_, err := svc.Process(context.Background(), ProcessInput{
		UserID:  client.ID,
		Service: ServiceMonthlyFee,
		Amount:  0,
		Method:  "dinheiro",
	})
	validation, ok := shared.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, validation.Fields, "amount")
	assert.Empty(t, world.payments)
}

func TestProcessUnknownPayer(t *testing.T) {
	world := newMockWorld()
	svc := newTestService(world)

	_, err := svc.Process(context.Background(), ProcessInput{
		UserID:  42,
		Service: ServiceMonthlyFee,
		Amount:  800,
		Method:  "dinheiro",
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestProcessTeacherEnrollmentFeeNoPromotion(t *testing.T) {
	world := newMockWorld()
	teacher := world.addUser(users.RoleTeacher)

	svc := newTestService(world)
	_, err := svc.Process(context.Background(), ProcessInput{
		UserID:  teacher.ID,
		Service: ServiceEnrollmentFee,
		Amount:  1500,
		Method:  "cartao",
	})
	require.NoError(t, err)
	assert.Equal(t, users.RoleTeacher, world.users[teacher.ID].Role)
	assert.Empty(t, world.entries)
}
