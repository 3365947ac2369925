package history

import (
	"context"
	"testing"
	"time"

	"github.com/arena-club/arena-club/internal/platform/db"
	"github.com/arena-club/arena-club/internal/roles"
	"github.com/arena-club/arena-club/internal/shared"
	"github.com/arena-club/arena-club/internal/users"
)

type stubRepo struct {
	transitions []roles.Entry
	payments    []Event
	enrollments []Event
}

func (s *stubRepo) ListTransitions(ctx context.Context, userID int64) ([]roles.Entry, error) {
	return s.transitions, nil
}

func (s *stubRepo) ListAllTransitions(ctx context.Context, page shared.Pagination) ([]roles.Entry, int, error) {
	return s.transitions, len(s.transitions), nil
}

func (s *stubRepo) ListPaymentEvents(ctx context.Context, userID int64) ([]Event, error) {
	return s.payments, nil
}

func (s *stubRepo) ListEnrollmentEvents(ctx context.Context, userID int64) ([]Event, error) {
	return s.enrollments, nil
}

type stubUsers struct {
	known map[int64]bool
}

func (s *stubUsers) Get(ctx context.Context, q db.DBTX, id int64) (*users.User, error) {
	if !s.known[id] {
		return nil, shared.ErrNotFound
	}
	return &users.User{ID: id, Role: users.RoleStudent}, nil
}

func day(offset int) time.Time {
	return time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func TestForUserMergesNewestFirst(t *testing.T) {
	amount := 800.0
	repo := &stubRepo{
		payments: []Event{
			{Date: day(2), Kind: KindPayment, Description: "Pagamento mensalidade", Amount: &amount},
			{Date: day(0), Kind: KindPayment, Description: "Pagamento matricula", Amount: &amount},
		},
		enrollments: []Event{
			{Date: day(1), Kind: KindEnrollment, Description: "Inscrição na turma Futebol A (activa)"},
		},
		transitions: []roles.Entry{
			{UserID: 1, OldRole: users.RoleClient, NewRole: users.RoleStudent, Reason: "Inscrição confirmada", OccurredAt: day(3)},
		},
	}
	svc := NewService(repo, &stubUsers{known: map[int64]bool{1: true}})

	timeline, err := svc.ForUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("ForUser: %v", err)
	}
	if len(timeline) != 4 {
		t.Fatalf("expected 4 events, got %d", len(timeline))
	}
	for i := 1; i < len(timeline); i++ {
		if timeline[i].Date.After(timeline[i-1].Date) {
			t.Fatalf("timeline not sorted newest first at index %d", i)
		}
	}
	if timeline[0].Kind != KindRoleChange || timeline[1].Kind != KindPayment || timeline[2].Kind != KindEnrollment {
		t.Fatalf("unexpected order: %s, %s, %s", timeline[0].Kind, timeline[1].Kind, timeline[2].Kind)
	}
	if timeline[0].Description != "Mudança de perfil: client → student (Inscrição confirmada)" {
		t.Fatalf("unexpected role change description: %s", timeline[0].Description)
	}
}

func TestForUserUnknownUser(t *testing.T) {
	svc := NewService(&stubRepo{}, &stubUsers{known: map[int64]bool{}})

	if _, err := svc.ForUser(context.Background(), 9); err != shared.ErrNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestForUserEmptyTimeline(t *testing.T) {
	svc := NewService(&stubRepo{}, &stubUsers{known: map[int64]bool{1: true}})

	timeline, err := svc.ForUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("ForUser: %v", err)
	}
	if len(timeline) != 0 {
		t.Fatalf("expected empty timeline, got %d events", len(timeline))
	}
}

func TestTransitionsForUser(t *testing.T) {
	repo := &stubRepo{
		transitions: []roles.Entry{
			{UserID: 1, OldRole: users.RoleClient, NewRole: users.RoleStudent, Reason: "Inscrição confirmada", OccurredAt: day(0)},
		},
	}
	svc := NewService(repo, &stubUsers{known: map[int64]bool{1: true}})

	entries, err := svc.TransitionsForUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("TransitionsForUser: %v", err)
	}
	if len(entries) != 1 || entries[0].NewRole != users.RoleStudent {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}
