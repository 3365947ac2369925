package hotel

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arena-club/arena-club/internal/notify"
	"github.com/arena-club/arena-club/internal/platform/cache"
	"github.com/arena-club/arena-club/internal/platform/db"
	"github.com/arena-club/arena-club/internal/shared"
	"github.com/arena-club/arena-club/internal/users"
)

const availableRoomsKey = "hotel:rooms:available"

// UserDirectory is the slice of the identity store the service needs.
type UserDirectory interface {
	Get(ctx context.Context, q db.DBTX, id int64) (*users.User, error)
}

// Service manages rooms and reservations.
type Service struct {
	runner   db.TxRunner
	repo     RepositoryPort
	userRepo UserDirectory
	cache    *cache.Store
	notifier notify.Notifier
	logger   *slog.Logger
}

// NewService builds Service instance.
func NewService(runner db.TxRunner, repo RepositoryPort, userRepo UserDirectory, store *cache.Store, notifier notify.Notifier, logger *slog.Logger) *Service {
	return &Service{runner: runner, repo: repo, userRepo: userRepo, cache: store, notifier: notifier, logger: logger}
}

// RoomInput is the payload for registering a room.
type RoomInput struct {
	Number    string
	Type      RoomType
	DailyRate float64
	Capacity  int
}

// CreateRoom registers a room, available by default.
func (s *Service) CreateRoom(ctx context.Context, in RoomInput) (*Room, error) {
	if !in.Type.Valid() {
		return nil, shared.NewValidationError("type", "tipo de quarto inválido")
	}
	if in.DailyRate <= 0 {
		return nil, shared.NewValidationError("daily_rate", "diária deve ser positiva")
	}
	capacity := in.Capacity
	if capacity <= 0 {
		capacity = 1
	}
	room := Room{
		Number:    strings.TrimSpace(in.Number),
		Type:      in.Type,
		DailyRate: in.DailyRate,
		Capacity:  capacity,
		Available: true,
	}
	id, err := s.repo.CreateRoom(ctx, nil, room)
	if err != nil {
		return nil, err
	}
	s.invalidateRooms(ctx)
	return s.repo.GetRoom(ctx, nil, id)
}

// ListAvailableRooms returns bookable rooms, served from cache when warm.
func (s *Service) ListAvailableRooms(ctx context.Context) ([]Room, error) {
	var cached []Room
	if hit, err := s.cache.Get(ctx, availableRoomsKey, &cached); err == nil && hit {
		return cached, nil
	}
	rooms, err := s.repo.ListAvailableRooms(ctx, nil)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, availableRoomsKey, rooms); err != nil && s.logger != nil {
		s.logger.Warn("room cache set failed", slog.Any("error", err))
	}
	return rooms, nil
}

// ReservationInput is the payload for booking a room.
type ReservationInput struct {
	ClientID int64
	RoomID   int64
	Checkin  time.Time
	Checkout time.Time
}

// CreateReservation books a room for a client. The room row is locked so
// two concurrent bookings of the same room cannot both succeed; the total
// is nights times the room's daily rate, fixed at booking time.
func (s *Service) CreateReservation(ctx context.Context, in ReservationInput) (*Reservation, error) {
	if !in.Checkout.After(in.Checkin) {
		return nil, shared.NewValidationError("checkout", "checkout deve ser posterior ao checkin")
	}
	var (
		booked *Reservation
		client *users.User
	)
	err := s.runner.RunTx(ctx, func(q db.DBTX) error {
		var err error
		if client, err = s.userRepo.Get(ctx, q, in.ClientID); err != nil {
			return fmt.Errorf("verify client: %w", err)
		}
		room, err := s.repo.GetRoomForUpdate(ctx, q, in.RoomID)
		if err != nil {
			return err
		}
		if !room.Available {
			return shared.NewValidationError("room_id", "quarto indisponível")
		}
		reservation := Reservation{
			Code:     uuid.New(),
			ClientID: in.ClientID,
			RoomID:   in.RoomID,
			Checkin:  in.Checkin,
			Checkout: in.Checkout,
		}
		reservation.Total = float64(reservation.Nights()) * room.DailyRate
		id, err := s.repo.CreateReservation(ctx, q, reservation)
		if err != nil {
			return err
		}
		if err := s.repo.SetRoomAvailable(ctx, q, in.RoomID, false); err != nil {
			return err
		}
		booked, err = s.repo.GetReservation(ctx, q, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidateRooms(ctx)
	if s.notifier != nil && client != nil {
		s.notifier.Notify(ctx, notify.Email{
			To:      client.Email,
			Subject: "Reserva confirmada",
			Body:    fmt.Sprintf("Reserva %s: %d noite(s), total %.2f CVE.", booked.Code, booked.Nights(), booked.Total),
		})
	}
	return booked, nil
}

// GetReservation loads a reservation.
func (s *Service) GetReservation(ctx context.Context, id int64) (*Reservation, error) {
	return s.repo.GetReservation(ctx, nil, id)
}

// ListReservationsByClient returns a client's reservations, newest first.
func (s *Service) ListReservationsByClient(ctx context.Context, clientID int64) ([]Reservation, error) {
	if _, err := s.userRepo.Get(ctx, nil, clientID); err != nil {
		return nil, err
	}
	return s.repo.ListReservationsByClient(ctx, nil, clientID)
}

// ReleaseRoom marks a room available again after checkout.
func (s *Service) ReleaseRoom(ctx context.Context, roomID int64) error {
	if err := s.repo.SetRoomAvailable(ctx, nil, roomID, true); err != nil {
		return err
	}
	s.invalidateRooms(ctx)
	return nil
}

func (s *Service) invalidateRooms(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, availableRoomsKey); err != nil && s.logger != nil {
		s.logger.Warn("room cache invalidate failed", slog.Any("error", err))
	}
}
