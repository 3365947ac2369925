package hotel

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arena-club/arena-club/internal/platform/db"
	"github.com/arena-club/arena-club/internal/shared"
)

// RepositoryPort defines room and reservation persistence. Methods taking
// a db.DBTX compose into a caller-owned transaction.
type RepositoryPort interface {
	CreateRoom(ctx context.Context, q db.DBTX, room Room) (int64, error)
	GetRoom(ctx context.Context, q db.DBTX, id int64) (*Room, error)
	GetRoomForUpdate(ctx context.Context, q db.DBTX, id int64) (*Room, error)
	ListAvailableRooms(ctx context.Context, q db.DBTX) ([]Room, error)
	SetRoomAvailable(ctx context.Context, q db.DBTX, id int64, available bool) error

	CreateReservation(ctx context.Context, q db.DBTX, reservation Reservation) (int64, error)
	GetReservation(ctx context.Context, q db.DBTX, id int64) (*Reservation, error)
	ListReservationsByClient(ctx context.Context, q db.DBTX, clientID int64) ([]Reservation, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) q(q db.DBTX) db.DBTX {
	if q != nil {
		return q
	}
	return r.pool
}

const roomColumns = `id, number, type, daily_rate, capacity, available`

// CreateRoom inserts a room.
func (r *Repository) CreateRoom(ctx context.Context, q db.DBTX, room Room) (int64, error) {
	var id int64
	err := r.q(q).QueryRow(ctx, `
		INSERT INTO rooms (number, type, daily_rate, capacity, available)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		room.Number, room.Type, room.DailyRate, room.Capacity, room.Available,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, shared.NewValidationError("number", "quarto já existe")
		}
		return 0, shared.StorageErr("create room", err)
	}
	return id, nil
}

// GetRoom loads a room by id.
func (r *Repository) GetRoom(ctx context.Context, q db.DBTX, id int64) (*Room, error) {
	return r.getRoom(ctx, q, `SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id)
}

// GetRoomForUpdate loads a room locking its row, serializing concurrent
// bookings of the same room.
func (r *Repository) GetRoomForUpdate(ctx context.Context, q db.DBTX, id int64) (*Room, error) {
	return r.getRoom(ctx, q, `SELECT `+roomColumns+` FROM rooms WHERE id = $1 FOR UPDATE`, id)
}

func (r *Repository) getRoom(ctx context.Context, q db.DBTX, query string, id int64) (*Room, error) {
	var room Room
	err := r.q(q).QueryRow(ctx, query, id).Scan(
		&room.ID, &room.Number, &room.Type, &room.DailyRate, &room.Capacity, &room.Available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, shared.StorageErr("get room", err)
	}
	return &room, nil
}

// ListAvailableRooms returns bookable rooms ordered by number.
func (r *Repository) ListAvailableRooms(ctx context.Context, q db.DBTX) ([]Room, error) {
	rows, err := r.q(q).Query(ctx, `
		SELECT `+roomColumns+` FROM rooms WHERE available ORDER BY number`)
	if err != nil {
		return nil, shared.StorageErr("list rooms", err)
	}
	defer rows.Close()

	var rooms []Room
	for rows.Next() {
		var room Room
		if err := rows.Scan(&room.ID, &room.Number, &room.Type, &room.DailyRate,
			&room.Capacity, &room.Available); err != nil {
			return nil, shared.StorageErr("scan room", err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.StorageErr("list rooms", err)
	}
	return rooms, nil
}

// SetRoomAvailable flips the availability flag.
func (r *Repository) SetRoomAvailable(ctx context.Context, q db.DBTX, id int64, available bool) error {
	tag, err := r.q(q).Exec(ctx, `UPDATE rooms SET available = $2 WHERE id = $1`, id, available)
	if err != nil {
		return shared.StorageErr("set room available", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

const reservationColumns = `id, code, client_id, room_id, checkin, checkout, total, created_at`

// CreateReservation inserts a reservation.
func (r *Repository) CreateReservation(ctx context.Context, q db.DBTX, reservation Reservation) (int64, error) {
	var id int64
	err := r.q(q).QueryRow(ctx, `
		INSERT INTO reservations (code, client_id, room_id, checkin, checkout, total)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		reservation.Code, reservation.ClientID, reservation.RoomID,
		reservation.Checkin, reservation.Checkout, reservation.Total,
	).Scan(&id)
	if err != nil {
		return 0, shared.StorageErr("create reservation", err)
	}
	return id, nil
}

// GetReservation loads a reservation by id.
func (r *Repository) GetReservation(ctx context.Context, q db.DBTX, id int64) (*Reservation, error) {
	var reservation Reservation
	err := r.q(q).QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id).Scan(
		&reservation.ID, &reservation.Code, &reservation.ClientID, &reservation.RoomID,
		&reservation.Checkin, &reservation.Checkout, &reservation.Total, &reservation.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, shared.StorageErr("get reservation", err)
	}
	return &reservation, nil
}

// ListReservationsByClient returns a client's reservations, newest first.
func (r *Repository) ListReservationsByClient(ctx context.Context, q db.DBTX, clientID int64) ([]Reservation, error) {
	rows, err := r.q(q).Query(ctx, `
		SELECT `+reservationColumns+` FROM reservations
		WHERE client_id = $1 ORDER BY created_at DESC`, clientID)
	if err != nil {
		return nil, shared.StorageErr("list reservations", err)
	}
	defer rows.Close()

	var reservations []Reservation
	for rows.Next() {
		var reservation Reservation
		if err := rows.Scan(&reservation.ID, &reservation.Code, &reservation.ClientID,
			&reservation.RoomID, &reservation.Checkin, &reservation.Checkout,
			&reservation.Total, &reservation.CreatedAt); err != nil {
			return nil, shared.StorageErr("scan reservation", err)
		}
		reservations = append(reservations, reservation)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.StorageErr("list reservations", err)
	}
	return reservations, nil
}
