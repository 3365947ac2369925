package hotel

import (
	"time"

	"github.com/google/uuid"
)

// RoomType classifies a room and its pricing tier.
type RoomType string

const (
	RoomStandard RoomType = "standard"
	RoomSuite    RoomType = "suite"
	RoomLuxury   RoomType = "luxo"
)

// Valid reports whether the room type is one of the enumerated values.
func (t RoomType) Valid() bool {
	switch t {
	case RoomStandard, RoomSuite, RoomLuxury:
		return true
	}
	return false
}

// Room is one bookable hotel room.
type Room struct {
	ID        int64    `json:"id"`
	Number    string   `json:"number"`
	Type      RoomType `json:"type"`
	DailyRate float64  `json:"daily_rate"`
	Capacity  int      `json:"capacity"`
	Available bool     `json:"available"`
}

// Reservation books a room for a client over a date range. The total is
// fixed at booking time from the nights and the room's daily rate.
type Reservation struct {
	ID        int64     `json:"id"`
	Code      uuid.UUID `json:"code"`
	ClientID  int64     `json:"client_id"`
	RoomID    int64     `json:"room_id"`
	Checkin   time.Time `json:"checkin"`
	Checkout  time.Time `json:"checkout"`
	Total     float64   `json:"total"`
	CreatedAt time.Time `json:"created_at"`
}

// Nights returns the number of nights between checkin and checkout.
func (r Reservation) Nights() int {
	return int(r.Checkout.Sub(r.Checkin).Hours() / 24)
}
