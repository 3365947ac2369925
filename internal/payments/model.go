package payments

import (
	"time"

	"github.com/google/uuid"
)

// ServiceType identifies what a payment pays for.
type ServiceType string

const (
	ServiceEnrollmentFee ServiceType = "matricula"
	ServiceMonthlyFee    ServiceType = "mensalidade"
	ServiceFieldRental   ServiceType = "aluguer_campo"
	ServiceLodging       ServiceType = "hospedagem"
	ServicePool          ServiceType = "piscina_balneario"
)

// Valid reports whether the service type is one of the enumerated values.
func (s ServiceType) Valid() bool {
	switch s {
	case ServiceEnrollmentFee, ServiceMonthlyFee, ServiceFieldRental, ServiceLodging, ServicePool:
		return true
	}
	return false
}

// Payment is one settled payment with its receipt.
type Payment struct {
	ID        int64       `json:"id"`
	ReceiptNo uuid.UUID   `json:"receipt_no"`
	UserID    int64       `json:"user_id"`
	Service   ServiceType `json:"service_type"`
	Amount    float64     `json:"amount"`
	Method    string      `json:"method"`
	Notes     string      `json:"notes,omitempty"`
	PaidAt    time.Time   `json:"paid_at"`
}
