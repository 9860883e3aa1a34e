package domain

import "time"

type PaymentID string

type PaymentType string

const (
	PaymentTip          PaymentType = "tip"
	PaymentSubscription PaymentType = "subscription"
	PaymentPrivateShow  PaymentType = "private_show"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

type Payment struct {
	ID           PaymentID     `json:"id"`
	UserID       UserID        `json:"user_id"`
	StreamID     StreamID      `json:"stream_id,omitempty"`
	Amount       float64       `json:"amount"`
	Currency     string        `json:"currency"`
	Type         PaymentType   `json:"type"`
	Status       PaymentStatus `json:"status"`
	Message      string        `json:"message,omitempty"`
	ProcessorRef string        `json:"processor_ref,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}
