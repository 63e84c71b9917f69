package response

import "github.com/campushub/events-api/internal/domain"

type RegistrationResponse struct {
	Registration  domain.Registration `json:"registration"`
	WalletBalance *int64              `json:"wallet_balance,omitempty"`
	CalendarSync  string              `json:"calendar_sync,omitempty"`
}

type BatchItemResponse struct {
	EventID        uint   `json:"event_id"`
	RegistrationID uint   `json:"registration_id,omitempty"`
	Status         string `json:"status"`
	Error          string `json:"error,omitempty"`
}

type BatchRegistrationResponse struct {
	Items     []BatchItemResponse `json:"items"`
	TotalPaid int64               `json:"total_paid"`
}

type CancellationResponse struct {
	Registration   domain.Registration `json:"registration"`
	RefundedAmount int64               `json:"refunded_amount"`
	WalletBalance  *int64              `json:"wallet_balance,omitempty"`
}

type WalletResponse struct {
	UserID  uint  `json:"user_id"`
	Balance int64 `json:"balance"`
}

type TokenResponse struct {
	Token string `json:"token"`
}
