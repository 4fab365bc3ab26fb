package model

import "time"

type Subscription struct {
	UserID        string    `json:"user_id"`
	GroupID       string    `json:"group_id"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	AmountPaid    float64   `json:"amount_paid"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"payment_method"`
	ReceiptURL    string    `json:"receipt_url,omitempty"`
}

type RegisterSubscriptionRequest struct {
	UserID  string `json:"user_id"`
	GroupID string `json:"group_id"`

	// StartDate and EndDate are optional; when omitted the period starts
	// today and runs for one month.
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`

	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method"`

	// ReceiptData is the base64 payment receipt uploaded to storage.
	ReceiptData     string `json:"receipt_data,omitempty"`
	ReceiptMime     string `json:"receipt_mime,omitempty"`
	ReceiptFileName string `json:"receipt_file_name,omitempty"`
}

type RegisterSubscriptionResponse struct {
	Subscription Subscription `json:"subscription"`
}

type GetSubscriptionRequest struct {
	GroupID string `json:"group_id" form:"group_id"`
}

type GetSubscriptionResponse struct {
	Subscription  Subscription `json:"subscription"`
	DaysRemaining int          `json:"days_remaining"`
}

type GetSubscriptionsRequest struct {
	GroupID string `json:"group_id" form:"group_id"`
}

type GetSubscriptionsResponse struct {
	Subscriptions []Subscription `json:"subscriptions"`
}

type CancelSubscriptionRequest struct {
	UserID  string `json:"user_id"`
	GroupID string `json:"group_id"`
}

type CancelSubscriptionResponse struct{}
