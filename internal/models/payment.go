package models

import (
	"time"
)

const PaymentStatusSucceeded = "succeeded"

// Payment is an append-only ledger entry for a confirmed provider charge.
type Payment struct {
	ID        string    `json:"_id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	BiodataID int       `json:"biodataId" bson:"biodataId,omitempty"`
	Amount    int64     `json:"amount" bson:"amount"`
	Currency  string    `json:"currency" bson:"currency,omitempty"`
	PaymentID string    `json:"paymentId" bson:"paymentId"`
	Status    string    `json:"status" bson:"status"`
	Date      time.Time `json:"date" bson:"date"`
}

type CreatePaymentIntentRequest struct {
	AmountInCents int64 `json:"amountInCents"`
	BiodataID     int   `json:"biodataId"`
}

func (r *CreatePaymentIntentRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.AmountInCents < 0 {
		errors["amountInCents"] = "Invalid amount"
	}
	if r.BiodataID <= 0 {
		errors["biodataId"] = "Biodata ID is required"
	}

	return errors
}

type PaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// RecordPaymentRequest is sent by the client after the provider confirms a
// charge. Amount is optional; when set it must equal the charged amount.
type RecordPaymentRequest struct {
	Name      string `json:"name"`
	BiodataID int    `json:"biodataId"`
	PaymentID string `json:"paymentId"`
	Amount    int64  `json:"amount"`
}

func (r *RecordPaymentRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.PaymentID == "" {
		errors["paymentId"] = "Payment ID is required"
	}
	if r.BiodataID <= 0 {
		errors["biodataId"] = "Biodata ID is required"
	}
	if r.Amount < 0 {
		errors["amount"] = "Invalid amount"
	}

	return errors
}
