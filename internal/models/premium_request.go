package models

import "time"

type PremiumStatus string

const (
	PremiumPending  PremiumStatus = "pending"
	PremiumApproved PremiumStatus = "approved"
)

func (s PremiumStatus) Valid() bool {
	return s == PremiumPending || s == PremiumApproved
}

type PremiumRequest struct {
	ID          string        `json:"_id" bson:"_id,omitempty"`
	Email       string        `json:"email" bson:"email"`
	Status      PremiumStatus `json:"status" bson:"status"`
	RequestedAt time.Time     `json:"requestedAt" bson:"requestedAt"`
}

type SetPremiumStatusRequest struct {
	Status PremiumStatus `json:"status"`
}
