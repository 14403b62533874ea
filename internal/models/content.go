package models

import (
	"net/mail"
	"strings"
	"time"
)

type ContactMessage struct {
	ID      string    `json:"_id" bson:"_id"`
	Name    string    `json:"name" bson:"name"`
	Email   string    `json:"email" bson:"email"`
	Message string    `json:"message" bson:"message"`
	Date    time.Time `json:"date" bson:"date"`
}

type ContactMessageRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Message        string `json:"message"`
	RecaptchaToken string `json:"recaptchaToken"`
}

func (r *ContactMessageRequest) Validate() map[string]string {
	errors := make(map[string]string)

	name := strings.TrimSpace(r.Name)
	email := strings.TrimSpace(r.Email)
	msg := strings.TrimSpace(r.Message)

	if name == "" {
		errors["name"] = "Name is required"
	} else if len(name) > 120 {
		errors["name"] = "Name is too long"
	}

	if email == "" {
		errors["email"] = "Email is required"
	} else if len(email) > 254 {
		errors["email"] = "Email is too long"
	} else if _, err := mail.ParseAddress(email); err != nil {
		errors["email"] = "Email is invalid"
	}

	if msg == "" {
		errors["message"] = "Message is required"
	} else if len(msg) > 4000 {
		errors["message"] = "Message is too long"
	}

	return errors
}

type SuccessStory struct {
	ID               string    `json:"_id" bson:"_id"`
	SelfBiodataID    int       `json:"yourBiodataId" bson:"yourBiodataId"`
	PartnerBiodataID int       `json:"partnerBiodataId" bson:"partnerBiodataId"`
	CoupleImage      string    `json:"coupleImage" bson:"coupleImage"`
	DateOfMarriage   string    `json:"dateOfMarriage" bson:"dateOfMarriage"`
	Review           string    `json:"review" bson:"review"`
	Rating           float64   `json:"rating" bson:"rating"`
	CreatedAt        time.Time `json:"createdAt" bson:"createdAt"`
}

type CreateStoryRequest struct {
	PartnerBiodataID int     `json:"partnerBiodataId"`
	CoupleImage      string  `json:"coupleImage"`
	DateOfMarriage   string  `json:"dateOfMarriage"`
	Review           string  `json:"review"`
	Rating           float64 `json:"rating"`
}

func (r *CreateStoryRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.PartnerBiodataID <= 0 {
		errors["partnerBiodataId"] = "Partner biodata ID is required"
	}
	if _, err := time.Parse("2006-01-02", r.DateOfMarriage); err != nil {
		errors["dateOfMarriage"] = "Date of marriage must be YYYY-MM-DD"
	}
	if strings.TrimSpace(r.Review) == "" {
		errors["review"] = "Review is required"
	}
	if r.Rating < 0 || r.Rating > 5 {
		errors["rating"] = "Rating must be between 0 and 5"
	}

	return errors
}
