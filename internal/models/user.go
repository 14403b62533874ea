package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID             string    `json:"_id" bson:"_id,omitempty"`
	Email          string    `json:"email" bson:"email"`
	Name           string    `json:"name" bson:"name"`
	Photo          string    `json:"photo" bson:"photo,omitempty"`
	Role           Role      `json:"role" bson:"role"`
	Premium        BoolFlag  `json:"premium" bson:"premium"`
	ImageStrikes   int       `json:"imageStrikes,omitempty" bson:"imageStrikes,omitempty"`
	CreationTime   time.Time `json:"creationTime" bson:"creationTime"`
	LastSignInTime time.Time `json:"lastSignInTime" bson:"lastSignInTime"`
}

type CreateUserRequest struct {
	Email          string `json:"email"`
	Name           string `json:"name"`
	Photo          string `json:"photo"`
	CreationTime   string `json:"creationTime"`
	LastSignInTime string `json:"lastSignInTime"`
}

func (r *CreateUserRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if strings.TrimSpace(r.Email) == "" {
		errors["email"] = "Email is required"
	}
	if len(r.Name) > 120 {
		errors["name"] = "Name is too long"
	}
	if r.CreationTime != "" {
		if _, err := ParseClientTime(r.CreationTime); err != nil {
			errors["creationTime"] = "Invalid timestamp"
		}
	}
	if r.LastSignInTime != "" {
		if _, err := ParseClientTime(r.LastSignInTime); err != nil {
			errors["lastSignInTime"] = "Invalid timestamp"
		}
	}

	return errors
}

type LastSignInRequest struct {
	Email          string `json:"email"`
	LastSignInTime string `json:"lastSignInTime"`
}

type UpdateProfileRequest struct {
	Name  *string `json:"name"`
	Photo *string `json:"photo"`
}

type SetRoleRequest struct {
	Role Role `json:"role"`
}

type SetPremiumRequest struct {
	Premium BoolFlag `json:"premium"`
}

// Identity is the verified caller attached to a request by the session middleware.
type Identity struct {
	Email   string
	Role    Role
	Premium bool
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

func (i Identity) Anonymous() bool { return i.Email == "" }

var clientTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC1123,
	time.RFC1123Z,
	"2006-01-02",
}

// ParseClientTime accepts the timestamp formats browsers and the Firebase
// client SDK send (ISO-8601 and the RFC 1123 strings in user metadata).
func ParseClientTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var err error
	for _, layout := range clientTimeLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, err
}
