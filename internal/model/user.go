package model

import (
	"time"

	"FundDesk/internal/money"
)

// Role is the access level of a user.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleClient Role = "CLIENT"
)

// UserProfile is an entry of the KYC roster.
type UserProfile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	ReferralCode string    `json:"referralCode"`
	JoinedDate   time.Time `json:"joinedDate"`
	AvatarURL    string    `json:"avatarUrl"`
	IsVerified   bool      `json:"isVerified"`
	Role         Role      `json:"role"`
}

// ReferralStatus is the state of an invited client.
type ReferralStatus string

const (
	ReferralActive  ReferralStatus = "ACTIVE"
	ReferralPending ReferralStatus = "PENDING"
)

// Referral is a client brought in through a referral code.
type Referral struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	JoinedDate time.Time      `json:"joinedDate"`
	Status     ReferralStatus `json:"status"`
	Commission money.Cents    `json:"commission"`
}

// Identity is the caller on whose behalf an operation runs.
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// IsAdmin reports whether the identity may approve transactions.
func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }
