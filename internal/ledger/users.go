package ledger

import (
	"net/url"
	"time"

	"FundDesk/internal/model"
	"FundDesk/internal/money"
)

// NewUser is the demo signup form.
type NewUser struct {
	Name      string
	Email     string
	AvatarURL string
}

// CreateUser appends an unverified client to the roster. No uniqueness checks
// are made; credentials live outside the ledger.
func (e *Engine) CreateUser(s model.SystemState, in NewUser) (model.SystemState, model.UserProfile) {
	next := s.Clone()
	u := model.UserProfile{
		ID:           e.NewUserID(),
		Name:         in.Name,
		Email:        in.Email,
		ReferralCode: e.NewReferralCode(),
		JoinedDate:   next.CurrentVirtualDate,
		AvatarURL:    in.AvatarURL,
		IsVerified:   false,
		Role:         model.RoleClient,
	}
	if u.AvatarURL == "" {
		u.AvatarURL = avatarURL(in.Name)
	}
	next.Users = append(next.Users, u)
	return next, u
}

// ToggleVerification flips the KYC flag of a user.
func (e *Engine) ToggleVerification(s model.SystemState, userID string) (model.SystemState, model.UserProfile, error) {
	idx := s.FindUser(userID)
	if idx < 0 {
		return s, model.UserProfile{}, ErrUserNotFound
	}
	next := s.Clone()
	next.Users[idx].IsVerified = !next.Users[idx].IsVerified
	return next, next.Users[idx], nil
}

func avatarURL(name string) string {
	return "https://ui-avatars.com/api/?background=0D8ABC&color=fff&name=" + url.QueryEscape(name)
}

func demoUsers(today time.Time) []model.UserProfile {
	return []model.UserProfile{
		{
			ID:           "demo-admin",
			Name:         "Administrador",
			Email:        "admin@funddesk.local",
			ReferralCode: "ADMIN001",
			JoinedDate:   today.AddDate(0, -6, 0),
			AvatarURL:    avatarURL("Administrador"),
			IsVerified:   true,
			Role:         model.RoleAdmin,
		},
		{
			ID:           "demo-client",
			Name:         "Cliente Demonstração",
			Email:        "cliente@funddesk.local",
			ReferralCode: "DEMO2024",
			JoinedDate:   today.AddDate(0, -2, 0),
			AvatarURL:    avatarURL("Cliente Demonstração"),
			IsVerified:   true,
			Role:         model.RoleClient,
		},
		{
			ID:           "demo-pending",
			Name:         "Mariana Souza",
			Email:        "mariana@funddesk.local",
			ReferralCode: "MARI7788",
			JoinedDate:   today.AddDate(0, 0, -3),
			AvatarURL:    avatarURL("Mariana Souza"),
			IsVerified:   false,
			Role:         model.RoleClient,
		},
	}
}

func demoReferrals(today time.Time) []model.Referral {
	return []model.Referral{
		{ID: "ref-1", Name: "Carlos Lima", Email: "carlos@exemplo.com", JoinedDate: today.AddDate(0, -1, 0), Status: model.ReferralActive, Commission: money.FromReais(150)},
		{ID: "ref-2", Name: "Ana Beatriz", Email: "ana@exemplo.com", JoinedDate: today.AddDate(0, 0, -10), Status: model.ReferralPending, Commission: 0},
	}
}
