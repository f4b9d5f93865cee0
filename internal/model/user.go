package model

import "time"

// Role is a closed set; anything else is rejected at the boundary.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Provider identifies where the account's credentials live.
type Provider string

const (
	ProviderLocal  Provider = "local"
	ProviderGoogle Provider = "google"
	ProviderGitHub Provider = "github"
)

func (p Provider) Valid() bool {
	return p == ProviderLocal || p == ProviderGoogle || p == ProviderGitHub
}

// User is the persisted account record. Email is the unique, lowercased
// identity key. PasswordHash is nil for federated accounts until the user
// explicitly sets a password.
type User struct {
	ID                       string
	Email                    string
	PasswordHash             *string
	FullName                 string
	Phone                    *string
	Role                     Role
	Provider                 Provider
	IsActive                 bool
	IsVerified               bool
	VerificationToken        *string
	VerificationTokenExpires *time.Time
	ResetToken               *string
	ResetTokenExpires        *time.Time
	LastLogin                *time.Time
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

type UserSettings struct {
	UserID      string    `json:"user_id"`
	EmailAlerts bool      `json:"email_alerts"`
	SMSAlerts   bool      `json:"sms_alerts"`
	AutoBlock   bool      `json:"auto_block"`
	Sensitivity string    `json:"sensitivity"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type UserResponse struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	FullName   string     `json:"full_name"`
	Phone      *string    `json:"phone,omitempty"`
	Role       Role       `json:"role"`
	Provider   Provider   `json:"provider"`
	IsActive   bool       `json:"is_active"`
	IsVerified bool       `json:"is_verified"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ToResponse strips credential material before the user leaves the service layer.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		Phone:      u.Phone,
		Role:       u.Role,
		Provider:   u.Provider,
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
		LastLogin:  u.LastLogin,
		CreatedAt:  u.CreatedAt,
	}
}

type UserStatsResponse struct {
	PlanTier      PlanTier   `json:"plan_tier"`
	MemberSince   time.Time  `json:"member_since"`
	EmailVerified bool       `json:"email_verified"`
	LastLogin     *time.Time `json:"last_login,omitempty"`
}

type UserUpdateRequest struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
}

type UserSettingsUpdateRequest struct {
	EmailAlerts *bool   `json:"email_alerts"`
	SMSAlerts   *bool   `json:"sms_alerts"`
	AutoBlock   *bool   `json:"auto_block"`
	Sensitivity *string `json:"sensitivity"`
}
