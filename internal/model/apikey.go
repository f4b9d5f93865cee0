package model

import "time"

type APIKeyStatus string

const (
	APIKeyActive  APIKeyStatus = "active"
	APIKeyRevoked APIKeyStatus = "revoked"
)

// APIKey stores only the hash of the issued key. The full key is shown to
// the user exactly once, at generation time.
type APIKey struct {
	UserID    string
	KeyHash   string
	Prefix    string
	Status    APIKeyStatus
	CreatedAt time.Time
	LastUsed  *time.Time
}

type APIKeyResponse struct {
	APIKey    string `json:"api_key"`
	Prefix    string `json:"prefix"`
	CreatedAt string `json:"created_at"`
	Status    string `json:"status"`
}

type APIKeyInfo struct {
	Prefix    string  `json:"prefix"`
	CreatedAt string  `json:"created_at"`
	Status    string  `json:"status"`
	LastUsed  *string `json:"last_used,omitempty"`
}
