package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/niu-24-19333-stack/ScamShield/internal/db"
	"github.com/niu-24-19333-stack/ScamShield/internal/model"
)

const apiKeyPrefix = "ss_key_"

var ErrNoAPIKey = errors.New("no api key found")

type settingsStore interface {
	GetSettings(ctx context.Context, userID string) (*model.UserSettings, error)
	SaveSettings(ctx context.Context, settings *model.UserSettings) error
}

type apiKeyStore interface {
	SaveAPIKey(ctx context.Context, key *model.APIKey) error
	GetAPIKey(ctx context.Context, userID string) (*model.APIKey, error)
	RevokeAPIKey(ctx context.Context, userID string) error
}

type subscriptionStore interface {
	GetSubscription(ctx context.Context, userID string) (*model.Subscription, error)
}

// UserService covers the profile surface around the auth core: profile and
// settings CRUD, account stats, and the per-user API key.
type UserService struct {
	users    userStore
	settings settingsStore
	keys     apiKeyStore
	subs     subscriptionStore
}

func NewUserService(users userStore, settings settingsStore, keys apiKeyStore, subs subscriptionStore) *UserService {
	return &UserService{
		users:    users,
		settings: settings,
		keys:     keys,
		subs:     subs,
	}
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, req model.UserUpdateRequest) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" || len(name) > 100 {
			return nil, ErrInvalidInput
		}
		user.FullName = name
	}
	if req.Phone != nil {
		phone, err := normalizePhone(*req.Phone)
		if err != nil {
			return nil, err
		}
		user.Phone = phone
	}

	if err := s.users.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetSettings returns stored settings, or the defaults when no row exists
// yet.
func (s *UserService) GetSettings(ctx context.Context, userID string) (*model.UserSettings, error) {
	settings, err := s.settings.GetSettings(ctx, userID)
	if err != nil {
		if db.IsNoRows(err) {
			return defaultSettings(userID), nil
		}
		return nil, err
	}
	return settings, nil
}

func (s *UserService) UpdateSettings(ctx context.Context, userID string, req model.UserSettingsUpdateRequest) (*model.UserSettings, error) {
	settings, err := s.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.EmailAlerts != nil {
		settings.EmailAlerts = *req.EmailAlerts
	}
	if req.SMSAlerts != nil {
		settings.SMSAlerts = *req.SMSAlerts
	}
	if req.AutoBlock != nil {
		settings.AutoBlock = *req.AutoBlock
	}
	if req.Sensitivity != nil {
		switch *req.Sensitivity {
		case "low", "medium", "high":
			settings.Sensitivity = *req.Sensitivity
		default:
			return nil, ErrInvalidInput
		}
	}

	if err := s.settings.SaveSettings(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *UserService) GetStats(ctx context.Context, userID string) (*model.UserStatsResponse, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &model.UserStatsResponse{
		MemberSince:   user.CreatedAt,
		EmailVerified: user.IsVerified,
		LastLogin:     user.LastLogin,
		PlanTier:      model.PlanFree,
	}

	sub, err := s.subs.GetSubscription(ctx, userID)
	if err != nil {
		if !db.IsNoRows(err) {
			return nil, err
		}
	} else {
		stats.PlanTier = sub.PlanTier
	}

	return stats, nil
}

// GenerateAPIKey mints a new key for the user, replacing any existing one.
// Only the hash is stored; the full key is returned once.
func (s *UserService) GenerateAPIKey(ctx context.Context, userID string) (*model.APIKeyResponse, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}
	keyHex := hex.EncodeToString(raw)
	apiKey := apiKeyPrefix + keyHex[:32]
	prefix := apiKeyPrefix + keyHex[:8] + "..."

	sum := sha256.Sum256([]byte(apiKey))
	now := time.Now().UTC()
	record := &model.APIKey{
		UserID:  userID,
		KeyHash: hex.EncodeToString(sum[:]),
		Prefix:  prefix,
		Status:  model.APIKeyActive,
	}
	if err := s.keys.SaveAPIKey(ctx, record); err != nil {
		return nil, err
	}

	return &model.APIKeyResponse{
		APIKey:    apiKey,
		Prefix:    prefix,
		CreatedAt: now.Format(time.RFC3339),
		Status:    string(model.APIKeyActive),
	}, nil
}

func (s *UserService) GetAPIKeyInfo(ctx context.Context, userID string) (*model.APIKeyInfo, error) {
	key, err := s.keys.GetAPIKey(ctx, userID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNoAPIKey
		}
		return nil, err
	}

	info := &model.APIKeyInfo{
		Prefix:    key.Prefix,
		CreatedAt: key.CreatedAt.UTC().Format(time.RFC3339),
		Status:    string(key.Status),
	}
	if key.LastUsed != nil {
		lastUsed := key.LastUsed.UTC().Format(time.RFC3339)
		info.LastUsed = &lastUsed
	}
	return info, nil
}

func (s *UserService) RevokeAPIKey(ctx context.Context, userID string) error {
	if _, err := s.keys.GetAPIKey(ctx, userID); err != nil {
		if db.IsNoRows(err) {
			return ErrNoAPIKey
		}
		return err
	}
	return s.keys.RevokeAPIKey(ctx, userID)
}

func defaultSettings(userID string) *model.UserSettings {
	return &model.UserSettings{
		UserID:      userID,
		EmailAlerts: true,
		SMSAlerts:   false,
		AutoBlock:   true,
		Sensitivity: "medium",
	}
}
