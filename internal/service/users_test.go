package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/niu-24-19333-stack/ScamShield/internal/model"
)

type fakeSettingsStore struct {
	byUser map[string]*model.UserSettings
}

func (s *fakeSettingsStore) GetSettings(_ context.Context, userID string) (*model.UserSettings, error) {
	if st, ok := s.byUser[userID]; ok {
		out := *st
		return &out, nil
	}
	return nil, pgx.ErrNoRows
}

func (s *fakeSettingsStore) SaveSettings(_ context.Context, settings *model.UserSettings) error {
	clone := *settings
	s.byUser[settings.UserID] = &clone
	return nil
}

type fakeAPIKeyStore struct {
	byUser map[string]*model.APIKey
}

func (s *fakeAPIKeyStore) SaveAPIKey(_ context.Context, key *model.APIKey) error {
	clone := *key
	clone.CreatedAt = time.Now()
	s.byUser[key.UserID] = &clone
	return nil
}

func (s *fakeAPIKeyStore) GetAPIKey(_ context.Context, userID string) (*model.APIKey, error) {
	if k, ok := s.byUser[userID]; ok {
		out := *k
		return &out, nil
	}
	return nil, pgx.ErrNoRows
}

func (s *fakeAPIKeyStore) RevokeAPIKey(_ context.Context, userID string) error {
	k, ok := s.byUser[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	k.Status = model.APIKeyRevoked
	return nil
}

type fakeSubscriptionStore struct {
	byUser map[string]*model.Subscription
}

func (s *fakeSubscriptionStore) GetSubscription(_ context.Context, userID string) (*model.Subscription, error) {
	if sub, ok := s.byUser[userID]; ok {
		out := *sub
		return &out, nil
	}
	return nil, pgx.ErrNoRows
}

func newTestUserService(t *testing.T) (*UserService, *fakeUserStore, *fakeSubscriptionStore) {
	t.Helper()
	users := newFakeUserStore()
	subs := &fakeSubscriptionStore{byUser: map[string]*model.Subscription{}}
	svc := NewUserService(
		users,
		&fakeSettingsStore{byUser: map[string]*model.UserSettings{}},
		&fakeAPIKeyStore{byUser: map[string]*model.APIKey{}},
		subs,
	)
	return svc, users, subs
}

func seedUser(t *testing.T, store *fakeUserStore, email string) *model.User {
	t.Helper()
	user, err := store.InsertUser(context.Background(), &model.User{
		ID:       "user-" + email,
		Email:    email,
		FullName: "Seed User",
		Role:     model.RoleUser,
		Provider: model.ProviderLocal,
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("InsertUser error: %v", err)
	}
	return user
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newTestUserService(t)
	user := seedUser(t, users, "alice@example.com")

	name := "Alice Renamed"
	phone := "+1 555-123-4567"
	updated, err := svc.UpdateProfile(ctx, user.ID, model.UserUpdateRequest{
		FullName: &name,
		Phone:    &phone,
	})
	if err != nil {
		t.Fatalf("UpdateProfile error: %v", err)
	}
	if updated.FullName != "Alice Renamed" {
		t.Fatalf("full name = %q", updated.FullName)
	}
	if updated.Phone == nil || *updated.Phone != "+15551234567" {
		t.Fatalf("phone = %v", updated.Phone)
	}
	if users.mustGet(t, user.ID).FullName != "Alice Renamed" {
		t.Fatalf("rename must persist")
	}

	blank := "  "
	if _, err := svc.UpdateProfile(ctx, user.ID, model.UserUpdateRequest{FullName: &blank}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank name, got %v", err)
	}
	badPhone := "abc"
	if _, err := svc.UpdateProfile(ctx, user.ID, model.UserUpdateRequest{Phone: &badPhone}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad phone, got %v", err)
	}

	// Clearing the phone: empty string maps to NULL.
	empty := ""
	cleared, err := svc.UpdateProfile(ctx, user.ID, model.UserUpdateRequest{Phone: &empty})
	if err != nil {
		t.Fatalf("UpdateProfile error: %v", err)
	}
	if cleared.Phone != nil {
		t.Fatalf("phone must be cleared, got %q", *cleared.Phone)
	}
}

func TestGetSettingsDefaults(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newTestUserService(t)
	user := seedUser(t, users, "alice@example.com")

	settings, err := svc.GetSettings(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetSettings error: %v", err)
	}
	if !settings.EmailAlerts || settings.SMSAlerts || !settings.AutoBlock || settings.Sensitivity != "medium" {
		t.Fatalf("unexpected defaults: %+v", settings)
	}
}

func TestUpdateSettings(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newTestUserService(t)
	user := seedUser(t, users, "alice@example.com")

	sms := true
	sensitivity := "high"
	updated, err := svc.UpdateSettings(ctx, user.ID, model.UserSettingsUpdateRequest{
		SMSAlerts:   &sms,
		Sensitivity: &sensitivity,
	})
	if err != nil {
		t.Fatalf("UpdateSettings error: %v", err)
	}
	if !updated.SMSAlerts || updated.Sensitivity != "high" {
		t.Fatalf("updated settings = %+v", updated)
	}
	// Untouched fields keep their defaults.
	if !updated.EmailAlerts || !updated.AutoBlock {
		t.Fatalf("partial update clobbered defaults: %+v", updated)
	}

	persisted, err := svc.GetSettings(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetSettings error: %v", err)
	}
	if persisted.Sensitivity != "high" {
		t.Fatalf("settings must persist, got %+v", persisted)
	}

	bogus := "extreme"
	if _, err := svc.UpdateSettings(ctx, user.ID, model.UserSettingsUpdateRequest{Sensitivity: &bogus}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bogus sensitivity, got %v", err)
	}
}

func TestGetStats(t *testing.T) {
	ctx := context.Background()
	svc, users, subs := newTestUserService(t)
	user := seedUser(t, users, "alice@example.com")

	stats, err := svc.GetStats(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetStats error: %v", err)
	}
	if stats.PlanTier != model.PlanFree {
		t.Fatalf("plan without subscription row = %q, want free", stats.PlanTier)
	}
	if stats.EmailVerified {
		t.Fatalf("seed user is unverified")
	}

	subs.byUser[user.ID] = &model.Subscription{
		UserID:   user.ID,
		PlanTier: model.PlanPro,
		Status:   model.SubscriptionActive,
	}
	stats, err = svc.GetStats(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetStats error: %v", err)
	}
	if stats.PlanTier != model.PlanPro {
		t.Fatalf("plan = %q, want pro", stats.PlanTier)
	}
}

func TestAPIKeyLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newTestUserService(t)
	user := seedUser(t, users, "alice@example.com")

	if _, err := svc.GetAPIKeyInfo(ctx, user.ID); !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("expected ErrNoAPIKey before generation, got %v", err)
	}
	if err := svc.RevokeAPIKey(ctx, user.ID); !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("expected ErrNoAPIKey on revoke before generation, got %v", err)
	}

	resp, err := svc.GenerateAPIKey(ctx, user.ID)
	if err != nil {
		t.Fatalf("GenerateAPIKey error: %v", err)
	}
	if !strings.HasPrefix(resp.APIKey, "ss_key_") {
		t.Fatalf("api key = %q, want ss_key_ prefix", resp.APIKey)
	}
	if !strings.HasPrefix(resp.Prefix, "ss_key_") || !strings.HasSuffix(resp.Prefix, "...") {
		t.Fatalf("display prefix = %q", resp.Prefix)
	}
	if strings.HasPrefix(resp.APIKey, resp.Prefix) {
		t.Fatalf("display prefix must be truncated, got %q", resp.Prefix)
	}

	info, err := svc.GetAPIKeyInfo(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetAPIKeyInfo error: %v", err)
	}
	if info.Prefix != resp.Prefix || info.Status != "active" {
		t.Fatalf("info = %+v", info)
	}

	// Regeneration replaces the key.
	resp2, err := svc.GenerateAPIKey(ctx, user.ID)
	if err != nil {
		t.Fatalf("GenerateAPIKey error: %v", err)
	}
	if resp2.APIKey == resp.APIKey {
		t.Fatalf("regenerated key must differ")
	}

	if err := svc.RevokeAPIKey(ctx, user.ID); err != nil {
		t.Fatalf("RevokeAPIKey error: %v", err)
	}
	info, err = svc.GetAPIKeyInfo(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetAPIKeyInfo error: %v", err)
	}
	if info.Status != "revoked" {
		t.Fatalf("status after revoke = %q", info.Status)
	}
}
