package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/niu-24-19333-stack/ScamShield/internal/model"
	"github.com/niu-24-19333-stack/ScamShield/internal/service"
)

func adminToken(t *testing.T, env *testEnv) string {
	t.Helper()
	admin, err := env.store.InsertUser(context.Background(), &model.User{
		ID:       "admin-1",
		Email:    "root@example.com",
		FullName: "Root",
		Role:     model.RoleAdmin,
		Provider: model.ProviderLocal,
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("InsertUser error: %v", err)
	}
	token, err := env.codec.Issue(admin.ID, service.TokenAccess, time.Minute)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	return token
}

func TestPurgeBlacklistRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	resp := registerAlice(t, env.router)

	w := doJSON(t, env.router, http.MethodPost, "/api/v1/admin/blacklist/purge", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated purge status = %d, want 401", w.Code)
	}

	// A regular user is rejected by the role check.
	w = doJSON(t, env.router, http.MethodPost, "/api/v1/admin/blacklist/purge", resp.Token.AccessToken, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-admin purge status = %d, want 403", w.Code)
	}
}

func TestPurgeBlacklist(t *testing.T) {
	env := newTestEnv(t)
	token := adminToken(t, env)

	env.store.blacklist["stale-hash"] = time.Now().Add(-time.Minute)
	env.store.blacklist["live-hash"] = time.Now().Add(time.Hour)

	w := doJSON(t, env.router, http.MethodPost, "/api/v1/admin/blacklist/purge", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin purge status = %d, body %s", w.Code, w.Body.String())
	}
	var purged model.PurgeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &purged); err != nil {
		t.Fatalf("decode purge response: %v", err)
	}
	if purged.Purged != 1 {
		t.Fatalf("purged = %d, want 1", purged.Purged)
	}
	if _, ok := env.store.blacklist["live-hash"]; !ok {
		t.Fatalf("live entry must survive the purge")
	}
}
