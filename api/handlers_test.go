package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"memory-match-server/auth"
	"memory-match-server/config"
	"memory-match-server/storage"
)

const testSecret = "api-secret"

type fakeStore struct {
	records   []storage.RoundRecord
	entries   []storage.LeaderboardEntry
	err       error
	gotUserID string
	gotLimit  int
	gotOffset int
}

func (s *fakeStore) InsertRoundResult(context.Context, storage.RoundResult) error { return nil }

func (s *fakeStore) ListByUserID(_ context.Context, userID string, limit int) ([]storage.RoundRecord, error) {
	s.gotUserID = userID
	s.gotLimit = limit
	return s.records, s.err
}

func (s *fakeStore) ListLeaderboard(_ context.Context, limit, offset int) ([]storage.LeaderboardEntry, error) {
	s.gotLimit, s.gotOffset = limit, offset
	return s.entries, s.err
}

func (s *fakeStore) Close() {}

func newTestRouter(store storage.ResultStore) http.Handler {
	h := NewHandler(config.Defaults(), store, auth.NewValidator("", testSecret))
	return NewRouter(h, nil)
}

func bearer(t *testing.T, sub string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + token
}

func do(router http.Handler, method, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(newTestRouter(nil), http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]any
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["ok"] != true || body["persistence"] != false {
		t.Errorf("unexpected body %v", body)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS header")
	}
}

func TestHistoryRequiresAuth(t *testing.T) {
	router := newTestRouter(&fakeStore{})
	if rec := do(router, http.MethodGet, "/api/history", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}
	if rec := do(router, http.MethodGet, "/api/history", "Bearer nope"); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with a bad token, got %d", rec.Code)
	}
}

func TestHistory(t *testing.T) {
	store := &fakeStore{records: []storage.RoundRecord{{ID: "r1", Score: 900, Moves: 20}}}
	rec := do(newTestRouter(store), http.MethodGet, "/api/history?limit=5", bearer(t, "user-1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if store.gotUserID != "user-1" || store.gotLimit != 5 {
		t.Errorf("store called with %q/%d", store.gotUserID, store.gotLimit)
	}
	var list []storage.RoundRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != "r1" {
		t.Errorf("unexpected history %+v", list)
	}
}

func TestHistoryWithoutStore(t *testing.T) {
	rec := do(newTestRouter(nil), http.MethodGet, "/api/history", bearer(t, "user-1"))
	if rec.Code != http.StatusOK || rec.Body.String() != "[]\n" {
		t.Errorf("expected empty list, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestLeaderboard(t *testing.T) {
	store := &fakeStore{entries: []storage.LeaderboardEntry{
		{UserID: "user-1", DisplayName: "Alice", BestScore: 900},
		{UserID: "user-2", DisplayName: "Bob", BestScore: 700},
	}}
	rec := do(newTestRouter(store), http.MethodGet, "/api/leaderboard?offset=-4", bearer(t, "user-2"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if store.gotLimit != 20 || store.gotOffset != 0 {
		t.Errorf("expected defaults 20/0, got %d/%d", store.gotLimit, store.gotOffset)
	}
	var resp LeaderboardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Entries) != 2 || resp.Entries[0].IsCurrentUser || !resp.Entries[1].IsCurrentUser {
		t.Errorf("expected Bob marked as current user, got %+v", resp.Entries)
	}
}

func TestLeaderboardStoreError(t *testing.T) {
	rec := do(newTestRouter(&fakeStore{err: errors.New("boom")}), http.MethodGet, "/api/leaderboard", "")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestPreflight(t *testing.T) {
	rec := do(newTestRouter(nil), http.MethodOptions, "/api/history", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Headers") == "" {
		t.Error("expected CORS headers on preflight")
	}
}
