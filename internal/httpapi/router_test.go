package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domain "github.com/mindsoothe/backend/internal/domain/journal"
	"github.com/mindsoothe/backend/internal/httpapi"
	"github.com/mindsoothe/backend/internal/services/analysis"
	authsvc "github.com/mindsoothe/backend/internal/services/auth"
	journalsvc "github.com/mindsoothe/backend/internal/services/journal"
	letterssvc "github.com/mindsoothe/backend/internal/services/letters"
	profilesvc "github.com/mindsoothe/backend/internal/services/profile"
	settingssvc "github.com/mindsoothe/backend/internal/services/settings"
	"github.com/mindsoothe/backend/internal/storage/memory"
)

type stubAnalyzer struct{}

func (stubAnalyzer) AnalyzeEntry(_ context.Context, _ string, kindFriend bool) (analysis.Result, error) {
	reflection := "You are doing fine."
	if kindFriend {
		reflection = "They are doing fine."
	}
	return analysis.Result{
		Mood:        domain.MoodCalm,
		Reflection:  reflection,
		Suggestions: []string{"rest", "walk", "tea"},
		ColorHint:   "soft blue",
	}, nil
}

func (stubAnalyzer) GenerateLetter(context.Context, []domain.Entry) (string, error) {
	return "Dear you, the week is done. Your Future Self ✨", nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := memory.New()
	auth := authsvc.New(store, authsvc.Config{Secret: []byte("test-secret"), TokenTTL: time.Hour}, nil, nil)
	journal := journalsvc.New(store, nil)
	settings := settingssvc.New(store, nil)
	profile := profilesvc.New(store, nil)
	letters := letterssvc.New(store, store, stubAnalyzer{}, nil)

	handler := httpapi.NewRouter(httpapi.Services{
		Auth:     auth,
		Journal:  journal,
		Settings: settings,
		Profile:  profile,
		Letters:  letters,
		Analyzer: stubAnalyzer{},
	}, httpapi.Options{})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	var decoded map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func signupUser(t *testing.T, srv *httptest.Server, email string) string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/auth/signup", "", map[string]string{
		"email":     email,
		"password":  "pw123456",
		"full_name": "Test User",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup status %d: %v", resp.StatusCode, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("signup returned no token")
	}
	return token
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if body["status"] != "ok" || body["timestamp"] == "" {
		t.Fatalf("unexpected health body: %v", body)
	}
}

func TestAuthRejectionMatrix(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		name  string
		token string
		raw   string
	}{
		{name: "missing header"},
		{name: "not bearer", raw: "Basic abc123"},
		{name: "empty bearer", raw: "Bearer "},
		{name: "garbage token", token: "not-a-jwt"},
		{name: "wrong signature", token: "eyJhbGciOiJIUzI1NiJ9.eyJ1c2VyX2lkIjoieCJ9.bad"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/journal", nil)
			if tc.raw != "" {
				req.Header.Set("Authorization", tc.raw)
			} else if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("do: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusUnauthorized {
				t.Fatalf("status %d, want 401", resp.StatusCode)
			}
		})
	}
}

func TestJournalLifecycle(t *testing.T) {
	srv := newTestServer(t)
	token := signupUser(t, srv, "journal@example.com")

	resp, created := doJSON(t, http.MethodPost, srv.URL+"/api/journal", token, map[string]interface{}{
		"content": "first entry",
		"mood":    "happy",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d: %v", resp.StatusCode, created)
	}
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatalf("no id in create response")
	}

	resp, got := doJSON(t, http.MethodGet, srv.URL+"/api/journal/"+id, token, nil)
	if resp.StatusCode != http.StatusOK || got["content"] != "first entry" {
		t.Fatalf("get status %d body %v", resp.StatusCode, got)
	}

	// Extraneous fields are dropped; whitelisted ones apply.
	resp, updated := doJSON(t, http.MethodPut, srv.URL+"/api/journal/"+id, token, map[string]interface{}{
		"mood":    "calm",
		"user_id": "someone-else",
		"id":      "new-id",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status %d: %v", resp.StatusCode, updated)
	}
	if updated["mood"] != "calm" {
		t.Fatalf("mood not updated: %v", updated["mood"])
	}
	if updated["id"] != id || updated["user_id"] == "someone-else" {
		t.Fatalf("identity fields must be immutable: %v", updated)
	}

	resp, deleteBody := doJSON(t, http.MethodDelete, srv.URL+"/api/journal/"+id, token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status %d, want 204", resp.StatusCode)
	}
	if len(deleteBody) != 0 {
		t.Fatalf("delete must send no body, got %v", deleteBody)
	}
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/journal/"+id, token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete status %d, want 404", resp.StatusCode)
	}
}

func TestJournalOwnershipAcrossUsers(t *testing.T) {
	srv := newTestServer(t)
	tokenA := signupUser(t, srv, "owner-a@example.com")
	tokenB := signupUser(t, srv, "owner-b@example.com")

	_, created := doJSON(t, http.MethodPost, srv.URL+"/api/journal", tokenA, map[string]interface{}{
		"content": "private thoughts",
		"mood":    "anxious",
	})
	id := created["id"].(string)

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/journal/"+id, tokenB, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("foreign get status %d, want 404", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/journal/"+id, tokenB, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("foreign delete status %d, want 404", resp.StatusCode)
	}

	// Still intact for the owner.
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/journal/"+id, tokenA, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("owner get status %d", resp.StatusCode)
	}
}

func TestMoodStatsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	token := signupUser(t, srv, "stats@example.com")

	for _, mood := range []string{"happy", "happy", "sad"} {
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/journal", token, map[string]interface{}{
			"content": "entry", "mood": mood,
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create status %d: %v", resp.StatusCode, body)
		}
	}

	resp, stats := doJSON(t, http.MethodGet, srv.URL+"/api/journal/stats/mood", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats status %d", resp.StatusCode)
	}

	want := map[string]float64{"happy": 2, "calm": 0, "neutral": 0, "sad": 1, "anxious": 0, "stressed": 0}
	for mood, count := range want {
		if stats[mood] != count {
			t.Fatalf("stats[%s] = %v, want %v", mood, stats[mood], count)
		}
	}
}

func TestMoodStatsDateOnlyRange(t *testing.T) {
	srv := newTestServer(t)
	token := signupUser(t, srv, "range@example.com")

	doJSON(t, http.MethodPost, srv.URL+"/api/journal", token, map[string]interface{}{
		"content": "entry", "mood": "happy",
	})

	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	url := fmt.Sprintf("%s/api/journal/stats/mood?startDate=%s&endDate=%s", srv.URL, yesterday, tomorrow)

	resp, stats := doJSON(t, http.MethodGet, url, token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats status %d", resp.StatusCode)
	}
	if stats["happy"] != float64(1) {
		t.Fatalf("date-only range missed the entry: %v", stats)
	}

	// A window in the past excludes it.
	lastWeek := time.Now().AddDate(0, 0, -7).Format("2006-01-02")
	url = fmt.Sprintf("%s/api/journal/stats/mood?startDate=%s&endDate=%s", srv.URL, lastWeek, yesterday)
	resp, stats = doJSON(t, http.MethodGet, url, token, nil)
	if resp.StatusCode != http.StatusOK || stats["happy"] != float64(0) {
		t.Fatalf("past window should be empty: %v", stats)
	}

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/journal/stats/mood?startDate=not-a-date", token, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("garbage startDate status %d, want 400", resp.StatusCode)
	}
}

func TestWeeklyStatsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	token := signupUser(t, srv, "weekly@example.com")

	for _, mood := range []string{"calm", "calm", "stressed"} {
		doJSON(t, http.MethodPost, srv.URL+"/api/journal", token, map[string]interface{}{
			"content": "entry", "mood": mood,
		})
	}

	resp, summary := doJSON(t, http.MethodGet, srv.URL+"/api/journal/stats/weekly", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("weekly status %d", resp.StatusCode)
	}
	if summary["totalEntries"] != float64(3) {
		t.Fatalf("totalEntries = %v", summary["totalEntries"])
	}
	if summary["dominantMood"] != "calm" {
		t.Fatalf("dominantMood = %v", summary["dominantMood"])
	}
}

func TestUnlockedEndpoint(t *testing.T) {
	srv := newTestServer(t)
	token := signupUser(t, srv, "capsule@example.com")

	past := time.Now().Add(-time.Hour).Format(time.RFC3339)
	future := time.Now().Add(time.Hour).Format(time.RFC3339)
	doJSON(t, http.MethodPost, srv.URL+"/api/journal", token, map[string]interface{}{
		"content": "open capsule", "mood": "happy", "unlock_at": past,
	})
	doJSON(t, http.MethodPost, srv.URL+"/api/journal", token, map[string]interface{}{
		"content": "sealed capsule", "mood": "happy", "unlock_at": future,
	})

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/journal/unlocked/all", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	var entries []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 1 || entries[0]["content"] != "open capsule" {
		t.Fatalf("expected only the unlocked capsule, got %v", entries)
	}
}

func TestUpdateClearsUnlockAtWithNull(t *testing.T) {
	srv := newTestServer(t)
	token := signupUser(t, srv, "clear@example.com")

	future := time.Now().Add(time.Hour).Format(time.RFC3339)
	resp, created := doJSON(t, http.MethodPost, srv.URL+"/api/journal", token, map[string]interface{}{
		"content": "capsule", "mood": "neutral", "unlock_at": future,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d", resp.StatusCode)
	}
	id := created["id"].(string)

	resp, updated := doJSON(t, http.MethodPut, srv.URL+"/api/journal/"+id, token, map[string]interface{}{
		"unlock_at": nil,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status %d: %v", resp.StatusCode, updated)
	}
	if updated["unlock_at"] != nil {
		t.Fatalf("explicit null did not clear unlock_at: %v", updated["unlock_at"])
	}

	resp, got := doJSON(t, http.MethodGet, srv.URL+"/api/journal/"+id, token, nil)
	if resp.StatusCode != http.StatusOK || got["unlock_at"] != nil {
		t.Fatalf("clear not persisted: %v", got["unlock_at"])
	}
}

func TestSettingsEndpoints(t *testing.T) {
	srv := newTestServer(t)
	token := signupUser(t, srv, "settings@example.com")

	resp, set := doJSON(t, http.MethodGet, srv.URL+"/api/settings", token, nil)
	if resp.StatusCode != http.StatusOK || set["theme"] != "light" {
		t.Fatalf("defaults: status %d body %v", resp.StatusCode, set)
	}

	resp, set = doJSON(t, http.MethodPut, srv.URL+"/api/settings", token, map[string]interface{}{
		"theme":            "dark",
		"kind_friend_mode": true,
	})
	if resp.StatusCode != http.StatusOK || set["theme"] != "dark" || set["kind_friend_mode"] != true {
		t.Fatalf("update: status %d body %v", resp.StatusCode, set)
	}

	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/api/settings", token, map[string]interface{}{
		"theme": "sepia",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad theme status %d, want 400", resp.StatusCode)
	}
}

func TestProfileEndpoints(t *testing.T) {
	srv := newTestServer(t)
	token := signupUser(t, srv, "profile@example.com")

	resp, p := doJSON(t, http.MethodGet, srv.URL+"/api/profile", token, nil)
	if resp.StatusCode != http.StatusOK || p["full_name"] != "Test User" {
		t.Fatalf("profile from signup: status %d body %v", resp.StatusCode, p)
	}

	resp, p = doJSON(t, http.MethodPut, srv.URL+"/api/profile", token, map[string]interface{}{
		"full_name": "Renamed User",
	})
	if resp.StatusCode != http.StatusOK || p["full_name"] != "Renamed User" {
		t.Fatalf("profile update: status %d body %v", resp.StatusCode, p)
	}
}

func TestAuthMeAndSignout(t *testing.T) {
	srv := newTestServer(t)
	token := signupUser(t, srv, "me@example.com")

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/auth/me", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me status %d", resp.StatusCode)
	}
	u, _ := body["user"].(map[string]interface{})
	if u["email"] != "me@example.com" {
		t.Fatalf("unexpected me body: %v", body)
	}
	if _, leaked := u["password_hash"]; leaked {
		t.Fatalf("password hash leaked in response")
	}

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/auth/signout", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("signout status %d", resp.StatusCode)
	}
}

func TestSigninWrongPasswordEnvelope(t *testing.T) {
	srv := newTestServer(t)
	signupUser(t, srv, "envelope@example.com")

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/auth/signin", "", map[string]string{
		"email":    "envelope@example.com",
		"password": "wrong",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", resp.StatusCode)
	}
	if msg, _ := body["error"].(string); msg == "" {
		t.Fatalf("error envelope missing: %v", body)
	}
}

func TestAnalyzeEntryEndpoint(t *testing.T) {
	srv := newTestServer(t)
	token := signupUser(t, srv, "ai@example.com")

	resp, res := doJSON(t, http.MethodPost, srv.URL+"/api/ai/analyze-entry", token, map[string]interface{}{
		"content": "anxious about tomorrow",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("analyze status %d: %v", resp.StatusCode, res)
	}
	if res["mood"] != "calm" || res["reflection"] != "You are doing fine." {
		t.Fatalf("unexpected analysis: %v", res)
	}

	// The saved kind-friend setting flips the voice when the request is
	// silent about it.
	doJSON(t, http.MethodPut, srv.URL+"/api/settings", token, map[string]interface{}{"kind_friend_mode": true})
	resp, res = doJSON(t, http.MethodPost, srv.URL+"/api/ai/analyze-entry", token, map[string]interface{}{
		"content": "anxious about tomorrow",
	})
	if resp.StatusCode != http.StatusOK || res["reflection"] != "They are doing fine." {
		t.Fatalf("kind friend mode not applied: %v", res)
	}
}

func TestGenerateWeeklyLetterEndpoint(t *testing.T) {
	srv := newTestServer(t)
	token := signupUser(t, srv, "letters@example.com")

	weekStart := time.Now().AddDate(0, 0, -7).Format("2006-01-02")
	weekEnd := time.Now().Format("2006-01-02")

	// Empty week: nothing to write about.
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/ai/generate-weekly-letter", token, map[string]string{
		"weekStart": weekStart, "weekEnd": weekEnd,
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("empty week status %d, want 404", resp.StatusCode)
	}

	doJSON(t, http.MethodPost, srv.URL+"/api/journal", token, map[string]interface{}{
		"content": "a week happened", "mood": "neutral",
	})

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/ai/generate-weekly-letter", token, map[string]string{
		"weekStart": weekStart, "weekEnd": weekEnd,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("generate status %d: %v", resp.StatusCode, body)
	}
	letter, _ := body["letter"].(map[string]interface{})
	if letter["week_start"] != weekStart || letter["week_end"] != weekEnd {
		t.Fatalf("week bounds not date-only: %v", letter)
	}

	// The letter is now retrievable by its exact week.
	url := fmt.Sprintf("%s/api/weekly-letters/week?weekStart=%s&weekEnd=%s", srv.URL, weekStart, weekEnd)
	resp, body = doJSON(t, http.MethodGet, url, token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get by week status %d: %v", resp.StatusCode, body)
	}

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/weekly-letters", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list letters status %d", resp.StatusCode)
	}
	if letters, _ := body["letters"].([]interface{}); len(letters) != 1 {
		t.Fatalf("expected one letter, got %v", body)
	}
}
