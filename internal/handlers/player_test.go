package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/abrezinsky/prizewheel/internal/handlers"
	"github.com/abrezinsky/prizewheel/internal/models"
)

// ==================== Announce Tests ====================

func TestHandleAnnounce_NewUser(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodPost, "/api/user", map[string]interface{}{"user_id": 42}, false)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp handlers.AnnounceResponse
	decode(t, rec, &resp)
	if resp.Status != "ok" {
		t.Errorf("expected status 'ok', got %q", resp.Status)
	}
	if resp.Message != "User 42 registered" {
		t.Errorf("unexpected message %q", resp.Message)
	}

	if _, err := setup.repo.GetUser(context.Background(), 42); err != nil {
		t.Errorf("expected user to be stored: %v", err)
	}
}

func TestHandleAnnounce_Repeated(t *testing.T) {
	setup := newTestSetup(t)

	setup.do(t, http.MethodPost, "/api/user", map[string]interface{}{"user_id": 42}, false)
	rec := setup.do(t, http.MethodPost, "/api/user", map[string]interface{}{"user_id": 42}, false)

	var resp handlers.AnnounceResponse
	decode(t, rec, &resp)
	if resp.Message != "User 42 already registered" {
		t.Errorf("unexpected message %q", resp.Message)
	}
}

func TestHandleAnnounce_StringUserID(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodPost, "/api/user", `{"user_id":"77"}`, false)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if _, err := setup.repo.GetUser(context.Background(), 77); err != nil {
		t.Errorf("expected user 77 to be stored: %v", err)
	}
}

func TestHandleAnnounce_InvalidUserID(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"missing", `{}`, "user_id is required"},
		{"null", `{"user_id":null}`, "user_id is required"},
		{"not a number", `{"user_id":"abc"}`, "user_id must be a valid integer"},
		{"fraction", `{"user_id":1.5}`, "user_id must be a valid integer"},
		{"zero", `{"user_id":0}`, "user_id must be a positive integer"},
		{"negative", `{"user_id":-3}`, "user_id must be a positive integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup := newTestSetup(t)

			rec := setup.do(t, http.MethodPost, "/api/user", tt.body, false)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", rec.Code)
			}
			var body handlers.APIError
			decode(t, rec, &body)
			if body.Code != handlers.ErrCodeInvalidUserID {
				t.Errorf("expected code %q, got %q", handlers.ErrCodeInvalidUserID, body.Code)
			}
			if body.Message != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, body.Message)
			}
		})
	}
}

func TestHandleAnnounce_RepositoryError(t *testing.T) {
	setup := newTestSetup(t)
	setup.mockRepo.EnsureUserError = errors.New("database is locked")

	rec := setup.do(t, http.MethodPost, "/api/user", map[string]interface{}{"user_id": 42}, false)

	expectError(t, rec, http.StatusInternalServerError, handlers.ErrCodeInternalServer)
}

// ==================== User Status Tests ====================

func TestHandleGetUserStatus_NewUser(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodGet, "/api/get_user_status?user_id=5", nil, false)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var status models.UserStatus
	decode(t, rec, &status)
	if status.AttemptsLeft != 2 {
		t.Errorf("expected 2 attempts left, got %d", status.AttemptsLeft)
	}
	if status.Gifts == nil || len(status.Gifts) != 0 {
		t.Errorf("expected empty gifts array, got %v", status.Gifts)
	}
}

func TestHandleGetUserStatus_AfterSpin(t *testing.T) {
	setup := newTestSetup(t)

	setup.do(t, http.MethodPost, "/api/spin", map[string]interface{}{"user_id": 5}, false)
	rec := setup.do(t, http.MethodGet, "/api/get_user_status?user_id=5", nil, false)

	var status models.UserStatus
	decode(t, rec, &status)
	if status.AttemptsLeft != 1 {
		t.Errorf("expected 1 attempt left, got %d", status.AttemptsLeft)
	}
	if len(status.Gifts) != 1 || status.Gifts[0].Name != "Rose" || status.Gifts[0].Date != "08.03.2025" {
		t.Errorf("unexpected gifts %+v", status.Gifts)
	}
}

func TestHandleGetUserStatus_MissingUserID(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodGet, "/api/get_user_status", nil, false)

	expectError(t, rec, http.StatusBadRequest, handlers.ErrCodeInvalidUserID)
}

func TestHandleGetUserStatus_RepositoryError(t *testing.T) {
	setup := newTestSetup(t)
	setup.mockRepo.GetUserError = errors.New("disk I/O error")

	rec := setup.do(t, http.MethodGet, "/api/get_user_status?user_id=5", nil, false)

	expectError(t, rec, http.StatusInternalServerError, handlers.ErrCodeInternalServer)
}

// ==================== Spin Tests ====================

func TestHandleSpin_Success(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodPost, "/api/spin", map[string]interface{}{"user_id": 9}, false)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result models.SpinResult
	decode(t, rec, &result)
	if result.WonPrize.Name != "Rose" || result.WonPrize.StarPrice != 25 {
		t.Errorf("unexpected prize %+v", result.WonPrize)
	}
	if result.AttemptsLeft != 1 {
		t.Errorf("expected 1 attempt left, got %d", result.AttemptsLeft)
	}
	if result.SpinID == "" {
		t.Error("expected a spin_id")
	}
}

func TestHandleSpin_EmptyPrizeAddsNoGift(t *testing.T) {
	setup := newTestSetup(t)
	setup.spin.SetPicker(func(int) int { return 0 })

	rec := setup.do(t, http.MethodPost, "/api/spin", map[string]interface{}{"user_id": 9}, false)

	var result models.SpinResult
	decode(t, rec, &result)
	if result.WonPrize.Name != "Empty" {
		t.Errorf("expected the empty slot, got %+v", result.WonPrize)
	}
	gifts, _ := setup.repo.ListGifts(context.Background(), 9)
	if len(gifts) != 0 {
		t.Errorf("expected no gifts, got %d", len(gifts))
	}
}

func TestHandleSpin_NoAttemptsLeft(t *testing.T) {
	setup := newTestSetup(t)

	for i := 0; i < 2; i++ {
		rec := setup.do(t, http.MethodPost, "/api/spin", map[string]interface{}{"user_id": 9}, false)
		if rec.Code != http.StatusOK {
			t.Fatalf("spin %d: expected status 200, got %d", i+1, rec.Code)
		}
	}

	rec := setup.do(t, http.MethodPost, "/api/spin", map[string]interface{}{"user_id": 9}, false)

	expectError(t, rec, http.StatusForbidden, handlers.ErrCodeNoAttempts)
}

func TestHandleSpin_SpinsClosed(t *testing.T) {
	setup := newTestSetup(t)
	if err := setup.handlers.Settings.CloseSpins(context.Background()); err != nil {
		t.Fatalf("CloseSpins failed: %v", err)
	}

	rec := setup.do(t, http.MethodPost, "/api/spin", map[string]interface{}{"user_id": 9}, false)

	expectError(t, rec, http.StatusForbidden, handlers.ErrCodeSpinsClosed)
}

func TestHandleSpin_InvalidUserID(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodPost, "/api/spin", `{"user_id":"-1"}`, false)

	expectError(t, rec, http.StatusBadRequest, handlers.ErrCodeInvalidUserID)
}

func TestHandleSpin_RepositoryError(t *testing.T) {
	setup := newTestSetup(t)
	setup.mockRepo.RecordSpinError = errors.New("database is locked")

	rec := setup.do(t, http.MethodPost, "/api/spin", map[string]interface{}{"user_id": 9}, false)

	expectError(t, rec, http.StatusInternalServerError, handlers.ErrCodeInternalServer)
}

// ==================== Health Tests ====================

func TestHandleHealth(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodGet, "/health", nil, false)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var resp handlers.HealthResponse
	decode(t, rec, &resp)
	if resp.Status != "ok" {
		t.Errorf("expected status ok, got %q", resp.Status)
	}
}

// ==================== Prizes Tests ====================

func TestHandlePrizes(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodGet, "/api/prizes", nil, false)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if cc := rec.Header().Get("Cache-Control"); cc == "" {
		t.Error("expected a Cache-Control header")
	}
	var prizes []models.Prize
	decode(t, rec, &prizes)
	if len(prizes) != 3 {
		t.Fatalf("expected 3 prizes, got %d", len(prizes))
	}
	if prizes[2].Name != "Trophy" || prizes[2].StarPrice != 100 {
		t.Errorf("unexpected prize %+v", prizes[2])
	}
}

func TestPublicAPI_CORSPreflight(t *testing.T) {
	setup := newTestSetup(t)

	req := newPreflight("/api/spin", "https://web.telegram.org")
	rec := serve(setup.router, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Error("expected Access-Control-Allow-Origin on preflight")
	}
}
