package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/abrezinsky/prizewheel/internal/logger"
	"github.com/abrezinsky/prizewheel/internal/models"
	"github.com/abrezinsky/prizewheel/internal/repository/mock"
	"github.com/abrezinsky/prizewheel/internal/services"
	"github.com/abrezinsky/prizewheel/internal/testutil"
)

func newAdminService(t *testing.T) (*services.AdminService, *mock.Repository, *recordingBroadcaster) {
	t.Helper()
	repo := mock.NewRepository(testutil.NewTestRepository(t))
	svc := services.NewAdminService(logger.New(), repo, 2)
	b := newRecordingBroadcaster()
	svc.SetBroadcaster(b)
	return svc, repo, b
}

func TestAdminService_ListUsers(t *testing.T) {
	svc, repo, _ := newAdminService(t)
	ctx := context.Background()

	repo.EnsureUser(ctx, 1)
	repo.EnsureUser(ctx, 2)
	repo.SetAttemptsUsed(ctx, 2, 2)

	users, err := svc.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	left := map[int64]int{}
	for _, u := range users {
		left[u.UserID] = u.AttemptsLeft
	}
	if left[1] != 2 || left[2] != 0 {
		t.Errorf("unexpected attempts left %v", left)
	}
}

func TestAdminService_ListUsers_Error(t *testing.T) {
	svc, repo, _ := newAdminService(t)
	repo.ListUsersError = errors.New("locked")

	if _, err := svc.ListUsers(context.Background()); err == nil {
		t.Error("expected error")
	}
}

func TestAdminService_ResetAttempts(t *testing.T) {
	svc, repo, b := newAdminService(t)
	ctx := context.Background()

	repo.EnsureUser(ctx, 9)
	repo.SetAttemptsUsed(ctx, 9, 2)

	if err := svc.ResetAttempts(ctx, 9); err != nil {
		t.Fatalf("ResetAttempts failed: %v", err)
	}

	user, _ := repo.GetUser(ctx, 9)
	if user.AttemptsUsed != 0 {
		t.Errorf("expected 0 used, got %d", user.AttemptsUsed)
	}
	status, ok := b.status(9)
	if !ok || status.AttemptsLeft != 2 {
		t.Errorf("expected broadcast with 2 attempts left, got %+v (%v)", status, ok)
	}
}

func TestAdminService_ResetAttempts_Errors(t *testing.T) {
	svc, repo, _ := newAdminService(t)
	ctx := context.Background()

	if err := svc.ResetAttempts(ctx, 404); err != services.ErrUserNotFound {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
	if err := svc.ResetAttempts(ctx, 0); err != services.ErrInvalidUserID {
		t.Errorf("expected ErrInvalidUserID, got %v", err)
	}

	repo.EnsureUser(ctx, 1)
	repo.SetAttemptsUsedError = errors.New("read-only")
	if err := svc.ResetAttempts(ctx, 1); err == nil {
		t.Error("expected storage error")
	}
}

func TestAdminService_AddAttempt(t *testing.T) {
	svc, repo, b := newAdminService(t)
	ctx := context.Background()

	repo.EnsureUser(ctx, 3)
	repo.SetAttemptsUsed(ctx, 3, 2)

	used, err := svc.AddAttempt(ctx, 3)
	if err != nil {
		t.Fatalf("AddAttempt failed: %v", err)
	}
	if used != 1 {
		t.Errorf("expected 1 used, got %d", used)
	}
	if status, _ := b.status(3); status.AttemptsLeft != 1 {
		t.Errorf("expected broadcast with 1 attempt left, got %+v", status)
	}

	svc.AddAttempt(ctx, 3)

	// Already at the full allowance
	if _, err := svc.AddAttempt(ctx, 3); err != services.ErrMaxAttempts {
		t.Errorf("expected ErrMaxAttempts, got %v", err)
	}
}

func TestAdminService_AddAttempt_Errors(t *testing.T) {
	svc, repo, _ := newAdminService(t)
	ctx := context.Background()

	if _, err := svc.AddAttempt(ctx, 404); err != services.ErrUserNotFound {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}

	repo.EnsureUser(ctx, 1)
	repo.SetAttemptsUsed(ctx, 1, 1)
	repo.SetAttemptsUsedError = errors.New("read-only")
	if _, err := svc.AddAttempt(ctx, 1); err == nil {
		t.Error("expected storage error")
	}

	repo.GetUserError = errors.New("locked")
	if _, err := svc.AddAttempt(ctx, 1); err == nil || err == services.ErrUserNotFound {
		t.Errorf("expected storage error, got %v", err)
	}
}

func TestAdminService_AddPrize(t *testing.T) {
	svc, repo, b := newAdminService(t)
	ctx := context.Background()

	repo.EnsureUser(ctx, 4)

	gift, err := svc.AddPrize(ctx, 4, models.Prize{Name: "Trophy", StarPrice: 100, Img: "/static/img/trophy.png"})
	if err != nil {
		t.Fatalf("AddPrize failed: %v", err)
	}
	if gift.Date == "" {
		t.Error("expected the gift to be dated")
	}

	gifts, _ := repo.ListGifts(ctx, 4)
	if len(gifts) != 1 || gifts[0].Name != "Trophy" {
		t.Errorf("unexpected gifts %+v", gifts)
	}
	if status, _ := b.status(4); len(status.Gifts) != 1 {
		t.Errorf("expected broadcast with 1 gift, got %+v", status)
	}
}

func TestAdminService_AddPrize_Errors(t *testing.T) {
	svc, repo, _ := newAdminService(t)
	ctx := context.Background()

	if _, err := svc.AddPrize(ctx, 4, models.Prize{}); err != services.ErrInvalidPrize {
		t.Errorf("expected ErrInvalidPrize, got %v", err)
	}
	if _, err := svc.AddPrize(ctx, 4, models.Prize{Name: "Bad", StarPrice: -1}); err != services.ErrInvalidPrize {
		t.Errorf("expected ErrInvalidPrize for negative price, got %v", err)
	}
	if _, err := svc.AddPrize(ctx, 404, models.Prize{Name: "Rose"}); err != services.ErrUserNotFound {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}

	repo.EnsureUser(ctx, 4)
	repo.AddGiftError = errors.New("constraint failed")
	if _, err := svc.AddPrize(ctx, 4, models.Prize{Name: "Rose"}); err == nil {
		t.Error("expected storage error")
	}
}

func TestAdminService_RemoveGift(t *testing.T) {
	svc, repo, b := newAdminService(t)
	ctx := context.Background()

	repo.EnsureUser(ctx, 5)
	repo.AddGift(ctx, 5, models.Gift{Name: "Rose", StarPrice: 25, Date: "01.01.2025"})
	repo.AddGift(ctx, 5, models.Gift{Name: "Trophy", StarPrice: 100, Date: "02.01.2025"})

	gift, err := svc.RemoveGift(ctx, 5, 0)
	if err != nil {
		t.Fatalf("RemoveGift failed: %v", err)
	}
	if gift.Name != "Rose" {
		t.Errorf("expected Rose removed, got %s", gift.Name)
	}

	gifts, _ := repo.ListGifts(ctx, 5)
	if len(gifts) != 1 || gifts[0].Name != "Trophy" {
		t.Errorf("unexpected remaining gifts %+v", gifts)
	}
	if status, _ := b.status(5); len(status.Gifts) != 1 {
		t.Errorf("expected broadcast with 1 gift, got %+v", status)
	}
}

func TestAdminService_RemoveGift_Errors(t *testing.T) {
	svc, repo, _ := newAdminService(t)
	ctx := context.Background()

	repo.EnsureUser(ctx, 5)

	if _, err := svc.RemoveGift(ctx, 5, -1); err != services.ErrInvalidGiftIndex {
		t.Errorf("expected ErrInvalidGiftIndex, got %v", err)
	}
	if _, err := svc.RemoveGift(ctx, 5, 0); err != services.ErrGiftIndexOutOfRange {
		t.Errorf("expected ErrGiftIndexOutOfRange, got %v", err)
	}
	if _, err := svc.RemoveGift(ctx, 404, 0); err != services.ErrUserNotFound {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}

	repo.DeleteGiftError = errors.New("locked")
	if _, err := svc.RemoveGift(ctx, 5, 0); err == nil || err == services.ErrGiftIndexOutOfRange {
		t.Errorf("expected storage error, got %v", err)
	}
}

func TestAdminService_BroadcastSkippedOnLookupError(t *testing.T) {
	repo := mock.NewRepository(testutil.NewTestRepository(t))
	ctx := context.Background()
	repo.EnsureUser(ctx, 6)

	// SetAttemptsUsed succeeds, then the broadcast lookup fails
	svc := services.NewAdminService(logger.New(), repo, 2)
	b := newRecordingBroadcaster()
	svc.SetBroadcaster(b)
	repo.GetUserError = errors.New("locked")

	if err := svc.ResetAttempts(ctx, 6); err != nil {
		t.Fatalf("ResetAttempts failed: %v", err)
	}
	if _, ok := b.status(6); ok {
		t.Error("expected no broadcast")
	}
}

func TestAdminService_Stats(t *testing.T) {
	svc, repo, _ := newAdminService(t)
	ctx := context.Background()

	repo.EnsureUser(ctx, 1)
	svc.AddPrize(ctx, 1, models.Prize{Name: "Rose", StarPrice: 25})

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Users != 1 || stats.Gifts != 1 || stats.StarsSpent != 25 {
		t.Errorf("unexpected stats %+v", stats)
	}
}
