package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/prizewheel/internal/auth"
	"github.com/abrezinsky/prizewheel/internal/logger"
	"github.com/abrezinsky/prizewheel/internal/services"
)

// ==================== Login ====================

// LoginPageData holds data for the login template
type LoginPageData struct {
	Error string
}

func (h *Handlers) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.Auth.Session(r); ok {
		http.Redirect(w, r, "/admin", http.StatusFound)
		return
	}
	h.templates.AdminLogin.Execute(w, LoginPageData{})
}

func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	token, err := h.Auth.Login(r.FormValue("password"))
	if err != nil {
		h.appLog().Warn("Admin login failed", "remote_addr", r.RemoteAddr, "error", err)
		w.WriteHeader(http.StatusUnauthorized)
		h.templates.AdminLogin.Execute(w, LoginPageData{Error: "Invalid password"})
		return
	}

	h.appLog().Info("Admin logged in", "remote_addr", r.RemoteAddr, "sessions", h.Auth.Active())
	h.Auth.SetCookie(w, r, token)
	http.Redirect(w, r, "/admin", http.StatusFound)
}

func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token, ok := h.Auth.Session(r); ok {
		h.Auth.Logout(token)
		h.appLog().Info("Admin logged out", "remote_addr", r.RemoteAddr)
	}
	auth.ClearCookie(w)
	http.Redirect(w, r, "/admin/login", http.StatusFound)
}

// redirectToLogin sends a browser without a session to the login form
func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/admin/login", http.StatusFound)
}

// rejectUnauthorized answers admin API calls without a session
func rejectUnauthorized(w http.ResponseWriter, r *http.Request) {
	respondError(w, Unauthorized("Unauthorized - please log in"))
}

// ==================== Admin Pages ====================

func (h *Handlers) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	data := AdminPageData{
		Title:     "Prize Wheel Admin",
		PageTitle: "Dashboard",
		ActiveNav: "dashboard",
	}
	h.templates.AdminDashboard.ExecuteTemplate(w, "admin", data)
}

func (h *Handlers) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	data := AdminPageData{
		Title:       "Players",
		PageTitle:   "Players",
		ActiveNav:   "users",
		MaxAttempts: h.User.MaxAttempts(),
	}
	h.templates.AdminUsers.ExecuteTemplate(w, "admin", data)
}

func (h *Handlers) handleAdminSettings(w http.ResponseWriter, r *http.Request) {
	data := AdminPageData{
		Title:     "Admin Settings",
		PageTitle: "Admin Settings",
		ActiveNav: "settings",
	}
	h.templates.AdminSettings.ExecuteTemplate(w, "admin", data)
}

// ==================== Users ====================

func (h *Handlers) handleGetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Admin.ListUsers(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, users)
}

func (h *Handlers) handleResetAttempts(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	userID, err := parseUserID(string(req.UserID))
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.Admin.ResetAttempts(r.Context(), userID); err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, fmt.Sprintf("Attempts reset for user %d", userID))
}

func (h *Handlers) handleAddAttempt(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	userID, err := parseUserID(string(req.UserID))
	if err != nil {
		respondError(w, err)
		return
	}

	used, err := h.Admin.AddAttempt(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, ActionResponse{
		Success:  true,
		Message:  fmt.Sprintf("Attempt added for user %d", userID),
		Attempts: &used,
	})
}

func (h *Handlers) handleAddPrize(w http.ResponseWriter, r *http.Request) {
	var req AddPrizeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	userID, err := parseUserID(string(req.UserID))
	if err != nil {
		respondError(w, err)
		return
	}
	if req.Prize == nil {
		respondError(w, services.ErrInvalidPrize)
		return
	}

	gift, err := h.Admin.AddPrize(r.Context(), userID, *req.Prize)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, ActionResponse{
		Success: true,
		Message: fmt.Sprintf("Prize added to user %d", userID),
		Gift:    gift,
	})
}

func (h *Handlers) handleRemoveGift(w http.ResponseWriter, r *http.Request) {
	var req RemoveGiftRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	userID, err := parseUserID(string(req.UserID))
	if err != nil {
		respondError(w, err)
		return
	}
	if req.GiftIndex == nil {
		respondError(w, BadRequest("gift_index is required"))
		return
	}

	gift, err := h.Admin.RemoveGift(r.Context(), userID, *req.GiftIndex)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, ActionResponse{
		Success: true,
		Message: fmt.Sprintf("Gift removed from user %d", userID),
		Gift:    gift,
	})
}

func (h *Handlers) handleUserSpins(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	spins, err := h.Spin.History(r.Context(), userID, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, spins)
}

// ==================== Wheel Control ====================

func (h *Handlers) handleSetSpinsStatus(w http.ResponseWriter, r *http.Request) {
	var req SpinsStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	ctx := r.Context()
	var err error
	if req.Open {
		err = h.Settings.OpenSpins(ctx)
	} else {
		err = h.Settings.CloseSpins(ctx)
	}
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, SpinsStatusResponse{Open: req.Open})
}

func (h *Handlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Admin.Stats(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, stats)
}

func (h *Handlers) handleGetAppQR(w http.ResponseWriter, r *http.Request) {
	png, err := h.Settings.GenerateAppQR(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}

// ==================== Settings ====================

func (h *Handlers) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appURL, _ := h.Settings.GetAppURL(ctx)
	spinsOpen, _ := h.Settings.IsSpinsOpen(ctx)

	respondOK(w, SettingsResponse{
		AppURL:      appURL,
		SpinsOpen:   spinsOpen,
		MaxAttempts: h.User.MaxAttempts(),
	})
}

func (h *Handlers) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.Settings.UpdateSettings(r.Context(), services.Settings{
		AppURL:    req.AppURL,
		SpinsOpen: req.SpinsOpen,
	}); err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, "Settings updated")
}

// ==================== Database Management ====================

func (h *Handlers) handleResetDatabase(w http.ResponseWriter, r *http.Request) {
	var req DatabaseResetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.Settings.ResetTables(r.Context(), req.Tables)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, ResetResponse{Success: true, Message: result.Message, Tables: result.Tables})
}

// ==================== Logging ====================

// LogLevelRequest represents a request to change the server log level
type LogLevelRequest struct {
	Level string `json:"level"`
	HTTP  *bool  `json:"http"`
}

// handleSetLogLevel changes the log level at runtime when the logger supports it
func (h *Handlers) handleSetLogLevel(w http.ResponseWriter, r *http.Request) {
	var req LogLevelRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	l, ok := h.Log.(logger.Logger)
	if !ok {
		respondError(w, NewAPIError(http.StatusNotImplemented, ErrCodeBadRequest, "log level cannot be changed"))
		return
	}
	if req.Level != "" {
		l.SetLevel(logger.ParseLevel(req.Level))
	}
	if req.HTTP != nil {
		if *req.HTTP {
			l.EnableHTTPLogging()
		} else {
			l.DisableHTTPLogging()
		}
	}

	respondOK(w, map[string]interface{}{
		"level": l.GetLevel().String(),
		"http":  l.IsHTTPLoggingEnabled(),
	})
}
