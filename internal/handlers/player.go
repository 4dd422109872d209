package handlers

import (
	"fmt"
	"net/http"
)

// handleIndex serves the mini-app page
func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.templates.Index.Execute(w, nil)
}

// handleAnnounce registers the player. Repeating it is harmless.
func (h *Handlers) handleAnnounce(w http.ResponseWriter, r *http.Request) {
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

	created, err := h.User.Announce(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	message := fmt.Sprintf("User %d already registered", userID)
	if created {
		message = fmt.Sprintf("User %d registered", userID)
	}
	respondOK(w, AnnounceResponse{Status: "ok", Message: message})
}

// handleGetUserStatus returns attempts left and gifts for ?user_id=N
func (h *Handlers) handleGetUserStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r.URL.Query().Get("user_id"))
	if err != nil {
		respondError(w, err)
		return
	}

	status, err := h.User.GetStatus(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, status)
}

// handleSpin decides and records one spin
func (h *Handlers) handleSpin(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.Spin.Spin(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, result)
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondOK(w, HealthResponse{Status: "ok"})
}

// handlePrizes returns the catalog clients build their strip from
func (h *Handlers) handlePrizes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=300")
	respondOK(w, h.Spin.Prizes())
}
