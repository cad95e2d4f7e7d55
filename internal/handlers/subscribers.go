package handlers

import (
	"log/slog"
	"net/http"

	"github.com/sunday4k/sunday4k/internal/email"
	"github.com/sunday4k/sunday4k/internal/httpx"
)

type subscribeRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
}

func (h *handler) subscribe(w http.ResponseWriter, r *http.Request) error {
	var req subscribeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		return err
	}

	addr, err := email.ValidateAddress(req.Email)
	if err != nil {
		return err
	}

	sub, err := h.subs.Subscribe(r.Context(), addr, req.FirstName)
	if err != nil {
		return err
	}

	h.log.InfoContext(r.Context(), "subscriber added", slog.String("to", sub.Email))
	return httpx.JSON(w, http.StatusCreated, sub)
}

type unsubscribeRequest struct {
	Email string `json:"email"`
}

// unsubscribe answers 204 for unknown addresses too, so the endpoint does not
// reveal who is subscribed.
func (h *handler) unsubscribe(w http.ResponseWriter, r *http.Request) error {
	var req unsubscribeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		return err
	}

	addr, err := email.ValidateAddress(req.Email)
	if err != nil {
		return err
	}

	if err := h.store.Unsubscribe(r.Context(), addr); err != nil && !isNotFound(err) {
		return err
	}
	return httpx.NoContent(w)
}
