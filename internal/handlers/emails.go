package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/sunday4k/sunday4k/internal/email"
	"github.com/sunday4k/sunday4k/internal/httpx"
	"github.com/sunday4k/sunday4k/internal/tasks"
)

const (
	defaultLogLimit = 50
	maxLogLimit     = 500
)

func (h *handler) previewEmail(w http.ResponseWriter, r *http.Request) error {
	var req email.PreviewRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		return err
	}

	preview, err := h.emails.Preview(r.Context(), req)
	if err != nil {
		return err
	}
	return httpx.JSON(w, http.StatusOK, preview)
}

// sendEmail queues a stored template for delivery. Inline bodies are only
// accepted by the synchronous test endpoint.
func (h *handler) sendEmail(w http.ResponseWriter, r *http.Request) error {
	var req tasks.SendEmailPayload
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		return err
	}

	to, err := email.ValidateAddress(req.To)
	if err != nil {
		return err
	}
	req.To = to
	req.Template = strings.TrimSpace(req.Template)
	if req.Template == "" {
		return fmt.Errorf("%w: template is required", email.ErrInvalidRequest)
	}

	if err := h.jobs.Enqueue(r.Context(), tasks.SendEmailTask, req, tasks.SendOptions()...); err != nil {
		return err
	}

	h.log.InfoContext(r.Context(), "email queued",
		slog.String("template", req.Template),
		slog.String("to", req.To),
	)
	return httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// testEmail renders and delivers synchronously, tagged as a test send.
func (h *handler) testEmail(w http.ResponseWriter, r *http.Request) error {
	var req email.SendRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		return err
	}

	if req.Tags == nil {
		req.Tags = make(map[string]string, 1)
	}
	req.Tags["test"] = "true"

	res, err := h.emails.Send(r.Context(), req)
	if err != nil {
		return err
	}
	return httpx.JSON(w, http.StatusOK, res)
}

func (h *handler) listEmailLogs(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()

	limit := defaultLogLimit
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return httpx.ErrBadRequest("limit must be a positive integer", err)
		}
		limit = min(n, maxLogLimit)
	}

	logs, err := h.store.ListEmailLogs(r.Context(), q.Get("recipient"), limit)
	if err != nil {
		return err
	}
	return httpx.JSON(w, http.StatusOK, logs)
}
