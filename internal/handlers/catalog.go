package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sunday4k/sunday4k/internal/httpx"
	"github.com/sunday4k/sunday4k/pkg/interpolate"
	"github.com/sunday4k/sunday4k/pkg/logger"
	"github.com/sunday4k/sunday4k/pkg/mailer"
	"github.com/sunday4k/sunday4k/pkg/sanitizer"
)

func (h *handler) listVariables(w http.ResponseWriter, r *http.Request) error {
	vars, err := h.store.ListVariables(r.Context())
	if err != nil {
		return err
	}
	return httpx.JSON(w, http.StatusOK, vars)
}

// putVariable creates or replaces a catalog entry. The path name wins over
// any name in the body.
func (h *handler) putVariable(w http.ResponseWriter, r *http.Request) error {
	var v interpolate.Variable
	if err := httpx.DecodeJSON(w, r, &v); err != nil {
		return err
	}
	v.Name = chi.URLParam(r, "name")

	saved, err := h.store.UpsertVariable(r.Context(), v)
	if err != nil {
		return err
	}
	h.invalidateCatalog(r)

	return httpx.JSON(w, http.StatusOK, saved)
}

func (h *handler) deleteVariable(w http.ResponseWriter, r *http.Request) error {
	if err := h.store.DeleteVariable(r.Context(), chi.URLParam(r, "name")); err != nil {
		return err
	}
	h.invalidateCatalog(r)

	return httpx.NoContent(w)
}

func (h *handler) listTemplates(w http.ResponseWriter, r *http.Request) error {
	tpls, err := h.store.ListTemplates(r.Context())
	if err != nil {
		return err
	}
	return httpx.JSON(w, http.StatusOK, tpls)
}

func (h *handler) getTemplate(w http.ResponseWriter, r *http.Request) error {
	tpl, err := h.store.GetTemplate(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		return err
	}
	return httpx.JSON(w, http.StatusOK, tpl)
}

// putTemplate stores a template. HTML bodies are sanitized with the email
// policy. Markdown is stored as written and sanitized after conversion at
// render time.
func (h *handler) putTemplate(w http.ResponseWriter, r *http.Request) error {
	var t mailer.Template
	if err := httpx.DecodeJSON(w, r, &t); err != nil {
		return err
	}
	t.Name = chi.URLParam(r, "name")
	if t.Format == mailer.FormatHTML {
		t.Body = sanitizer.SanitizeEmailHTML(t.Body)
	}

	saved, err := h.store.UpsertTemplate(r.Context(), t)
	if err != nil {
		return err
	}
	h.invalidateTemplate(r, saved.Name)

	return httpx.JSON(w, http.StatusOK, saved)
}

func (h *handler) deleteTemplate(w http.ResponseWriter, r *http.Request) error {
	name := chi.URLParam(r, "name")
	if err := h.store.DeleteTemplate(r.Context(), name); err != nil {
		return err
	}
	h.invalidateTemplate(r, name)

	return httpx.NoContent(w)
}

// Cache invalidation failures are logged only: the write already succeeded
// and cached entries expire on their own.

func (h *handler) invalidateCatalog(r *http.Request) {
	if err := h.emails.InvalidateCatalog(r.Context()); err != nil {
		h.log.WarnContext(r.Context(), "catalog cache invalidation failed", logger.Error(err))
	}
}

func (h *handler) invalidateTemplate(r *http.Request, name string) {
	if err := h.emails.InvalidateTemplate(r.Context(), name); err != nil {
		h.log.WarnContext(r.Context(), "template cache invalidation failed",
			slog.String("template", name),
			logger.Error(err),
		)
	}
}
