package usersettings

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-settings-admin/internal/metrics"
	"github.com/ovaphlow/pitchfork/service-settings-admin/internal/usersettings/entity"
	"github.com/ovaphlow/pitchfork/service-settings-admin/internal/view"
)

// Handler exposes the list and edit pages.
type Handler struct {
	svc     *Service
	view    *view.Renderer
	flash   *view.Flasher
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
}

// NewHandler wires a Handler. m may be nil.
func NewHandler(svc *Service, renderer *view.Renderer, flash *view.Flasher, logger *zap.SugaredLogger, m *metrics.Metrics) *Handler {
	return &Handler{svc: svc, view: renderer, flash: flash, logger: logger, metrics: m}
}

// List renders the table of rows, optionally filtered by ?q=<user_id>.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))

	res, err := h.svc.List(r.Context(), q)
	if err != nil {
		// pending flashes stay in the cookie for the next successful page
		h.serverError(w, r, "list user settings", err)
		return
	}
	flashes := h.flash.Pop(w, r)
	if res.Warning != "" {
		flashes = append(flashes, view.Flash{Category: view.FlashError, Message: res.Warning})
	}
	h.render(w, r, http.StatusOK, "list", view.ListPage{Flashes: flashes, Query: q, Rows: res.Rows})
}

// Edit renders the form for one row.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	row, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			h.notFound(w, r)
			return
		}
		h.serverError(w, r, "get user settings", err)
		return
	}
	h.renderEdit(w, r, http.StatusOK, h.flash.Pop(w, r), row)
}

// Submit validates the posted form and writes it. Invalid input
// redisplays the stored row with the problem; success redirects to the
// list with a flash.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.logger.Debugw("invalid form", "user_id", id, "err", err)
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	sub := Submission{
		WantsUpdates:     r.PostForm.Get("wants_updates") == "1",
		ApprovedLive:     r.PostForm.Get("approved_live") == "1",
		ApprovedForecast: r.PostForm.Get("approved_forecast") == "1",
		SettlementPoints: r.PostForm["settlement_points"],
		LMPThreshold:     r.PostForm.Get("lmp_threshold"),
	}

	row, err := h.svc.Update(r.Context(), id, sub)
	if err != nil {
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			h.metrics.ObserveUpdate(metrics.OutcomeInvalid)
			h.logger.Debugw("update rejected", "user_id", id, "field", verr.Field)
			flashes := []view.Flash{{Category: view.FlashError, Message: verr.Message}}
			h.renderEdit(w, r, http.StatusOK, flashes, row)
		case errors.Is(err, ErrNotFound):
			h.metrics.ObserveUpdate(metrics.OutcomeNotFound)
			h.notFound(w, r)
		default:
			h.metrics.ObserveUpdate(metrics.OutcomeError)
			h.serverError(w, r, "update user settings", err)
		}
		return
	}

	h.metrics.ObserveUpdate(metrics.OutcomeUpdated)
	h.logger.Infow("user settings updated", "user_id", id)
	if err := h.flash.Add(w, r, view.Flash{Category: view.FlashSuccess, Message: "Row updated"}); err != nil {
		h.logger.Warnw("set flash", "err", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// userID parses the path identity. Anything that is not an integer is
// treated as an unknown row.
func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("user_id"), 10, 64)
	if err != nil {
		h.notFound(w, r)
		return 0, false
	}
	return id, true
}

func (h *Handler) renderEdit(w http.ResponseWriter, r *http.Request, status int, flashes []view.Flash, row *entity.UserSettings) {
	h.render(w, r, status, "edit", view.EditPage{Flashes: flashes, Row: row, Allowed: entity.SettlementPoints})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if err := h.view.Render(w, status, name, data); err != nil {
		h.logger.Errorw("render page", "page", name, "path", r.URL.Path, "err", err)
	}
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	if err := h.view.NotFound(w); err != nil {
		h.logger.Errorw("render page", "page", "error", "path", r.URL.Path, "err", err)
	}
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.Errorw(op, "path", r.URL.Path, "err", err)
	if rerr := h.view.ServerError(w); rerr != nil {
		h.logger.Errorw("render page", "page", "error", "path", r.URL.Path, "err", rerr)
	}
}
