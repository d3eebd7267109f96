package controllers

import (
	"log/slog"
	"net/http"

	"speakermarket/internal/delivery/http/helpers"
	"speakermarket/internal/domain"
)

// SweepResponse reports how many rows a maintenance sweep touched.
type SweepResponse struct {
	Affected int64 `json:"affected"`
}

// AdminController exposes the maintenance sweeps normally driven by a
// scheduler: invitation expiry, stale booking cleanup, and the speaker
// statistics reconciliation.
type AdminController struct {
	Logger      *slog.Logger
	Bookings    domain.BookingService
	Invitations domain.InvitationService
	Stats       domain.StatsService
}

func NewAdminController(
	logger *slog.Logger,
	bookings domain.BookingService,
	invitations domain.InvitationService,
	stats domain.StatsService,
) *AdminController {
	return &AdminController{
		Logger:      logger,
		Bookings:    bookings,
		Invitations: invitations,
		Stats:       stats,
	}
}

// ExpireInvitations godoc
// @Summary Expire overdue invitations
// @Description Transitions pending invitations past their expiry to expired. Idempotent.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the affected row count"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/sweeps/invitations [post]
func (c *AdminController) ExpireInvitations(w http.ResponseWriter, r *http.Request) {
	n, err := c.Invitations.ExpireOld(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, SweepResponse{Affected: n})
}

// CancelStaleBookings godoc
// @Summary Cancel stale bookings
// @Description Cancels pending and accepted bookings whose event ended without payment. Idempotent.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the affected row count"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/sweeps/bookings [post]
func (c *AdminController) CancelStaleBookings(w http.ResponseWriter, r *http.Request) {
	n, err := c.Bookings.CancelStale(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, SweepResponse{Affected: n})
}

// SyncSpeakerStats godoc
// @Summary Recompute all speaker statistics
// @Description Rebuilds every speaker's derived counters from booking history. Per-speaker failures are reported in the result list.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains per-speaker sync results"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/stats/sync [post]
func (c *AdminController) SyncSpeakerStats(w http.ResponseWriter, r *http.Request) {
	results, err := c.Stats.SyncAll(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, results)
}
