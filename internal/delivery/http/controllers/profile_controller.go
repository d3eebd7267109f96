package controllers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"speakermarket/internal/delivery/http/helpers"
	"speakermarket/internal/delivery/http/middleware"
	"speakermarket/internal/domain"
)

// UpdateProfileRequest is the request body for PATCH /profiles/me. All fields are optional.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
	Location    *string `json:"location"`
	AvatarURL   *string `json:"avatar_url"`
	Website     *string `json:"website"`
}

// Validate implements Validator.
func (u UpdateProfileRequest) Validate() []string {
	var errs []string
	if u.DisplayName != nil && strings.TrimSpace(*u.DisplayName) == "" {
		errs = append(errs, "display_name cannot be empty")
	}
	return errs
}

// UpsertSpeakerRequest is the request body for PUT /speakers/me. All fields are optional.
type UpsertSpeakerRequest struct {
	ExperienceLevel  *string  `json:"experience_level"`
	HourlyRate       *float64 `json:"hourly_rate"`
	Available        *bool    `json:"available"`
	Occupation       *string  `json:"occupation"`
	Company          *string  `json:"company"`
	Topics           []string `json:"topics"`
	PortfolioURL     *string  `json:"portfolio_url"`
	InviteExpiryDays *int     `json:"invite_expiry_days"`
}

// Validate implements Validator.
func (u UpsertSpeakerRequest) Validate() []string {
	var errs []string
	if u.ExperienceLevel != nil {
		lvl := strings.TrimSpace(strings.ToLower(*u.ExperienceLevel))
		if lvl != domain.ExperienceBeginner && lvl != domain.ExperienceIntermediate && lvl != domain.ExperienceExpert {
			errs = append(errs, "experience_level must be \"beginner\", \"intermediate\", or \"expert\"")
		}
	}
	if u.HourlyRate != nil && *u.HourlyRate < 0 {
		errs = append(errs, "hourly_rate cannot be negative")
	}
	if u.InviteExpiryDays != nil && *u.InviteExpiryDays <= 0 {
		errs = append(errs, "invite_expiry_days must be positive")
	}
	return errs
}

// GetProfileResponse is the response body for GET /profiles/me.
type GetProfileResponse struct {
	Profile *domain.Profile `json:"profile"`
	Speaker *domain.Speaker `json:"speaker,omitempty"`
}

// SpeakerListResponse is the response body for GET /speakers.
type SpeakerListResponse struct {
	Speakers   []*domain.SpeakerListing `json:"speakers"`
	Pagination helpers.PaginationMeta   `json:"pagination"`
}

// ProfileController handles profile and speaker directory endpoints.
type ProfileController struct {
	Logger  *slog.Logger
	Service domain.ProfileService
}

func NewProfileController(logger *slog.Logger, svc domain.ProfileService) *ProfileController {
	return &ProfileController{
		Logger:  logger,
		Service: svc,
	}
}

// GetMe godoc
// @Summary Get own profile
// @Description Returns the authenticated user's profile and, if present, speaker extension.
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains profile and optional speaker"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /profiles/me [get]
func (c *ProfileController) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	profile, speaker, err := c.Service.GetOwn(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, GetProfileResponse{Profile: profile, Speaker: speaker})
}

// UpdateMe godoc
// @Summary Update own profile
// @Description Update the authenticated user's profile. All fields optional; omitted fields are left unchanged.
// @Tags profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpdateProfileRequest true "Fields to update"
// @Success 200 {object} helpers.APIResponse "data contains the updated profile"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /profiles/me [patch]
func (c *ProfileController) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req UpdateProfileRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	profile, err := c.Service.UpdateOwn(r.Context(), userID, domain.ProfileUpdate{
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		Location:    req.Location,
		AvatarURL:   req.AvatarURL,
		Website:     req.Website,
	})
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, profile)
}

// UpsertSpeaker godoc
// @Summary Create or update own speaker extension
// @Description Creates the authenticated user's speaker extension if missing, otherwise updates it. Requires a speaker-capable role.
// @Tags speakers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpsertSpeakerRequest true "Speaker fields"
// @Success 200 {object} helpers.APIResponse "data contains the speaker extension"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /speakers/me [put]
func (c *ProfileController) UpsertSpeaker(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req UpsertSpeakerRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	speaker, err := c.Service.UpsertSpeaker(r.Context(), userID, domain.SpeakerUpdate{
		ExperienceLevel:  req.ExperienceLevel,
		HourlyRate:       req.HourlyRate,
		Available:        req.Available,
		Occupation:       req.Occupation,
		Company:          req.Company,
		Topics:           req.Topics,
		PortfolioURL:     req.PortfolioURL,
		InviteExpiryDays: req.InviteExpiryDays,
	})
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, speaker)
}

// SearchSpeakers godoc
// @Summary Search the speaker directory
// @Description Lists available speakers, filterable by topic, experience level, max hourly rate, and free-text search. Public.
// @Tags speakers
// @Produce json
// @Param topic query string false "Topic name"
// @Param experience_level query string false "beginner, intermediate, or expert"
// @Param max_hourly_rate query number false "Maximum hourly rate"
// @Param search query string false "Free-text search over name and occupation"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains speakers and pagination"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /speakers [get]
func (c *ProfileController) SearchSpeakers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.SpeakerFilter{
		Topic:           q.Get("topic"),
		ExperienceLevel: q.Get("experience_level"),
		Search:          q.Get("search"),
	}
	if s := q.Get("max_hourly_rate"); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil && v > 0 {
			filter.MaxHourlyRate = v
		}
	}
	params := helpers.ParsePagination(r)
	speakers, total, err := c.Service.SearchSpeakers(r.Context(), filter, params)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, SpeakerListResponse{
		Speakers:   speakers,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}
