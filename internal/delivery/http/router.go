package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"speakermarket/internal/delivery/http/controllers"
	"speakermarket/internal/delivery/http/middleware"
	"speakermarket/internal/domain"
)

// Controllers bundles every controller the router mounts.
type Controllers struct {
	Auth         *controllers.AuthController
	Profile      *controllers.ProfileController
	Event        *controllers.EventController
	Booking      *controllers.BookingController
	Invitation   *controllers.InvitationController
	Notification *controllers.NotificationController
	Stats        *controllers.StatsController
	Admin        *controllers.AdminController
}

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Auth
	mux.HandleFunc("POST /auth/signup", c.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)

	// Profiles and speaker directory
	mux.HandleFunc("GET /profiles/me", auth(c.Profile.GetMe))
	mux.HandleFunc("PATCH /profiles/me", auth(c.Profile.UpdateMe))
	mux.HandleFunc("PUT /speakers/me", auth(c.Profile.UpsertSpeaker))
	mux.HandleFunc("GET /speakers", c.Profile.SearchSpeakers)

	// Events
	mux.HandleFunc("POST /events", auth(c.Event.Create))
	mux.HandleFunc("GET /events", c.Event.List)
	mux.HandleFunc("GET /events/mine", auth(c.Event.ListOwn))
	mux.HandleFunc("GET /events/{eventID}", c.Event.Get)
	mux.HandleFunc("POST /events/{eventID}/cancel", auth(c.Event.Cancel))

	// Bookings
	mux.HandleFunc("POST /events/{eventID}/apply", auth(c.Booking.Apply))
	mux.HandleFunc("GET /events/{eventID}/bookings", auth(c.Booking.ListForEvent))
	mux.HandleFunc("GET /bookings/speaking", auth(c.Booking.ListAsSpeaker))
	mux.HandleFunc("GET /bookings/organizing", auth(c.Booking.ListAsOrganizer))
	mux.HandleFunc("GET /bookings/{bookingID}", auth(c.Booking.Get))
	mux.HandleFunc("POST /bookings/{bookingID}/accept", auth(c.Booking.Accept))
	mux.HandleFunc("POST /bookings/{bookingID}/reject", auth(c.Booking.Reject))
	mux.HandleFunc("POST /bookings/{bookingID}/pay", auth(c.Booking.Pay))
	mux.HandleFunc("POST /bookings/{bookingID}/complete", auth(c.Booking.Complete))
	mux.HandleFunc("POST /bookings/{bookingID}/rate", auth(c.Booking.Rate))
	mux.HandleFunc("POST /bookings/{bookingID}/cancel", auth(c.Booking.Cancel))

	// Invitations
	mux.HandleFunc("POST /events/{eventID}/invitations", auth(c.Invitation.Invite))
	mux.HandleFunc("GET /events/{eventID}/invitations", auth(c.Invitation.ListForEvent))
	mux.HandleFunc("GET /invitations", auth(c.Invitation.ListAsSpeaker))
	mux.HandleFunc("POST /invitations/{invitationID}/accept", auth(c.Invitation.Accept))
	mux.HandleFunc("POST /invitations/{invitationID}/decline", auth(c.Invitation.Decline))

	// Notifications
	mux.HandleFunc("GET /notifications", auth(c.Notification.List))
	mux.HandleFunc("POST /notifications/{notificationID}/read", auth(c.Notification.MarkRead))

	// Stats
	mux.HandleFunc("GET /stats/applications", auth(c.Stats.ApplicationStats))
	mux.HandleFunc("GET /events/{eventID}/invitations/stats", auth(c.Stats.InvitationStats))

	// Maintenance sweeps (scheduler entry points)
	mux.HandleFunc("POST /admin/sweeps/invitations", auth(c.Admin.ExpireInvitations))
	mux.HandleFunc("POST /admin/sweeps/bookings", auth(c.Admin.CancelStaleBookings))
	mux.HandleFunc("POST /admin/stats/sync", auth(c.Admin.SyncSpeakerStats))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
