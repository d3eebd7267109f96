package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"speakermarket/internal/domain"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type bookingFixture struct {
	profiles *fakeProfileRepo
	speakers *fakeSpeakerRepo
	events   *fakeEventRepo
	bookings *fakeBookingRepo
	history  *fakeHistoryRepo
	stats    *fakeStatsService
	notifier *fakeNotifier
	svc      *bookingService

	organizer      *domain.Profile
	speakerProfile *domain.Profile
	speaker        *domain.Speaker
	event          *domain.Event
}

// newBookingFixture seeds an organizer, a speaker, and an open future event,
// with the service clock pinned to fixedNow.
func newBookingFixture() *bookingFixture {
	f := &bookingFixture{
		profiles: newFakeProfileRepo(),
		speakers: newFakeSpeakerRepo(),
		events:   newFakeEventRepo(),
		bookings: newFakeBookingRepo(),
		history:  &fakeHistoryRepo{},
		stats:    &fakeStatsService{},
		notifier: &fakeNotifier{},
	}
	f.organizer = f.profiles.add(&domain.Profile{
		ID: "org-1", UserID: "user-org", DisplayName: "Bob", Role: domain.RoleOrganizer,
	})
	f.speakerProfile = f.profiles.add(&domain.Profile{
		ID: "spk-profile-1", UserID: "user-spk", DisplayName: "Alice", Role: domain.RoleSpeaker,
	})
	f.speaker = f.speakers.add(&domain.Speaker{
		ID: "speaker-1", ProfileID: "spk-profile-1", HourlyRate: 150.0, Available: true,
	})
	f.event = f.events.add(&domain.Event{
		ID:            "event-1",
		OrganizerID:   "org-1",
		Title:         "Go Conf",
		DateTime:      fixedNow.AddDate(0, 0, 30),
		DurationHours: 4.0,
		Status:        domain.EventStatusOpen,
	})
	f.events.organizers["org-1"] = f.organizer

	f.svc = NewBookingService(
		f.bookings, f.events, f.speakers, f.profiles, f.history, f.stats, f.notifier,
		2*time.Second,
	).(*bookingService)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

// seedBooking stores a booking in the given status for the fixture's speaker
// and event.
func (f *bookingFixture) seedBooking(status string) *domain.Booking {
	return f.bookings.add(&domain.Booking{
		ID:          "booking-1",
		EventID:     f.event.ID,
		SpeakerID:   f.speaker.ID,
		OrganizerID: f.organizer.ID,
		Status:      status,
		AgreedRate:  200.0,
	})
}

func TestBookingService_Apply(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending booking and notifies organizer", func(t *testing.T) {
		f := newBookingFixture()
		b, err := f.svc.Apply(ctx, "user-spk", "event-1", "pick me", 180.0)
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusPending, b.Status)
		assert.Equal(t, "speaker-1", b.SpeakerID)
		assert.Equal(t, "org-1", b.OrganizerID)
		assert.Equal(t, 180.0, b.AgreedRate)

		require.Len(t, f.history.entries, 1)
		assert.Equal(t, domain.EntityBooking, f.history.entries[0].EntityType)
		assert.Equal(t, domain.BookingStatusPending, f.history.entries[0].NewStatus)

		require.Len(t, f.notifier.calls, 1)
		assert.Equal(t, "org-1", f.notifier.calls[0].recipientID)
		assert.Equal(t, domain.NotificationApplicationReceived, f.notifier.calls[0].ntype)
	})

	t.Run("negative rate is invalid", func(t *testing.T) {
		f := newBookingFixture()
		_, err := f.svc.Apply(ctx, "user-spk", "event-1", "", -1.0)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("organizer role cannot apply", func(t *testing.T) {
		f := newBookingFixture()
		_, err := f.svc.Apply(ctx, "user-org", "event-1", "", 100.0)
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("profile without speaker extension fails precondition", func(t *testing.T) {
		f := newBookingFixture()
		f.profiles.add(&domain.Profile{ID: "p-2", UserID: "user-2", Role: domain.RoleSpeaker})
		_, err := f.svc.Apply(ctx, "user-2", "event-1", "", 100.0)
		require.ErrorIs(t, err, domain.ErrPreconditionFailed)
	})

	t.Run("event not open fails precondition", func(t *testing.T) {
		f := newBookingFixture()
		f.event.Status = domain.EventStatusCancelled
		_, err := f.svc.Apply(ctx, "user-spk", "event-1", "", 100.0)
		require.ErrorIs(t, err, domain.ErrPreconditionFailed)
	})

	t.Run("cannot apply to own event", func(t *testing.T) {
		f := newBookingFixture()
		f.speakerProfile.Role = domain.RoleBoth
		f.event.OrganizerID = "spk-profile-1"
		_, err := f.svc.Apply(ctx, "user-spk", "event-1", "", 100.0)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("second application for same event is duplicate", func(t *testing.T) {
		f := newBookingFixture()
		_, err := f.svc.Apply(ctx, "user-spk", "event-1", "", 100.0)
		require.NoError(t, err)
		_, err = f.svc.Apply(ctx, "user-spk", "event-1", "", 100.0)
		require.ErrorIs(t, err, domain.ErrDuplicate)
	})

	t.Run("unknown event", func(t *testing.T) {
		f := newBookingFixture()
		_, err := f.svc.Apply(ctx, "user-spk", "missing", "", 100.0)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestBookingService_Accept(t *testing.T) {
	ctx := context.Background()

	t.Run("organizer accepts pending application", func(t *testing.T) {
		f := newBookingFixture()
		f.seedBooking(domain.BookingStatusPending)

		b, err := f.svc.Accept(ctx, "user-org", "booking-1")
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusAccepted, b.Status)
		require.NotNil(t, b.RespondedAt)
		assert.Equal(t, fixedNow, *b.RespondedAt)

		require.Len(t, f.notifier.calls, 1)
		assert.Equal(t, "spk-profile-1", f.notifier.calls[0].recipientID)
		assert.Equal(t, domain.NotificationApplicationAccepted, f.notifier.calls[0].ntype)
	})

	t.Run("speaker cannot accept", func(t *testing.T) {
		f := newBookingFixture()
		f.seedBooking(domain.BookingStatusPending)
		_, err := f.svc.Accept(ctx, "user-spk", "booking-1")
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("already answered fails precondition", func(t *testing.T) {
		f := newBookingFixture()
		f.seedBooking(domain.BookingStatusRejected)
		_, err := f.svc.Accept(ctx, "user-org", "booking-1")
		require.ErrorIs(t, err, domain.ErrPreconditionFailed)
	})
}

func TestBookingService_Reject(t *testing.T) {
	ctx := context.Background()

	f := newBookingFixture()
	f.seedBooking(domain.BookingStatusPending)

	b, err := f.svc.Reject(ctx, "user-org", "booking-1", "schedule conflict")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusRejected, b.Status)
	assert.Equal(t, "schedule conflict", b.StatusReason)

	require.Len(t, f.history.entries, 1)
	assert.Equal(t, "schedule conflict", f.history.entries[0].Reason)
}

func TestBookingService_Pay(t *testing.T) {
	ctx := context.Background()

	t.Run("amount is hourly rate times duration", func(t *testing.T) {
		f := newBookingFixture()
		f.seedBooking(domain.BookingStatusAccepted)

		b, err := f.svc.Pay(ctx, "user-org", "booking-1")
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusPaid, b.Status)
		assert.Equal(t, 600.0, b.PaymentAmount)
		assert.True(t, strings.HasPrefix(b.PaymentReference, "PAY-"))
	})

	t.Run("falls back to agreed rate when speaker has no hourly rate", func(t *testing.T) {
		f := newBookingFixture()
		f.speaker.HourlyRate = 0
		f.seedBooking(domain.BookingStatusAccepted)

		b, err := f.svc.Pay(ctx, "user-org", "booking-1")
		require.NoError(t, err)
		assert.Equal(t, 200.0, b.PaymentAmount)
	})

	t.Run("not accepted fails precondition", func(t *testing.T) {
		f := newBookingFixture()
		f.seedBooking(domain.BookingStatusPending)
		_, err := f.svc.Pay(ctx, "user-org", "booking-1")
		require.ErrorIs(t, err, domain.ErrPreconditionFailed)
	})

	t.Run("speaker cannot pay", func(t *testing.T) {
		f := newBookingFixture()
		f.seedBooking(domain.BookingStatusAccepted)
		_, err := f.svc.Pay(ctx, "user-spk", "booking-1")
		require.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestBookingService_Complete(t *testing.T) {
	ctx := context.Background()

	elapse := func(f *bookingFixture) {
		// Event ended over two hours ago, past the completion grace window.
		f.event.DateTime = fixedNow.Add(-7 * time.Hour)
		f.event.DurationHours = 4.0
	}

	t.Run("organizer completes after event elapses", func(t *testing.T) {
		f := newBookingFixture()
		elapse(f)
		f.seedBooking(domain.BookingStatusPaid)

		b, err := f.svc.Complete(ctx, "user-org", "booking-1")
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusCompleted, b.Status)
		assert.Equal(t, []string{"speaker-1"}, f.stats.recomputed)
	})

	t.Run("speaker may also complete", func(t *testing.T) {
		f := newBookingFixture()
		elapse(f)
		f.seedBooking(domain.BookingStatusPaid)

		b, err := f.svc.Complete(ctx, "user-spk", "booking-1")
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusCompleted, b.Status)
		// The other party gets the notification.
		require.Len(t, f.notifier.calls, 1)
		assert.Equal(t, "org-1", f.notifier.calls[0].recipientID)
	})

	t.Run("too early fails precondition", func(t *testing.T) {
		f := newBookingFixture()
		// Ended an hour ago: still inside the grace window.
		f.event.DateTime = fixedNow.Add(-3 * time.Hour)
		f.event.DurationHours = 2.0
		f.seedBooking(domain.BookingStatusPaid)

		_, err := f.svc.Complete(ctx, "user-org", "booking-1")
		require.ErrorIs(t, err, domain.ErrPreconditionFailed)
	})

	t.Run("not paid fails precondition", func(t *testing.T) {
		f := newBookingFixture()
		elapse(f)
		f.seedBooking(domain.BookingStatusAccepted)
		_, err := f.svc.Complete(ctx, "user-org", "booking-1")
		require.ErrorIs(t, err, domain.ErrPreconditionFailed)
	})

	t.Run("third party is forbidden", func(t *testing.T) {
		f := newBookingFixture()
		elapse(f)
		f.seedBooking(domain.BookingStatusPaid)
		f.profiles.add(&domain.Profile{ID: "p-3", UserID: "user-3", Role: domain.RoleOrganizer})
		_, err := f.svc.Complete(ctx, "user-3", "booking-1")
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("last completion closes the event", func(t *testing.T) {
		f := newBookingFixture()
		elapse(f)
		f.seedBooking(domain.BookingStatusPaid)

		_, err := f.svc.Complete(ctx, "user-org", "booking-1")
		require.NoError(t, err)
		assert.Equal(t, domain.EventStatusCompleted, f.event.Status)
	})
}

func TestBookingService_Rate(t *testing.T) {
	ctx := context.Background()

	t.Run("stores rating once and recomputes stats", func(t *testing.T) {
		f := newBookingFixture()
		f.seedBooking(domain.BookingStatusCompleted)

		b, err := f.svc.Rate(ctx, "user-org", "booking-1", 5, "great talk")
		require.NoError(t, err)
		require.NotNil(t, b.Rating)
		assert.Equal(t, 5, *b.Rating)
		assert.Equal(t, "great talk", b.RatingComment)
		require.NotNil(t, b.RatedAt)
		assert.Equal(t, []string{"speaker-1"}, f.stats.recomputed)

		_, err = f.svc.Rate(ctx, "user-org", "booking-1", 3, "changed my mind")
		require.ErrorIs(t, err, domain.ErrAlreadyRated)
	})

	t.Run("rating out of range", func(t *testing.T) {
		f := newBookingFixture()
		f.seedBooking(domain.BookingStatusCompleted)
		for _, rating := range []int{0, 6, -1} {
			_, err := f.svc.Rate(ctx, "user-org", "booking-1", rating, "")
			require.ErrorIs(t, err, domain.ErrInvalidInput)
		}
	})

	t.Run("not completed fails precondition", func(t *testing.T) {
		f := newBookingFixture()
		f.seedBooking(domain.BookingStatusPaid)
		_, err := f.svc.Rate(ctx, "user-org", "booking-1", 4, "")
		require.ErrorIs(t, err, domain.ErrPreconditionFailed)
	})

	t.Run("speaker cannot rate", func(t *testing.T) {
		f := newBookingFixture()
		f.seedBooking(domain.BookingStatusCompleted)
		_, err := f.svc.Rate(ctx, "user-spk", "booking-1", 4, "")
		require.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestBookingService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("speaker cancels pending booking", func(t *testing.T) {
		f := newBookingFixture()
		f.seedBooking(domain.BookingStatusPending)

		b, err := f.svc.Cancel(ctx, "user-spk", "booking-1", "cannot make it")
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusCancelled, b.Status)
		assert.Equal(t, "cannot make it", b.StatusReason)

		require.Len(t, f.notifier.calls, 1)
		assert.Equal(t, "org-1", f.notifier.calls[0].recipientID)
	})

	t.Run("organizer cancels accepted booking", func(t *testing.T) {
		f := newBookingFixture()
		f.seedBooking(domain.BookingStatusAccepted)

		b, err := f.svc.Cancel(ctx, "user-org", "booking-1", "event scope changed")
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusCancelled, b.Status)
		require.Len(t, f.notifier.calls, 1)
		assert.Equal(t, "spk-profile-1", f.notifier.calls[0].recipientID)
	})

	t.Run("terminal booking fails precondition", func(t *testing.T) {
		f := newBookingFixture()
		f.seedBooking(domain.BookingStatusCompleted)
		_, err := f.svc.Cancel(ctx, "user-org", "booking-1", "")
		require.ErrorIs(t, err, domain.ErrPreconditionFailed)
	})

	t.Run("third party is forbidden", func(t *testing.T) {
		f := newBookingFixture()
		f.seedBooking(domain.BookingStatusPending)
		f.profiles.add(&domain.Profile{ID: "p-3", UserID: "user-3", Role: domain.RoleSpeaker})
		_, err := f.svc.Cancel(ctx, "user-3", "booking-1", "")
		require.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestBookingService_Get(t *testing.T) {
	ctx := context.Background()

	f := newBookingFixture()
	f.seedBooking(domain.BookingStatusPending)

	t.Run("parties can read", func(t *testing.T) {
		for _, userID := range []string{"user-org", "user-spk"} {
			detail, err := f.svc.Get(ctx, userID, "booking-1")
			require.NoError(t, err)
			assert.Equal(t, "booking-1", detail.Booking.ID)
		}
	})

	t.Run("third party cannot", func(t *testing.T) {
		f.profiles.add(&domain.Profile{ID: "p-3", UserID: "user-3", Role: domain.RoleSpeaker})
		_, err := f.svc.Get(ctx, "user-3", "booking-1")
		require.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestBookingService_ListForEvent(t *testing.T) {
	ctx := context.Background()

	f := newBookingFixture()
	f.seedBooking(domain.BookingStatusPending)

	details, err := f.svc.ListForEvent(ctx, "user-org", "event-1")
	require.NoError(t, err)
	require.Len(t, details, 1)

	_, err = f.svc.ListForEvent(ctx, "user-spk", "event-1")
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestBookingService_ListAsSpeaker_NoSpeakerRow(t *testing.T) {
	f := newBookingFixture()
	f.profiles.add(&domain.Profile{ID: "p-2", UserID: "user-2", Role: domain.RoleSpeaker})

	details, err := f.svc.ListAsSpeaker(context.Background(), "user-2")
	require.NoError(t, err)
	assert.Empty(t, details)
}

func TestBookingService_CancelStale(t *testing.T) {
	f := newBookingFixture()
	f.bookings.staleCancelled = 3

	n, err := f.svc.CancelStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
