package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"speakermarket/internal/domain"
)

type invitationFixture struct {
	profiles    *fakeProfileRepo
	speakers    *fakeSpeakerRepo
	events      *fakeEventRepo
	bookings    *fakeBookingRepo
	invitations *fakeInvitationRepo
	history     *fakeHistoryRepo
	notifier    *fakeNotifier
	svc         *invitationService

	organizer      *domain.Profile
	speakerProfile *domain.Profile
	speaker        *domain.Speaker
	event          *domain.Event
}

func newInvitationFixture() *invitationFixture {
	bookings := newFakeBookingRepo()
	f := &invitationFixture{
		profiles:    newFakeProfileRepo(),
		speakers:    newFakeSpeakerRepo(),
		events:      newFakeEventRepo(),
		bookings:    bookings,
		invitations: newFakeInvitationRepo(bookings),
		history:     &fakeHistoryRepo{},
		notifier:    &fakeNotifier{},
	}
	f.organizer = f.profiles.add(&domain.Profile{
		ID: "org-1", UserID: "user-org", DisplayName: "Bob", Role: domain.RoleOrganizer,
	})
	f.speakerProfile = f.profiles.add(&domain.Profile{
		ID: "spk-profile-1", UserID: "user-spk", DisplayName: "Alice", Role: domain.RoleSpeaker,
	})
	f.speaker = f.speakers.add(&domain.Speaker{
		ID: "speaker-1", ProfileID: "spk-profile-1", InviteExpiryDays: 14,
	})
	f.event = f.events.add(&domain.Event{
		ID:          "event-1",
		OrganizerID: "org-1",
		Title:       "Go Conf",
		DateTime:    fixedNow.AddDate(0, 0, 30),
		Status:      domain.EventStatusOpen,
	})

	f.svc = NewInvitationService(
		f.invitations, f.events, f.speakers, f.profiles, f.history, f.notifier,
		2*time.Second,
	).(*invitationService)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func (f *invitationFixture) seedInvitation(status string, expiresAt time.Time) *domain.Invitation {
	return f.invitations.add(&domain.Invitation{
		ID:           "inv-1",
		EventID:      f.event.ID,
		SpeakerID:    f.speaker.ID,
		OrganizerID:  f.organizer.ID,
		Status:       status,
		ProposedRate: 250.0,
		Message:      "please come",
		ExpiresAt:    expiresAt,
	})
}

func TestInvitationService_Invite(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending invitation with explicit expiry", func(t *testing.T) {
		f := newInvitationFixture()
		inv, err := f.svc.Invite(ctx, "user-org", "event-1", "speaker-1", 250.0, "please come", 3)
		require.NoError(t, err)
		assert.Equal(t, domain.InvitationStatusPending, inv.Status)
		assert.Equal(t, fixedNow.AddDate(0, 0, 3), inv.ExpiresAt)

		require.Len(t, f.notifier.calls, 1)
		assert.Equal(t, "spk-profile-1", f.notifier.calls[0].recipientID)
		assert.Equal(t, domain.NotificationInvitationReceived, f.notifier.calls[0].ntype)
	})

	t.Run("zero expiry uses the speaker's configured default", func(t *testing.T) {
		f := newInvitationFixture()
		inv, err := f.svc.Invite(ctx, "user-org", "event-1", "speaker-1", 250.0, "", 0)
		require.NoError(t, err)
		assert.Equal(t, fixedNow.AddDate(0, 0, 14), inv.ExpiresAt)
	})

	t.Run("falls back to the global default", func(t *testing.T) {
		f := newInvitationFixture()
		f.speaker.InviteExpiryDays = 0
		inv, err := f.svc.Invite(ctx, "user-org", "event-1", "speaker-1", 250.0, "", 0)
		require.NoError(t, err)
		assert.Equal(t, fixedNow.AddDate(0, 0, domain.DefaultInviteExpiryDays), inv.ExpiresAt)
	})

	t.Run("speaker role cannot invite", func(t *testing.T) {
		f := newInvitationFixture()
		_, err := f.svc.Invite(ctx, "user-spk", "event-1", "speaker-1", 250.0, "", 0)
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("only the event owner can invite", func(t *testing.T) {
		f := newInvitationFixture()
		f.profiles.add(&domain.Profile{ID: "org-2", UserID: "user-org-2", Role: domain.RoleOrganizer})
		_, err := f.svc.Invite(ctx, "user-org-2", "event-1", "speaker-1", 250.0, "", 0)
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("event not open fails precondition", func(t *testing.T) {
		f := newInvitationFixture()
		f.event.Status = domain.EventStatusCompleted
		_, err := f.svc.Invite(ctx, "user-org", "event-1", "speaker-1", 250.0, "", 0)
		require.ErrorIs(t, err, domain.ErrPreconditionFailed)
	})

	t.Run("cannot invite yourself", func(t *testing.T) {
		f := newInvitationFixture()
		f.organizer.Role = domain.RoleBoth
		f.speakers.add(&domain.Speaker{ID: "speaker-2", ProfileID: "org-1"})
		_, err := f.svc.Invite(ctx, "user-org", "event-1", "speaker-2", 250.0, "", 0)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("second invitation for same pair is duplicate", func(t *testing.T) {
		f := newInvitationFixture()
		_, err := f.svc.Invite(ctx, "user-org", "event-1", "speaker-1", 250.0, "", 0)
		require.NoError(t, err)
		_, err = f.svc.Invite(ctx, "user-org", "event-1", "speaker-1", 300.0, "", 0)
		require.ErrorIs(t, err, domain.ErrDuplicate)
	})
}

func TestInvitationService_Accept(t *testing.T) {
	ctx := context.Background()

	t.Run("creates booking carrying rate and message", func(t *testing.T) {
		f := newInvitationFixture()
		inv := f.seedInvitation(domain.InvitationStatusPending, fixedNow.AddDate(0, 0, 3))

		b, err := f.svc.Accept(ctx, "user-spk", "inv-1")
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusPending, b.Status)
		assert.Equal(t, 250.0, b.AgreedRate)
		assert.Equal(t, "please come", b.Message)
		require.NotNil(t, b.InvitationID)
		assert.Equal(t, "inv-1", *b.InvitationID)
		assert.Equal(t, domain.InvitationStatusAccepted, inv.Status)

		// Two history entries: the invitation transition and the booking birth.
		require.Len(t, f.history.entries, 2)
		assert.Equal(t, domain.EntityInvitation, f.history.entries[0].EntityType)
		assert.Equal(t, domain.EntityBooking, f.history.entries[1].EntityType)

		require.Len(t, f.notifier.calls, 1)
		assert.Equal(t, "org-1", f.notifier.calls[0].recipientID)
		assert.Equal(t, domain.NotificationInvitationAccepted, f.notifier.calls[0].ntype)
	})

	t.Run("expired at read time", func(t *testing.T) {
		f := newInvitationFixture()
		f.seedInvitation(domain.InvitationStatusPending, fixedNow.Add(-time.Hour))
		_, err := f.svc.Accept(ctx, "user-spk", "inv-1")
		require.ErrorIs(t, err, domain.ErrInvitationExpired)
	})

	t.Run("already answered fails precondition", func(t *testing.T) {
		f := newInvitationFixture()
		f.seedInvitation(domain.InvitationStatusDeclined, fixedNow.AddDate(0, 0, 3))
		_, err := f.svc.Accept(ctx, "user-spk", "inv-1")
		require.ErrorIs(t, err, domain.ErrPreconditionFailed)
	})

	t.Run("only the invited speaker can accept", func(t *testing.T) {
		f := newInvitationFixture()
		f.seedInvitation(domain.InvitationStatusPending, fixedNow.AddDate(0, 0, 3))
		_, err := f.svc.Accept(ctx, "user-org", "inv-1")
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("unknown invitation", func(t *testing.T) {
		f := newInvitationFixture()
		_, err := f.svc.Accept(ctx, "user-spk", "missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestInvitationService_Decline(t *testing.T) {
	ctx := context.Background()

	t.Run("declines without side effects", func(t *testing.T) {
		f := newInvitationFixture()
		f.seedInvitation(domain.InvitationStatusPending, fixedNow.AddDate(0, 0, 3))

		inv, err := f.svc.Decline(ctx, "user-spk", "inv-1")
		require.NoError(t, err)
		assert.Equal(t, domain.InvitationStatusDeclined, inv.Status)
		assert.Empty(t, f.bookings.byID)

		require.Len(t, f.notifier.calls, 1)
		assert.Equal(t, domain.NotificationInvitationDeclined, f.notifier.calls[0].ntype)
	})

	t.Run("already answered fails precondition", func(t *testing.T) {
		f := newInvitationFixture()
		f.seedInvitation(domain.InvitationStatusAccepted, fixedNow.AddDate(0, 0, 3))
		_, err := f.svc.Decline(ctx, "user-spk", "inv-1")
		require.ErrorIs(t, err, domain.ErrPreconditionFailed)
	})

	t.Run("only the invited speaker can decline", func(t *testing.T) {
		f := newInvitationFixture()
		f.seedInvitation(domain.InvitationStatusPending, fixedNow.AddDate(0, 0, 3))
		_, err := f.svc.Decline(ctx, "user-org", "inv-1")
		require.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestInvitationService_ListForEvent(t *testing.T) {
	ctx := context.Background()

	f := newInvitationFixture()
	f.seedInvitation(domain.InvitationStatusPending, fixedNow.AddDate(0, 0, 3))

	details, err := f.svc.ListForEvent(ctx, "user-org", "event-1")
	require.NoError(t, err)
	require.Len(t, details, 1)

	_, err = f.svc.ListForEvent(ctx, "user-spk", "event-1")
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestInvitationService_ListAsSpeaker_NoSpeakerRow(t *testing.T) {
	f := newInvitationFixture()
	f.profiles.add(&domain.Profile{ID: "p-2", UserID: "user-2", Role: domain.RoleSpeaker})

	details, err := f.svc.ListAsSpeaker(context.Background(), "user-2")
	require.NoError(t, err)
	assert.Empty(t, details)
}

func TestInvitationService_ExpireOld(t *testing.T) {
	f := newInvitationFixture()
	stale := f.seedInvitation(domain.InvitationStatusPending, fixedNow.Add(-time.Hour))
	fresh := f.invitations.add(&domain.Invitation{
		ID: "inv-2", EventID: "event-1", SpeakerID: "speaker-other",
		Status: domain.InvitationStatusPending, ExpiresAt: fixedNow.AddDate(0, 0, 3),
	})

	n, err := f.svc.ExpireOld(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, domain.InvitationStatusExpired, stale.Status)
	assert.Equal(t, domain.InvitationStatusPending, fresh.Status)
}
