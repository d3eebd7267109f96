package services

import (
	"context"
	"fmt"
	"time"

	"speakermarket/internal/domain"
)

// In-memory fakes backing the service tests. Mutation methods mirror the
// conditional-update semantics of the real repositories so the state-machine
// paths behave the same way they do against Postgres.

type fakeProfileRepo struct {
	byID     map[string]*domain.Profile
	byUserID map[string]*domain.Profile
	nextID   int
	err      error
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{
		byID:     make(map[string]*domain.Profile),
		byUserID: make(map[string]*domain.Profile),
	}
}

func (f *fakeProfileRepo) add(p *domain.Profile) *domain.Profile {
	f.byID[p.ID] = p
	f.byUserID[p.UserID] = p
	return p
}

func (f *fakeProfileRepo) Create(ctx context.Context, p *domain.Profile) error {
	if f.err != nil {
		return f.err
	}
	f.nextID++
	p.ID = fmt.Sprintf("profile-%d", f.nextID)
	f.add(p)
	return nil
}

func (f *fakeProfileRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakeProfileRepo) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.byUserID[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakeProfileRepo) Update(ctx context.Context, id string, upd domain.ProfileUpdate) (*domain.Profile, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if upd.DisplayName != nil {
		p.DisplayName = *upd.DisplayName
	}
	if upd.Bio != nil {
		p.Bio = *upd.Bio
	}
	if upd.Location != nil {
		p.Location = *upd.Location
	}
	if upd.AvatarURL != nil {
		p.AvatarURL = *upd.AvatarURL
	}
	if upd.Website != nil {
		p.Website = *upd.Website
	}
	return p, nil
}

type fakeSpeakerRepo struct {
	byID        map[string]*domain.Speaker
	byProfileID map[string]*domain.Speaker
	nextID      int
	err         error

	statsWrites map[string]domain.SpeakerStats
}

func newFakeSpeakerRepo() *fakeSpeakerRepo {
	return &fakeSpeakerRepo{
		byID:        make(map[string]*domain.Speaker),
		byProfileID: make(map[string]*domain.Speaker),
		statsWrites: make(map[string]domain.SpeakerStats),
	}
}

func (f *fakeSpeakerRepo) add(s *domain.Speaker) *domain.Speaker {
	f.byID[s.ID] = s
	f.byProfileID[s.ProfileID] = s
	return s
}

func (f *fakeSpeakerRepo) Create(ctx context.Context, s *domain.Speaker) error {
	if f.err != nil {
		return f.err
	}
	f.nextID++
	s.ID = fmt.Sprintf("speaker-%d", f.nextID)
	f.add(s)
	return nil
}

func (f *fakeSpeakerRepo) GetByID(ctx context.Context, id string) (*domain.Speaker, error) {
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (f *fakeSpeakerRepo) GetByProfileID(ctx context.Context, profileID string) (*domain.Speaker, error) {
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.byProfileID[profileID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (f *fakeSpeakerRepo) Update(ctx context.Context, id string, upd domain.SpeakerUpdate) (*domain.Speaker, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if upd.ExperienceLevel != nil {
		s.ExperienceLevel = *upd.ExperienceLevel
	}
	if upd.HourlyRate != nil {
		s.HourlyRate = *upd.HourlyRate
	}
	if upd.Available != nil {
		s.Available = *upd.Available
	}
	if upd.Occupation != nil {
		s.Occupation = *upd.Occupation
	}
	if upd.Company != nil {
		s.Company = *upd.Company
	}
	if upd.Topics != nil {
		s.Topics = upd.Topics
	}
	if upd.PortfolioURL != nil {
		s.PortfolioURL = *upd.PortfolioURL
	}
	if upd.InviteExpiryDays != nil {
		s.InviteExpiryDays = *upd.InviteExpiryDays
	}
	return s, nil
}

func (f *fakeSpeakerRepo) UpdateStats(ctx context.Context, id string, stats domain.SpeakerStats) error {
	s, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.TotalTalks = stats.TotalTalks
	s.AverageRating = stats.AverageRating
	s.TotalEarnings = stats.TotalEarnings
	f.statsWrites[id] = stats
	return nil
}

func (f *fakeSpeakerRepo) List(ctx context.Context, filter domain.SpeakerFilter, params domain.PaginationParams) ([]*domain.SpeakerListing, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	listings := make([]*domain.SpeakerListing, 0, len(f.byID))
	for _, s := range f.byID {
		listings = append(listings, &domain.SpeakerListing{Speaker: s})
	}
	return listings, len(listings), nil
}

func (f *fakeSpeakerRepo) ListIDs(ctx context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	ids := make([]string, 0, len(f.byID))
	for id := range f.byID {
		ids = append(ids, id)
	}
	return ids, nil
}

type fakeEventRepo struct {
	byID   map[string]*domain.Event
	nextID int
	err    error

	organizers map[string]*domain.Profile
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		byID:       make(map[string]*domain.Event),
		organizers: make(map[string]*domain.Profile),
	}
}

func (f *fakeEventRepo) add(e *domain.Event) *domain.Event {
	f.byID[e.ID] = e
	return e
}

func (f *fakeEventRepo) Create(ctx context.Context, event *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	f.nextID++
	event.ID = fmt.Sprintf("event-%d", f.nextID)
	f.byID[event.ID] = event
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func (f *fakeEventRepo) GetWithOrganizer(ctx context.Context, id string) (*domain.EventWithOrganizer, error) {
	e, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.EventWithOrganizer{Event: e, Organizer: f.organizers[e.OrganizerID]}, nil
}

func (f *fakeEventRepo) List(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.EventWithOrganizer, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	events := make([]*domain.EventWithOrganizer, 0, len(f.byID))
	for _, e := range f.byID {
		events = append(events, &domain.EventWithOrganizer{Event: e, Organizer: f.organizers[e.OrganizerID]})
	}
	return events, len(events), nil
}

func (f *fakeEventRepo) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	events := []*domain.Event{}
	for _, e := range f.byID {
		if e.OrganizerID == organizerID {
			events = append(events, e)
		}
	}
	return events, nil
}

func (f *fakeEventRepo) UpdateStatus(ctx context.Context, id, expected, next string) error {
	e, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if e.Status != expected {
		return domain.ErrPreconditionFailed
	}
	e.Status = next
	return nil
}

type fakeBookingRepo struct {
	byID   map[string]*domain.Booking
	nextID int
	err    error

	staleCancelled int64
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{byID: make(map[string]*domain.Booking)}
}

func (f *fakeBookingRepo) add(b *domain.Booking) *domain.Booking {
	f.byID[b.ID] = b
	return b
}

func (f *fakeBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	if f.err != nil {
		return f.err
	}
	for _, existing := range f.byID {
		if existing.EventID == b.EventID && existing.SpeakerID == b.SpeakerID {
			return domain.ErrDuplicate
		}
	}
	f.nextID++
	b.ID = fmt.Sprintf("booking-%d", f.nextID)
	f.byID[b.ID] = b
	return nil
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

func (f *fakeBookingRepo) GetByEventAndSpeaker(ctx context.Context, eventID, speakerID string) (*domain.Booking, error) {
	for _, b := range f.byID {
		if b.EventID == eventID && b.SpeakerID == speakerID {
			return b, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeBookingRepo) detail(b *domain.Booking) *domain.BookingDetail {
	return &domain.BookingDetail{
		Booking:       b,
		EventTitle:    "Go Conf",
		SpeakerName:   "Alice",
		OrganizerName: "Bob",
	}
}

func (f *fakeBookingRepo) GetDetail(ctx context.Context, id string) (*domain.BookingDetail, error) {
	b, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return f.detail(b), nil
}

func (f *fakeBookingRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.BookingDetail, error) {
	details := []*domain.BookingDetail{}
	for _, b := range f.byID {
		if b.EventID == eventID {
			details = append(details, f.detail(b))
		}
	}
	return details, nil
}

func (f *fakeBookingRepo) ListBySpeakerID(ctx context.Context, speakerID string) ([]*domain.BookingDetail, error) {
	details := []*domain.BookingDetail{}
	for _, b := range f.byID {
		if b.SpeakerID == speakerID {
			details = append(details, f.detail(b))
		}
	}
	return details, nil
}

func (f *fakeBookingRepo) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.BookingDetail, error) {
	details := []*domain.BookingDetail{}
	for _, b := range f.byID {
		if b.OrganizerID == organizerID {
			details = append(details, f.detail(b))
		}
	}
	return details, nil
}

func (f *fakeBookingRepo) ListAllBySpeakerID(ctx context.Context, speakerID string) ([]*domain.Booking, error) {
	if f.err != nil {
		return nil, f.err
	}
	bookings := []*domain.Booking{}
	for _, b := range f.byID {
		if b.SpeakerID == speakerID {
			bookings = append(bookings, b)
		}
	}
	return bookings, nil
}

func (f *fakeBookingRepo) UpdateStatus(ctx context.Context, id, expected, next, reason string, respondedAt *time.Time) error {
	b, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if b.Status != expected {
		return domain.ErrPreconditionFailed
	}
	b.Status = next
	b.StatusReason = reason
	if respondedAt != nil {
		b.RespondedAt = respondedAt
	}
	return nil
}

func (f *fakeBookingRepo) MarkPaid(ctx context.Context, id, reference string, amount float64) error {
	b, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if b.Status != domain.BookingStatusAccepted {
		return domain.ErrPreconditionFailed
	}
	b.Status = domain.BookingStatusPaid
	b.PaymentReference = reference
	b.PaymentAmount = amount
	return nil
}

func (f *fakeBookingRepo) Rate(ctx context.Context, id string, rating int, comment string, ratedAt time.Time) error {
	b, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if b.Status != domain.BookingStatusCompleted || b.RatedAt != nil {
		return domain.ErrPreconditionFailed
	}
	b.Rating = &rating
	b.RatingComment = comment
	b.RatedAt = &ratedAt
	return nil
}

func (f *fakeBookingRepo) CancelStale(ctx context.Context, cutoff time.Time, reason string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.staleCancelled, nil
}

func (f *fakeBookingRepo) CountByEventAndStatus(ctx context.Context, eventID, status string) (int, error) {
	count := 0
	for _, b := range f.byID {
		if b.EventID == eventID && b.Status == status {
			count++
		}
	}
	return count, nil
}

type fakeInvitationRepo struct {
	byID   map[string]*domain.Invitation
	nextID int
	err    error

	bookings *fakeBookingRepo
}

func newFakeInvitationRepo(bookings *fakeBookingRepo) *fakeInvitationRepo {
	return &fakeInvitationRepo{byID: make(map[string]*domain.Invitation), bookings: bookings}
}

func (f *fakeInvitationRepo) add(inv *domain.Invitation) *domain.Invitation {
	f.byID[inv.ID] = inv
	return inv
}

func (f *fakeInvitationRepo) Create(ctx context.Context, inv *domain.Invitation) error {
	if f.err != nil {
		return f.err
	}
	for _, existing := range f.byID {
		if existing.EventID == inv.EventID && existing.SpeakerID == inv.SpeakerID {
			return domain.ErrDuplicate
		}
	}
	f.nextID++
	inv.ID = fmt.Sprintf("inv-%d", f.nextID)
	f.byID[inv.ID] = inv
	return nil
}

func (f *fakeInvitationRepo) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	if f.err != nil {
		return nil, f.err
	}
	inv, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

func (f *fakeInvitationRepo) detail(inv *domain.Invitation) *domain.InvitationDetail {
	return &domain.InvitationDetail{
		Invitation:    inv,
		EventTitle:    "Go Conf",
		SpeakerName:   "Alice",
		OrganizerName: "Bob",
	}
}

func (f *fakeInvitationRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.InvitationDetail, error) {
	details := []*domain.InvitationDetail{}
	for _, inv := range f.byID {
		if inv.EventID == eventID {
			details = append(details, f.detail(inv))
		}
	}
	return details, nil
}

func (f *fakeInvitationRepo) ListBySpeakerID(ctx context.Context, speakerID string) ([]*domain.InvitationDetail, error) {
	details := []*domain.InvitationDetail{}
	for _, inv := range f.byID {
		if inv.SpeakerID == speakerID {
			details = append(details, f.detail(inv))
		}
	}
	return details, nil
}

func (f *fakeInvitationRepo) UpdateStatus(ctx context.Context, id, expected, next string) error {
	inv, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if inv.Status != expected {
		return domain.ErrPreconditionFailed
	}
	inv.Status = next
	return nil
}

func (f *fakeInvitationRepo) AcceptAndCreateBooking(ctx context.Context, inv *domain.Invitation, now time.Time) (*domain.Booking, error) {
	if f.err != nil {
		return nil, f.err
	}
	stored, ok := f.byID[inv.ID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if stored.Status != domain.InvitationStatusPending || stored.Expired(now) {
		return nil, domain.ErrPreconditionFailed
	}
	stored.Status = domain.InvitationStatusAccepted

	invID := stored.ID
	booking := &domain.Booking{
		EventID:      stored.EventID,
		SpeakerID:    stored.SpeakerID,
		OrganizerID:  stored.OrganizerID,
		InvitationID: &invID,
		Status:       domain.BookingStatusPending,
		AgreedRate:   stored.ProposedRate,
		Message:      stored.Message,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := f.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

func (f *fakeInvitationRepo) ExpireOld(ctx context.Context, now time.Time) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	var n int64
	for _, inv := range f.byID {
		if inv.Status == domain.InvitationStatusPending && inv.Expired(now) {
			inv.Status = domain.InvitationStatusExpired
			n++
		}
	}
	return n, nil
}

type fakeHistoryRepo struct {
	entries []*domain.StatusHistory
	err     error
}

func (f *fakeHistoryRepo) Append(ctx context.Context, h *domain.StatusHistory) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, h)
	return nil
}

func (f *fakeHistoryRepo) ListByEntity(ctx context.Context, entityType, entityID string) ([]*domain.StatusHistory, error) {
	matched := []*domain.StatusHistory{}
	for _, h := range f.entries {
		if h.EntityType == entityType && h.EntityID == entityID {
			matched = append(matched, h)
		}
	}
	return matched, nil
}

type notifierCall struct {
	recipientID string
	ntype       string
	message     string
}

type fakeNotifier struct {
	calls []notifierCall
}

func (f *fakeNotifier) NotifyBooking(ctx context.Context, recipientID, ntype, message string, detail *domain.BookingDetail) {
	f.calls = append(f.calls, notifierCall{recipientID, ntype, message})
}

func (f *fakeNotifier) NotifyInvitation(ctx context.Context, recipientID, ntype, message string, detail *domain.InvitationDetail) {
	f.calls = append(f.calls, notifierCall{recipientID, ntype, message})
}

type fakeStatsService struct {
	recomputed []string
	err        error
}

func (f *fakeStatsService) RecomputeSpeaker(ctx context.Context, speakerID string) (domain.SpeakerStats, bool, error) {
	if f.err != nil {
		return domain.SpeakerStats{}, false, f.err
	}
	f.recomputed = append(f.recomputed, speakerID)
	return domain.SpeakerStats{}, true, nil
}

func (f *fakeStatsService) SyncAll(ctx context.Context) ([]domain.SpeakerSyncResult, error) {
	return nil, nil
}

func (f *fakeStatsService) ApplicationStats(ctx context.Context, callerID string) (*domain.ApplicationStats, error) {
	return nil, nil
}

func (f *fakeStatsService) InvitationStats(ctx context.Context, callerID, eventID string) (*domain.InvitationStats, error) {
	return nil, nil
}

type fakeTopicRepo struct {
	byEventID map[string][]string
	err       error
}

func newFakeTopicRepo() *fakeTopicRepo {
	return &fakeTopicRepo{byEventID: make(map[string][]string)}
}

func (f *fakeTopicRepo) EnsureTopic(ctx context.Context, name string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "topic-" + name, nil
}

func (f *fakeTopicRepo) SetEventTopics(ctx context.Context, eventID string, names []string) error {
	if f.err != nil {
		return f.err
	}
	f.byEventID[eventID] = names
	return nil
}

func (f *fakeTopicRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Topic, error) {
	topics := []*domain.Topic{}
	for _, name := range f.byEventID[eventID] {
		topics = append(topics, &domain.Topic{ID: "topic-" + name, Name: name})
	}
	return topics, nil
}

type fakeUserRepo struct {
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
	nextID  int
	err     error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]*domain.User),
	}
}

func (f *fakeUserRepo) add(u *domain.User) *domain.User {
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
	return u
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	if f.err != nil {
		return f.err
	}
	if _, exists := f.byEmail[user.Email]; exists {
		return domain.ErrDuplicate
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	f.add(user)
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

// fakeHasher "hashes" by concatenation so tests can assert on stored values.
type fakeHasher struct {
	saltErr error
}

func (f *fakeHasher) GenerateSalt() (string, error) {
	if f.saltErr != nil {
		return "", f.saltErr
	}
	return "salt", nil
}

func (f *fakeHasher) Hash(salt, password string) (string, error) {
	return salt + ":" + password, nil
}

func (f *fakeHasher) Compare(hash, salt, password string) error {
	if hash != salt+":"+password {
		return domain.ErrForbidden
	}
	return nil
}

type fakeIssuer struct {
	err error
}

func (f *fakeIssuer) Issue(userID, email string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token-" + userID, nil
}

type fakeStatsRepo struct {
	applicationStats *domain.ApplicationStats
	invitationStats  *domain.InvitationStats
	err              error
}

func (f *fakeStatsRepo) GetApplicationStats(ctx context.Context, userID string) (*domain.ApplicationStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.applicationStats, nil
}

func (f *fakeStatsRepo) GetInvitationStats(ctx context.Context, eventID string) (*domain.InvitationStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.invitationStats, nil
}
