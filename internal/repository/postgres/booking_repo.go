package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"speakermarket/internal/domain"
)

type bookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(db *sql.DB) domain.BookingRepository {
	return &bookingRepository{DB: db}
}

const bookingColumns = `b.id, b.event_id, b.speaker_id, b.organizer_id, b.invitation_id,
		b.status, b.agreed_rate, b.message, b.status_reason, b.payment_reference,
		b.payment_amount, b.rating, b.rating_comment, b.rated_at, b.responded_at,
		b.created_at, b.updated_at`

func scanBooking(row interface{ Scan(...any) error }) (*domain.Booking, error) {
	b := &domain.Booking{}
	err := row.Scan(&b.ID, &b.EventID, &b.SpeakerID, &b.OrganizerID, &b.InvitationID,
		&b.Status, &b.AgreedRate, &b.Message, &b.StatusReason, &b.PaymentReference,
		&b.PaymentAmount, &b.Rating, &b.RatingComment, &b.RatedAt, &b.RespondedAt,
		&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	query := `
		INSERT INTO bookings (event_id, speaker_id, organizer_id, invitation_id, status,
			agreed_rate, message, status_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		b.EventID, b.SpeakerID, b.OrganizerID, b.InvitationID, b.Status,
		b.AgreedRate, b.Message, b.StatusReason, b.CreatedAt, b.UpdatedAt).
		Scan(&b.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.id = $1`
	return scanBooking(r.DB.QueryRowContext(ctx, query, id))
}

func (r *bookingRepository) GetByEventAndSpeaker(ctx context.Context, eventID, speakerID string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.event_id = $1 AND b.speaker_id = $2`
	return scanBooking(r.DB.QueryRowContext(ctx, query, eventID, speakerID))
}

// bookingDetailQuery joins the parties' display names and the event schedule
// for the read views.
const bookingDetailQuery = `
	SELECT ` + bookingColumns + `,
	       e.title, e.date_time, sp.display_name, op.display_name
	FROM bookings b
	JOIN events e ON e.id = b.event_id
	JOIN speakers s ON s.id = b.speaker_id
	JOIN profiles sp ON sp.id = s.profile_id
	JOIN profiles op ON op.id = b.organizer_id
`

func scanBookingDetail(row interface{ Scan(...any) error }) (*domain.BookingDetail, error) {
	b := &domain.Booking{}
	d := &domain.BookingDetail{Booking: b}
	err := row.Scan(&b.ID, &b.EventID, &b.SpeakerID, &b.OrganizerID, &b.InvitationID,
		&b.Status, &b.AgreedRate, &b.Message, &b.StatusReason, &b.PaymentReference,
		&b.PaymentAmount, &b.Rating, &b.RatingComment, &b.RatedAt, &b.RespondedAt,
		&b.CreatedAt, &b.UpdatedAt,
		&d.EventTitle, &d.EventDateTime, &d.SpeakerName, &d.OrganizerName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

func (r *bookingRepository) GetDetail(ctx context.Context, id string) (*domain.BookingDetail, error) {
	return scanBookingDetail(r.DB.QueryRowContext(ctx, bookingDetailQuery+` WHERE b.id = $1`, id))
}

func (r *bookingRepository) listDetails(ctx context.Context, query string, args ...any) ([]*domain.BookingDetail, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []*domain.BookingDetail
	for rows.Next() {
		d, err := scanBookingDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if details == nil {
		details = []*domain.BookingDetail{}
	}
	return details, nil
}

func (r *bookingRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.BookingDetail, error) {
	return r.listDetails(ctx, bookingDetailQuery+` WHERE b.event_id = $1 ORDER BY b.created_at DESC`, eventID)
}

func (r *bookingRepository) ListBySpeakerID(ctx context.Context, speakerID string) ([]*domain.BookingDetail, error) {
	return r.listDetails(ctx, bookingDetailQuery+` WHERE b.speaker_id = $1 ORDER BY b.created_at DESC`, speakerID)
}

func (r *bookingRepository) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.BookingDetail, error) {
	return r.listDetails(ctx, bookingDetailQuery+` WHERE b.organizer_id = $1 ORDER BY b.created_at DESC`, organizerID)
}

func (r *bookingRepository) ListAllBySpeakerID(ctx context.Context, speakerID string) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.speaker_id = $1 ORDER BY b.created_at`
	rows, err := r.DB.QueryContext(ctx, query, speakerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []*domain.Booking{}
	}
	return bookings, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id, expected, next, reason string, respondedAt *time.Time) error {
	// Compare-and-swap on status: the update only lands while the row is
	// still in the expected status, so a concurrent transition loses cleanly.
	query := `
		UPDATE bookings
		SET status = $3,
		    status_reason = $4,
		    responded_at = COALESCE($5, responded_at),
		    updated_at = $6
		WHERE id = $1 AND status = $2
	`
	res, err := r.DB.ExecContext(ctx, query, id, expected, next, reason, respondedAt, time.Now())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrPreconditionFailed
	}
	return nil
}

func (r *bookingRepository) MarkPaid(ctx context.Context, id, reference string, amount float64) error {
	query := `
		UPDATE bookings
		SET status = $4, payment_reference = $2, payment_amount = $3, updated_at = $5
		WHERE id = $1 AND status = $6
	`
	res, err := r.DB.ExecContext(ctx, query, id, reference, amount,
		domain.BookingStatusPaid, time.Now(), domain.BookingStatusAccepted)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrPreconditionFailed
	}
	return nil
}

func (r *bookingRepository) Rate(ctx context.Context, id string, rating int, comment string, ratedAt time.Time) error {
	// rated_at IS NULL makes the rating write-once.
	query := `
		UPDATE bookings
		SET rating = $2, rating_comment = $3, rated_at = $4, updated_at = $5
		WHERE id = $1 AND status = $6 AND rated_at IS NULL
	`
	res, err := r.DB.ExecContext(ctx, query, id, rating, comment, ratedAt, time.Now(), domain.BookingStatusCompleted)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrPreconditionFailed
	}
	return nil
}

func (r *bookingRepository) CancelStale(ctx context.Context, cutoff time.Time, reason string) (int64, error) {
	query := `
		UPDATE bookings b
		SET status = $1, status_reason = $2, updated_at = $3
		FROM events e
		WHERE e.id = b.event_id
		  AND b.status IN ($4, $5)
		  AND e.date_time + (e.duration_hours * interval '1 hour') < $6
	`
	res, err := r.DB.ExecContext(ctx, query,
		domain.BookingStatusCancelled, reason, time.Now(),
		domain.BookingStatusPending, domain.BookingStatusAccepted, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *bookingRepository) CountByEventAndStatus(ctx context.Context, eventID, status string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE event_id = $1 AND status = $2`,
		eventID, status).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
