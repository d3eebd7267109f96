package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"speakermarket/internal/domain"
)

type invitationRepository struct {
	DB *sql.DB
}

func NewInvitationRepository(db *sql.DB) domain.InvitationRepository {
	return &invitationRepository{DB: db}
}

const invitationColumns = `i.id, i.event_id, i.speaker_id, i.organizer_id, i.status,
		i.proposed_rate, i.message, i.expires_at, i.created_at, i.updated_at`

func scanInvitation(row interface{ Scan(...any) error }) (*domain.Invitation, error) {
	inv := &domain.Invitation{}
	err := row.Scan(&inv.ID, &inv.EventID, &inv.SpeakerID, &inv.OrganizerID, &inv.Status,
		&inv.ProposedRate, &inv.Message, &inv.ExpiresAt, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (r *invitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	query := `
		INSERT INTO invitations (event_id, speaker_id, organizer_id, status, proposed_rate,
			message, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		inv.EventID, inv.SpeakerID, inv.OrganizerID, inv.Status, inv.ProposedRate,
		inv.Message, inv.ExpiresAt, inv.CreatedAt, inv.UpdatedAt).
		Scan(&inv.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *invitationRepository) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations i WHERE i.id = $1`
	return scanInvitation(r.DB.QueryRowContext(ctx, query, id))
}

const invitationDetailQuery = `
	SELECT ` + invitationColumns + `,
	       e.title, e.date_time, sp.display_name, op.display_name
	FROM invitations i
	JOIN events e ON e.id = i.event_id
	JOIN speakers s ON s.id = i.speaker_id
	JOIN profiles sp ON sp.id = s.profile_id
	JOIN profiles op ON op.id = i.organizer_id
`

func (r *invitationRepository) listDetails(ctx context.Context, query string, args ...any) ([]*domain.InvitationDetail, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []*domain.InvitationDetail
	for rows.Next() {
		inv := &domain.Invitation{}
		d := &domain.InvitationDetail{Invitation: inv}
		if err := rows.Scan(&inv.ID, &inv.EventID, &inv.SpeakerID, &inv.OrganizerID, &inv.Status,
			&inv.ProposedRate, &inv.Message, &inv.ExpiresAt, &inv.CreatedAt, &inv.UpdatedAt,
			&d.EventTitle, &d.EventDateTime, &d.SpeakerName, &d.OrganizerName); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if details == nil {
		details = []*domain.InvitationDetail{}
	}
	return details, nil
}

func (r *invitationRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.InvitationDetail, error) {
	return r.listDetails(ctx, invitationDetailQuery+` WHERE i.event_id = $1 ORDER BY i.created_at DESC`, eventID)
}

func (r *invitationRepository) ListBySpeakerID(ctx context.Context, speakerID string) ([]*domain.InvitationDetail, error) {
	return r.listDetails(ctx, invitationDetailQuery+` WHERE i.speaker_id = $1 ORDER BY i.created_at DESC`, speakerID)
}

func (r *invitationRepository) UpdateStatus(ctx context.Context, id, expected, next string) error {
	query := `
		UPDATE invitations
		SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2
	`
	res, err := r.DB.ExecContext(ctx, query, id, expected, next, time.Now())
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

// AcceptAndCreateBooking runs the accept transition and the booking upsert in
// one transaction. The conditional invitation update serializes concurrent
// acceptances; the ON CONFLICT upsert guarantees a single booking per
// (event, speaker) pair either way.
func (r *invitationRepository) AcceptAndCreateBooking(ctx context.Context, inv *domain.Invitation, now time.Time) (*domain.Booking, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE invitations
		SET status = $2, updated_at = $3
		WHERE id = $1 AND status = $4 AND expires_at >= $3
	`, inv.ID, domain.InvitationStatusAccepted, now, domain.InvitationStatusPending)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.ErrPreconditionFailed
	}

	b := &domain.Booking{}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO bookings (event_id, speaker_id, organizer_id, invitation_id, status,
			agreed_rate, message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (event_id, speaker_id) DO UPDATE
		SET invitation_id = EXCLUDED.invitation_id,
		    agreed_rate   = EXCLUDED.agreed_rate,
		    message       = EXCLUDED.message,
		    updated_at    = EXCLUDED.updated_at
		RETURNING id, event_id, speaker_id, organizer_id, invitation_id, status,
			agreed_rate, message, status_reason, payment_reference, payment_amount,
			rating, rating_comment, rated_at, responded_at, created_at, updated_at
	`, inv.EventID, inv.SpeakerID, inv.OrganizerID, inv.ID, domain.BookingStatusPending,
		inv.ProposedRate, inv.Message, now).
		Scan(&b.ID, &b.EventID, &b.SpeakerID, &b.OrganizerID, &b.InvitationID,
			&b.Status, &b.AgreedRate, &b.Message, &b.StatusReason, &b.PaymentReference,
			&b.PaymentAmount, &b.Rating, &b.RatingComment, &b.RatedAt, &b.RespondedAt,
			&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return b, nil
}

func (r *invitationRepository) ExpireOld(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE invitations
		SET status = $1, updated_at = $2
		WHERE status = $3 AND expires_at < $2
	`
	res, err := r.DB.ExecContext(ctx, query, domain.InvitationStatusExpired, now, domain.InvitationStatusPending)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
