package services

import (
	"context"
	"fmt"

	"speakermarket/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

func (s *emailService) send(template, to string, data any) error {
	subject, htmlBody, textBody, err := s.renderer.Render(template, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", template, err)
	}
	if err := s.mailer.Send(to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", template, err)
	}
	return nil
}

// SendBookingUpdate emails a party about a booking status change using the
// "booking_update" template.
func (s *emailService) SendBookingUpdate(ctx context.Context, to string, data *domain.BookingEmailData) error {
	if data == nil {
		return fmt.Errorf("booking email data is nil")
	}
	return s.send("booking_update", to, data)
}

// SendInvitationReceived emails a speaker about a new invitation using the
// "invitation_received" template.
func (s *emailService) SendInvitationReceived(ctx context.Context, to string, data *domain.InvitationEmailData) error {
	if data == nil {
		return fmt.Errorf("invitation email data is nil")
	}
	return s.send("invitation_received", to, data)
}

// SendInvitationAnswered emails the organizer about an accepted or declined
// invitation using the "invitation_answered" template.
func (s *emailService) SendInvitationAnswered(ctx context.Context, to string, data *domain.InvitationEmailData) error {
	if data == nil {
		return fmt.Errorf("invitation email data is nil")
	}
	return s.send("invitation_answered", to, data)
}
