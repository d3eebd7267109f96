package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// BookingEmailData holds data for booking lifecycle emails.
type BookingEmailData struct {
	RecipientName string
	EventTitle    string
	CounterpartName string
	Status        string
	Reason        string
	Amount        float64
}

// InvitationEmailData holds data for invitation lifecycle emails.
type InvitationEmailData struct {
	RecipientName string
	EventTitle    string
	OrganizerName string
	SpeakerName   string
	ProposedRate  float64
	ExpiresAt     string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendBookingUpdate(ctx context.Context, to string, data *BookingEmailData) error
	SendInvitationReceived(ctx context.Context, to string, data *InvitationEmailData) error
	SendInvitationAnswered(ctx context.Context, to string, data *InvitationEmailData) error
}
