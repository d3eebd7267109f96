package domain

import "context"

// ApplicationStats is the result of the server-side get_application_stats
// function: aggregate counters over a user's applications.
// swagger:model ApplicationStats
type ApplicationStats struct {
	Total                int     `json:"total"`
	Pending              int     `json:"pending"`
	Accepted             int     `json:"accepted"`
	Rejected             int     `json:"rejected"`
	Completed            int     `json:"completed"`
	ResponseRate         float64 `json:"response_rate"`
	AvgResponseTimeHours float64 `json:"avg_response_time_hours"`
}

// InvitationStats is the result of the server-side get_invitation_stats
// function: per-event invitation counters.
// swagger:model InvitationStats
type InvitationStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Accepted int `json:"accepted"`
	Declined int `json:"declined"`
	Expired  int `json:"expired"`
}

// StatsRepository wraps the server-side aggregate functions.
type StatsRepository interface {
	GetApplicationStats(ctx context.Context, userID string) (*ApplicationStats, error)
	GetInvitationStats(ctx context.Context, eventID string) (*InvitationStats, error)
}

// SpeakerSyncResult records one speaker's outcome in a full reconciliation
// sweep. Err is empty on success.
type SpeakerSyncResult struct {
	SpeakerID string       `json:"speaker_id"`
	Stats     SpeakerStats `json:"stats"`
	Updated   bool         `json:"updated"`
	Err       string       `json:"error,omitempty"`
}

// StatsService recomputes derived speaker counters from booking history.
type StatsService interface {
	// RecomputeSpeaker rebuilds one speaker's counters. It writes only when
	// the computed values differ from the stored ones; updated reports
	// whether a write happened.
	RecomputeSpeaker(ctx context.Context, speakerID string) (stats SpeakerStats, updated bool, err error)
	// SyncAll sweeps every speaker. Per-speaker failures are recorded in the
	// result list and never abort the batch.
	SyncAll(ctx context.Context) ([]SpeakerSyncResult, error)
	ApplicationStats(ctx context.Context, callerID string) (*ApplicationStats, error)
	InvitationStats(ctx context.Context, callerID, eventID string) (*InvitationStats, error)
}
