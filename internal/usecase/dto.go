package usecase

import (
	"time"

	"github.com/xavierca1/mandate-sync/internal/entity"
)

const (
	ActionInvite = "invite"
	ActionLink   = "link"
)

// ActionFailure é uma ação que falhou num registro; as flags ficam intactas
// e a próxima passada tenta de novo.
type ActionFailure struct {
	RecordID string
	Action   string
	Err      error
}

type PassReport struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time

	Records        int
	InvitesSent    int
	AlreadySent    int
	MandatesLinked int
	Skipped        int

	// ListErr is set when the record listing failed. With no record read at
	// all the pass ends early.
	ListErr  error
	Failures []ActionFailure
}

func (r *PassReport) fail(recordID, action string, err error) {
	r.Failures = append(r.Failures, ActionFailure{RecordID: recordID, Action: action, Err: err})
}

// MandateEventsInput é o corpo do webhook da GoCardless
type MandateEventsInput struct {
	Events []entity.MandateEvent `json:"events"`
}

type MandateEventsOutput struct {
	Handled int
	Ignored int
	Errors  []error
}
