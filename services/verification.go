package services

import (
	"time"

	"civicreport-be/models"
)

// VerificationThreshold is how many third-party confirmations it takes before a
// non-owner's requested status is applied.
const VerificationThreshold = 2

// Transition is the outcome of one status request.
type Transition struct {
	Report  *models.Report
	ByOwner bool
	// Applied is true when the report now carries the requested status because of this call.
	Applied bool
}

// VerificationStateMachine moves a report between statuses. Any status may follow any
// other; what gates a change is who asks. The owner sets the status directly. Everyone
// else bumps verificationCount, and their requested status only lands once the count
// reaches Threshold. Confirmations are not tied to distinct users, so repeated requests
// from one account keep counting.
type VerificationStateMachine struct {
	Threshold int
}

func NewVerificationStateMachine() VerificationStateMachine {
	return VerificationStateMachine{Threshold: VerificationThreshold}
}

// Apply returns the next version of report; the input is not modified.
func (m VerificationStateMachine) Apply(report *models.Report, requesterID string, requested models.ReportStatus, now time.Time) Transition {
	next := report.Clone()
	next.UpdatedAt = now

	if requesterID == report.OwnerID {
		next.Status = requested
		return Transition{Report: next, ByOwner: true, Applied: true}
	}

	next.VerificationCount++
	if next.VerificationCount >= m.threshold() {
		next.Status = requested
		return Transition{Report: next, Applied: true}
	}
	return Transition{Report: next}
}

func (m VerificationStateMachine) threshold() int {
	if m.Threshold <= 0 {
		return VerificationThreshold
	}
	return m.Threshold
}
