// Package notify delivers outcome messages to applicants and the reviewer
// audience. Delivery is best-effort and one-way: a send failure is reported
// to the caller for logging but must never affect a committed transition.
package notify

import (
	"context"
	"fmt"

	"guild-intake/internal/models"
)

// Dispatcher is the outbound notification contract consumed by the review
// machine and the intake collector.
type Dispatcher interface {
	// NotifyApplicant tells the applicant their application outcome.
	NotifyApplicant(ctx context.Context, rec models.ApplicationRecord, outcome models.Outcome, actorID string) error

	// NotifyReviewers tells the reviewer audience about a processed or newly
	// queued application.
	NotifyReviewers(ctx context.Context, rec models.ApplicationRecord, outcome models.Outcome, actorID string) error

	// NotifyQueued confirms a submission to the applicant, including their
	// queue position and the build screenshot reminder.
	NotifyQueued(ctx context.Context, rec models.ApplicationRecord, position int) error

	// RequestInfo asks the applicant for a build screenshot.
	RequestInfo(ctx context.Context, rec models.ApplicationRecord, actorID string) error
}

func applicantMessage(rec models.ApplicationRecord, outcome models.Outcome, actorID string) string {
	switch outcome {
	case models.OutcomeAccepted:
		return fmt.Sprintf(
			"Congratulations! Your application to join the guild has been accepted. Please contact reviewer %s for next steps.",
			actorID)
	case models.OutcomeRejected:
		reason := rec.RejectionReason
		if reason == "" {
			reason = "No reason provided."
		}
		return fmt.Sprintf(
			"We're sorry, but your application to join the guild has been declined at this time. Reason: %s", reason)
	default:
		return fmt.Sprintf("Your application %s has been updated.", rec.ID)
	}
}

func reviewerMessage(rec models.ApplicationRecord, outcome models.Outcome, actorID string) string {
	ign := rec.Answers["ign"]
	switch outcome {
	case models.OutcomeQueued:
		return fmt.Sprintf("%s (%s) has applied to join the guild. Application ID: %s", rec.UserID, ign, rec.ID)
	case models.OutcomeAccepted:
		return fmt.Sprintf("%s has accepted the application from %s (%s).", actorID, rec.UserID, ign)
	case models.OutcomeRejected:
		return fmt.Sprintf("%s has rejected the application from %s (%s).", actorID, rec.UserID, ign)
	default:
		return fmt.Sprintf("Application %s updated by %s.", rec.ID, actorID)
	}
}

func queuedMessage(rec models.ApplicationRecord, position int) string {
	return fmt.Sprintf(
		"Thank you for your guild application! You are #%d in the review queue. "+
			"Please don't forget to provide a screenshot of your build showing your full character page, "+
			"detailed stats, and if possible, skill loadout and masteries.", position)
}

func requestInfoMessage(rec models.ApplicationRecord) string {
	return "Hello! Thank you for your application to the guild. Could you please provide a screenshot of your " +
		"build showing your full character page, detailed stats, and if possible, skill loadout and masteries? " +
		"This will help us better evaluate your application."
}
