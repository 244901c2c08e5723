// internal/notify/aws.go
package notify

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	stderrors "guild-intake/internal/common/errors"
	"guild-intake/internal/common/logger"
	"guild-intake/internal/models"
)

// SESService and SNSService mirror the AWS SDK surface we use, so the
// dispatcher is testable without AWS credentials.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// ContactResolver maps a chat-platform user ID to an email address.
// Supplied externally; a resolution failure disables that notification.
type ContactResolver interface {
	Resolve(ctx context.Context, userID string) (string, error)
}

// AWSConfig selects the enabled channels.
type AWSConfig struct {
	EmailEnabled     bool
	FromEmail        string
	ReviewersEnabled bool
	ReviewerTopicARN string
}

// AWSDispatcher sends applicant mail via SES and reviewer-audience fanout
// via an SNS topic.
type AWSDispatcher struct {
	config   AWSConfig
	ses      SESService
	sns      SNSService
	contacts ContactResolver
	logger   logger.Logger
}

func NewAWSDispatcher(cfg AWSConfig, sesClient SESService, snsClient SNSService, contacts ContactResolver, log logger.Logger) *AWSDispatcher {
	return &AWSDispatcher{
		config:   cfg,
		ses:      sesClient,
		sns:      snsClient,
		contacts: contacts,
		logger:   log.WithFields(map[string]interface{}{"component": "notify"}),
	}
}

func (d *AWSDispatcher) NotifyApplicant(ctx context.Context, rec models.ApplicationRecord, outcome models.Outcome, actorID string) error {
	subject := "Guild application update"
	switch outcome {
	case models.OutcomeAccepted:
		subject = "Guild application accepted"
	case models.OutcomeRejected:
		subject = "Guild application declined"
	}
	return d.sendEmail(ctx, rec, subject, applicantMessage(rec, outcome, actorID))
}

func (d *AWSDispatcher) NotifyReviewers(ctx context.Context, rec models.ApplicationRecord, outcome models.Outcome, actorID string) error {
	if !d.config.ReviewersEnabled {
		d.logger.Debug("reviewer notifications disabled", map[string]interface{}{
			"applicationId": rec.ID,
		})
		return nil
	}

	subject := "Guild application " + string(outcome)
	_, err := d.sns.Publish(ctx, &sns.PublishInput{
		TopicArn: awssdk.String(d.config.ReviewerTopicARN),
		Subject:  awssdk.String(subject),
		Message:  awssdk.String(reviewerMessage(rec, outcome, actorID)),
	})
	if err != nil {
		return stderrors.NewNotificationSendFailedError("topic", err)
	}
	return nil
}

func (d *AWSDispatcher) NotifyQueued(ctx context.Context, rec models.ApplicationRecord, position int) error {
	return d.sendEmail(ctx, rec, "Guild application received", queuedMessage(rec, position))
}

func (d *AWSDispatcher) RequestInfo(ctx context.Context, rec models.ApplicationRecord, actorID string) error {
	return d.sendEmail(ctx, rec, "Guild application: screenshot requested", requestInfoMessage(rec))
}

func (d *AWSDispatcher) sendEmail(ctx context.Context, rec models.ApplicationRecord, subject, body string) error {
	if !d.config.EmailEnabled {
		d.logger.Debug("email notifications disabled", map[string]interface{}{
			"applicationId": rec.ID,
		})
		return nil
	}

	email, err := d.contacts.Resolve(ctx, rec.UserID)
	if err != nil {
		// Recipient without a reachable address is not a send failure.
		d.logger.Warn("recipient not resolvable", map[string]interface{}{
			"userId": rec.UserID,
			"error":  fmt.Sprint(err),
		})
		return nil
	}

	_, err = d.ses.SendEmail(ctx, &ses.SendEmailInput{
		Source: awssdk.String(d.config.FromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{email},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: awssdk.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: awssdk.String(body)},
			},
		},
	})
	if err != nil {
		return stderrors.NewNotificationSendFailedError("email", err)
	}
	return nil
}
