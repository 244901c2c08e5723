// internal/workers/review/reject-application/handler.go
package rejectapplication

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"guild-intake/internal/common/auth"
	stderrors "guild-intake/internal/common/errors"
	"guild-intake/internal/common/logger"
	"guild-intake/internal/common/metrics"
	"guild-intake/internal/models"
	"guild-intake/internal/review"
)

const (
	TaskType = "reject-application"
)

type Handler struct {
	config  *Config
	machine *review.Machine
	gate    auth.ReviewerGate
	logger  logger.Logger
	errors  *stderrors.ErrorHandler
}

func NewHandler(config *Config, machine *review.Machine, gate auth.ReviewerGate, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		machine: machine,
		gate:    gate,
		logger:  scoped,
		errors:  stderrors.NewErrorHandler(scoped),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	defer func() {
		metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	}()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stderrors.ErrCodeValidationFailed)).Inc()
		h.errors.HandleJobError(context.Background(), client, job,
			stderrors.NewValidationFailedError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stderrors.CodeOf(err))).Inc()
		h.errors.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ReviewerID == "" {
		return nil, stderrors.NewValidationFailedError("reviewerId is required")
	}

	allowed, err := h.gate.IsPrivilegedReviewer(ctx, input.ReviewerID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, stderrors.NewPermissionDeniedError(input.ReviewerID)
	}

	var rec models.ApplicationRecord
	switch {
	case input.ApplicationID != "":
		rec, err = h.machine.Reject(ctx, input.ApplicationID, input.ReviewerID, input.Reason)
	case input.ApplicantID != "":
		rec, err = h.machine.RejectByApplicant(ctx, input.ApplicantID, input.ReviewerID, input.Reason)
	default:
		return nil, stderrors.NewValidationFailedError("applicationId or applicantId is required")
	}
	if err != nil {
		return nil, err
	}

	return &Output{
		ApplicationID:   rec.ID,
		Status:          string(rec.Status),
		ProcessedBy:     rec.ProcessedBy,
		ProcessedAt:     rec.ProcessedAt.Format(time.RFC3339),
		RejectionReason: rec.RejectionReason,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}
