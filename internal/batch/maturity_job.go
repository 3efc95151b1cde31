package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"credit-engine/internal/domain/loan"
	"credit-engine/internal/pkg/apperrors"
)

// UpdateMaturityJob closes out loans whose end date has passed, moving them
// from ACTIVE/APPROVED to PAID_OFF so they stop counting toward a customer's
// installment load.
type UpdateMaturityJob struct {
	loanRepo loan.Repository
	logger   *slog.Logger
	now      func() time.Time
}

func NewUpdateMaturityJob(loanRepo loan.Repository, logger *slog.Logger) *UpdateMaturityJob {
	if loanRepo == nil || logger == nil {
		panic("UpdateMaturityJob dependencies cannot be nil")
	}
	return &UpdateMaturityJob{
		loanRepo: loanRepo,
		logger:   logger.With("job", "UpdateMaturity"),
		now:      time.Now,
	}
}

func (j *UpdateMaturityJob) Run(ctx context.Context) error {
	startTime := j.now()
	j.logger.InfoContext(ctx, "Starting loan maturity update job.")

	maturedIDs, err := j.loanRepo.FindMaturedLoans(ctx, startTime)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to find matured loans, aborting job.", slog.Any("error", err))
		return fmt.Errorf("cannot run job, failed to find matured loans: %w", err)
	}
	j.logger.InfoContext(ctx, "Fetched matured loan IDs.", slog.Int("count", len(maturedIDs)))

	if len(maturedIDs) == 0 {
		j.logger.InfoContext(ctx, "No matured loans found to process.",
			slog.Duration("duration", time.Since(startTime)))
		return nil
	}

	var updatedCount, errorCount int

	for _, loanID := range maturedIDs {
		logCtx := j.logger.With(slog.Int64("loanID", loanID))

		tx, err := j.loanRepo.BeginTx(ctx)
		if err != nil {
			logCtx.ErrorContext(ctx, "Failed to begin transaction", slog.Any("error", err))
			errorCount++
			continue
		}

		if err := j.loanRepo.UpdateLoanStatusInTx(ctx, tx, loanID, loan.StatusPaidOff); err != nil {
			_ = j.loanRepo.RollbackTx(ctx, tx)
			if errors.Is(err, apperrors.ErrNotFound) {
				logCtx.WarnContext(ctx, "Loan disappeared during maturity update")
			} else {
				logCtx.ErrorContext(ctx, "Failed to update loan status", slog.Any("error", err))
				errorCount++
			}
			continue
		}

		if err := j.loanRepo.CommitTx(ctx, tx); err != nil {
			logCtx.ErrorContext(ctx, "Failed to commit maturity update", slog.Any("error", err))
			errorCount++
			continue
		}

		logCtx.InfoContext(ctx, "Loan marked as paid off.")
		updatedCount++
	}

	j.logger.InfoContext(ctx, "Loan maturity update job finished.",
		slog.Int("updated", updatedCount),
		slog.Int("errors", errorCount),
		slog.Duration("duration", time.Since(startTime)))

	if errorCount > 0 {
		return fmt.Errorf("maturity update finished with %d errors", errorCount)
	}
	return nil
}
