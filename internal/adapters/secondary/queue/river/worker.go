package river

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/elnvault/eln-core/internal/core/entity"
)

// Mover is the narrow slice of port.StorageAdapter the worker needs — just
// enough to retry the move, without pulling in the rest of the storage
// contract.
type Mover interface {
	Move(ctx context.Context, srcKey, dstKey string, mustNotExist bool) error
}

// MoveWorker retries a single pending attachment move. It always passes
// mustNotExist=true: the same idempotent-if-same-bytes-else-conflict
// resolution the Submission Engine relies on for its first attempt also
// makes a retried move safe to run twice (SPEC_FULL.md §9).
type MoveWorker struct {
	river.WorkerDefaults[MoveArgs]
	mover Mover
}

// Work executes one retry attempt of the move.
func (w *MoveWorker) Work(ctx context.Context, job *river.Job[MoveArgs]) error {
	args := job.Args

	err := w.mover.Move(ctx, args.SrcKey, args.DstKey, true)
	if err == nil {
		return nil
	}

	if entity.KindOf(err) == entity.KindConflict {
		// Destination exists with different bytes: retrying will never
		// help. Cancel rather than burn the remaining attempts.
		slog.Error("pending attachment move permanently conflicted",
			"tenant", args.Tenant, "sop_id", args.SOPID, "eln_uuid", args.ELNUUID,
			"temp_id", args.TempID, "field_id", args.FieldID)
		return river.JobCancel(fmt.Errorf("attachment move conflict: %s -> %s", args.SrcKey, args.DstKey))
	}

	slog.Warn("pending attachment move attempt failed, will retry",
		"tenant", args.Tenant, "sop_id", args.SOPID, "eln_uuid", args.ELNUUID,
		"temp_id", args.TempID, "attempt", job.Attempt, "error", err)
	return fmt.Errorf("move attachment %s -> %s: %w", args.SrcKey, args.DstKey, err)
}
