// Package river implements port.MoveQueue on top of riverqueue/river,
// giving the Submission Engine's PartialFailure path (SPEC_FULL.md §4.8,
// §7) a durable, crash-safe retry queue instead of an in-process one: a
// pending move survives a process restart because it lives in the
// river_job table, not in memory.
package river

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	"github.com/elnvault/eln-core/internal/core/entity"
	"github.com/elnvault/eln-core/internal/core/port"
)

// MoveArgs carries everything the worker needs to retry a single
// attachment move without consulting the draft store again — the draft
// may already have been deleted by the time the job runs.
type MoveArgs struct {
	Tenant  string `json:"tenant"`
	SOPID   string `json:"sop_id"`
	ELNUUID string `json:"eln_uuid"`
	SrcKey  string `json:"src_key"`
	DstKey  string `json:"dst_key"`
	TempID  string `json:"temp_id"`
	FieldID string `json:"field_id"`
}

// Kind identifies this job type in the river_job table.
func (MoveArgs) Kind() string { return "pending_attachment_move" }

// InsertOpts bounds retries: the spec calls for "exponential backoff for a
// bounded duration" (§7), not indefinite retry. River's default backoff is
// already exponential; MaxAttempts caps the bounded duration.
func (MoveArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       "attachment_moves",
		MaxAttempts: 12,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	}
}

// Queue adapts a *river.Client to port.MoveQueue.
type Queue struct {
	client *river.Client[pgx.Tx]
}

// NewClient builds the shared river.Client with the move worker
// registered. Called once at startup; the returned client is used both to
// enqueue jobs (via Queue) and to run the worker loop (via Start/Stop).
func NewClient(pool *pgxpool.Pool, mover Mover) (*river.Client[pgx.Tx], error) {
	workers := river.NewWorkers()
	river.AddWorker(workers, &MoveWorker{mover: mover})

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			"attachment_moves": {MaxWorkers: 4},
		},
		Workers: workers,
	})
	if err != nil {
		return nil, fmt.Errorf("river: create client: %w", err)
	}
	return client, nil
}

// NewQueue wraps an already-constructed client for enqueue-only use.
func NewQueue(client *river.Client[pgx.Tx]) *Queue {
	return &Queue{client: client}
}

// EnqueueMove implements port.MoveQueue.
func (q *Queue) EnqueueMove(ctx context.Context, job port.PendingMoveJob) error {
	_, err := q.client.Insert(ctx, MoveArgs{
		Tenant:  job.Tenant,
		SOPID:   job.SOPID,
		ELNUUID: job.ELNUUID,
		SrcKey:  job.SrcKey,
		DstKey:  job.DstKey,
		TempID:  job.TempID,
		FieldID: job.FieldID,
	}, nil)
	if err != nil {
		return entity.Wrap(entity.KindIO, "enqueueing pending attachment move", err)
	}
	return nil
}

var _ port.MoveQueue = (*Queue)(nil)
