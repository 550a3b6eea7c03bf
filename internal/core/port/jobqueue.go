package port

import "context"

// PendingMoveJob is the durable payload for one outstanding attachment
// move after a submission's body has committed but the move step failed
// (§4.8 step 7). It carries everything the worker needs to retry the move
// without consulting the draft again, since the draft may be deleted or
// swept before the retry runs.
type PendingMoveJob struct {
	Tenant   string
	SOPID    string
	ELNUUID  string
	SrcKey   string
	DstKey   string
	TempID   string
	FieldID  string
}

// MoveQueue durably enqueues attachment-move retries. Implemented with
// River in production; an in-memory stub backs unit tests.
type MoveQueue interface {
	EnqueueMove(ctx context.Context, job PendingMoveJob) error
}
