//go:build integration

package river_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	riveradapter "github.com/elnvault/eln-core/internal/adapters/secondary/queue/river"
	"github.com/elnvault/eln-core/internal/core/port"
	"github.com/elnvault/eln-core/internal/testing/testhelper"
)

type recordingMover struct {
	mu    sync.Mutex
	moves [][2]string
}

func (m *recordingMover) Move(_ context.Context, srcKey, dstKey string, _ bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.moves = append(m.moves, [2]string{srcKey, dstKey})
	return nil
}

func (m *recordingMover) recorded() [][2]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][2]string(nil), m.moves...)
}

// TestEnqueueMoveIsPickedUpByWorker proves the durable retry path end to
// end: a job inserted through Queue.EnqueueMove survives being read back
// out of Postgres and is executed by MoveWorker once the client is
// started, exercising the same river_job table a crash-restarted process
// would read from.
func TestEnqueueMoveIsPickedUpByWorker(t *testing.T) {
	pool := testhelper.GetTestPool(t)

	mover := &recordingMover{}
	client, err := riveradapter.NewClient(pool, mover)
	require.NoError(t, err)

	queue := riveradapter.NewQueue(client)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	require.NoError(t, client.Start(ctx))
	defer client.Stop(context.Background())

	job := port.PendingMoveJob{
		Tenant:  "acme",
		SOPID:   "SOP1",
		ELNUUID: "eln-123",
		SrcKey:  "acme/drafts/SOP1/attachments/tmp-1_sample.csv",
		DstKey:  "acme/submissions/SOP1/eln-123/sample.csv",
		TempID:  "tmp-1",
		FieldID: "attachment_field",
	}
	require.NoError(t, queue.EnqueueMove(ctx, job))

	require.Eventually(t, func() bool {
		return len(mover.recorded()) == 1
	}, 8*time.Second, 100*time.Millisecond, "worker never picked up the enqueued move")

	assert.Equal(t, [2]string{job.SrcKey, job.DstKey}, mover.recorded()[0])
}
