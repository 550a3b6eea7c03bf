package submission_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elnvault/eln-core/internal/core/entity"
	"github.com/elnvault/eln-core/internal/core/service/draftstore"
	"github.com/elnvault/eln-core/internal/core/service/filestager"
	"github.com/elnvault/eln-core/internal/core/service/submission"
	"github.com/elnvault/eln-core/internal/testing/testhelper"
)

func descriptor() *entity.SOPDescriptor {
	nodes := []entity.Node{
		{Index: 0, Kind: entity.NodeKindField, ID: "project_id"},
		{Index: 1, Kind: entity.NodeKindField, ID: "sample_id"},
	}
	return entity.NewSOPDescriptor("SOP42", 1, nodes, []string{"project_id", "sample_id"})
}

func newFixture(t *testing.T) (*testhelper.MemStorage, *draftstore.Store, *filestager.Stager, *submission.Engine, *entity.User) {
	t.Helper()
	storage := testhelper.NewMemStorage()
	drafts := draftstore.New(storage)
	stager := filestager.New(storage, drafts)
	queue := testhelper.NewMemQueue()
	engine := submission.New(storage, queue)
	alice := &entity.User{ID: "alice", Permissions: []string{"submit:SOP42"}}
	return storage, drafts, stager, engine, alice
}

func TestHappyPathSubmit(t *testing.T) {
	_, drafts, _, engine, alice := newFixture(t)

	draft, err := drafts.Save(context.Background(), alice, draftstore.SaveInput{
		Tenant: "acme", SOPID: "SOP42",
		FormData:  map[string]any{"project_id": "P7", "sample_id": "S9", "notes": "ok"},
		Variables: []string{"P7", "S9"}, FieldIDs: []string{"project_id", "sample_id"},
	})
	require.NoError(t, err)

	res, err := engine.Submit(context.Background(), alice, descriptor(), "acme", draft)
	require.NoError(t, err)
	assert.Empty(t, res.PendingAttachments)
	assert.Contains(t, res.Submission.Filename, "-P7-S9-")
}

func TestEmptyComponentPreserved(t *testing.T) {
	_, drafts, _, engine, alice := newFixture(t)

	draft, err := drafts.Save(context.Background(), alice, draftstore.SaveInput{
		Tenant: "acme", SOPID: "SOP42",
		FormData:  map[string]any{"project_id": "P7"},
		Variables: []string{"P7", ""}, FieldIDs: []string{"project_id", "sample_id"},
	})
	require.NoError(t, err)

	res, err := engine.Submit(context.Background(), alice, descriptor(), "acme", draft)
	require.NoError(t, err)
	assert.Contains(t, res.Submission.Filename, "-P7--")
}

func TestForbiddenWithoutSubmitPermission(t *testing.T) {
	storage := testhelper.NewMemStorage()
	drafts := draftstore.New(storage)
	engine := submission.New(storage, testhelper.NewMemQueue())
	noPerm := &entity.User{ID: "eve"}

	draft, err := drafts.Save(context.Background(), noPerm, draftstore.SaveInput{Tenant: "acme", SOPID: "SOP42"})
	require.NoError(t, err)

	_, err = engine.Submit(context.Background(), noPerm, descriptor(), "acme", draft)
	require.Error(t, err)
	assert.Equal(t, entity.KindForbidden, entity.KindOf(err))
}

func TestPartialAttachmentFailure(t *testing.T) {
	storage, drafts, stager, engine, alice := newFixture(t)

	draft, err := drafts.Save(context.Background(), alice, draftstore.SaveInput{
		Tenant: "acme", SOPID: "SOP42",
		FormData: map[string]any{"project_id": "P7", "sample_id": "S9"},
		Variables: []string{"P7", "S9"}, FieldIDs: []string{"project_id", "sample_id"},
	})
	require.NoError(t, err)

	policy := entity.SizePolicy{MaxFileSizeBytes: 1024}
	var tempIDs []string
	for i := 0; i < 3; i++ {
		sf, err := stager.Upload(context.Background(), alice, policy, filestager.UploadInput{
			Tenant: "acme", SOPID: "SOP42", DraftID: draft.DraftID, FieldID: fmt.Sprintf("file%d", i),
			Stream: strings.NewReader("data"), OriginalName: fmt.Sprintf("f%d.pdf", i), SizeHint: 4, MimeType: "application/pdf",
		})
		require.NoError(t, err)
		tempIDs = append(tempIDs, sf.TempID)
	}

	draft, err = drafts.Get(context.Background(), alice, "acme", "SOP42", draft.DraftID)
	require.NoError(t, err)

	// Force the second attachment's move to fail once.
	failing := draft.StagedFiles[1]
	dstKey := fmt.Sprintf("acme/submissions/SOP42/attachments/%s",
		filenameFor(draft.OwnerID, failing))
	storage.FailMoveOnce[dstKey] = true

	res, err := engine.Submit(context.Background(), alice, descriptor(), "acme", draft)
	require.NoError(t, err)
	require.Len(t, res.PendingAttachments, 1)
	assert.Equal(t, failing.TempID, res.PendingAttachments[0])

	// Retry converges to all 3 attached.
	remaining := engine.AttachToELN(context.Background(), "acme", "SOP42", draft, res.PendingAttachments)
	assert.Empty(t, remaining)
}

func filenameFor(owner string, sf entity.StagedFile) string {
	return owner + "-" + sf.FieldID + "-" + sf.TempID + "-" + sf.OriginalName
}
