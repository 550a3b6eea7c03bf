package filestager_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elnvault/eln-core/internal/core/entity"
	"github.com/elnvault/eln-core/internal/core/service/draftstore"
	"github.com/elnvault/eln-core/internal/core/service/filestager"
	"github.com/elnvault/eln-core/internal/testing/testhelper"
)

func TestUploadEnforcesPolicy(t *testing.T) {
	storage := testhelper.NewMemStorage()
	drafts := draftstore.New(storage)
	stager := filestager.New(storage, drafts)
	alice := &entity.User{ID: "alice"}

	draft, err := drafts.Save(context.Background(), alice, draftstore.SaveInput{Tenant: "acme", SOPID: "SOP42"})
	require.NoError(t, err)

	policy := entity.SizePolicy{MaxFileSizeBytes: 5, ForbiddenExtensions: []string{"exe"}}

	_, err = stager.Upload(context.Background(), alice, policy, filestager.UploadInput{
		Tenant: "acme", SOPID: "SOP42", DraftID: draft.DraftID, FieldID: "scan",
		Stream: strings.NewReader("hello"), OriginalName: "bad.exe", SizeHint: 5, MimeType: "application/octet-stream",
	})
	require.Error(t, err)
	assert.Equal(t, entity.KindForbiddenType, entity.KindOf(err))

	_, err = stager.Upload(context.Background(), alice, policy, filestager.UploadInput{
		Tenant: "acme", SOPID: "SOP42", DraftID: draft.DraftID, FieldID: "scan",
		Stream: strings.NewReader("way too long for the limit"), OriginalName: "scan.pdf",
		SizeHint: 5, MimeType: "application/pdf",
	})
	require.Error(t, err)
	assert.Equal(t, entity.KindTooLarge, entity.KindOf(err))
}

func TestUploadSucceedsAndRecordsOnDraft(t *testing.T) {
	storage := testhelper.NewMemStorage()
	drafts := draftstore.New(storage)
	stager := filestager.New(storage, drafts)
	alice := &entity.User{ID: "alice"}

	draft, err := drafts.Save(context.Background(), alice, draftstore.SaveInput{Tenant: "acme", SOPID: "SOP42"})
	require.NoError(t, err)

	policy := entity.SizePolicy{MaxFileSizeBytes: 1024}
	sf, err := stager.Upload(context.Background(), alice, policy, filestager.UploadInput{
		Tenant: "acme", SOPID: "SOP42", DraftID: draft.DraftID, FieldID: "scan",
		Stream: strings.NewReader("hello"), OriginalName: "scan.pdf", SizeHint: 5, MimeType: "application/pdf",
	})
	require.NoError(t, err)
	assert.Len(t, sf.TempID, 8)

	got, err := drafts.Get(context.Background(), alice, "acme", "SOP42", draft.DraftID)
	require.NoError(t, err)
	require.Len(t, got.StagedFiles, 1)
	assert.Equal(t, sf.TempID, got.StagedFiles[0].TempID)
}

func TestDeleteStagedFile(t *testing.T) {
	storage := testhelper.NewMemStorage()
	drafts := draftstore.New(storage)
	stager := filestager.New(storage, drafts)
	alice := &entity.User{ID: "alice"}

	draft, err := drafts.Save(context.Background(), alice, draftstore.SaveInput{Tenant: "acme", SOPID: "SOP42"})
	require.NoError(t, err)

	policy := entity.SizePolicy{MaxFileSizeBytes: 1024}
	sf, err := stager.Upload(context.Background(), alice, policy, filestager.UploadInput{
		Tenant: "acme", SOPID: "SOP42", DraftID: draft.DraftID, FieldID: "scan",
		Stream: strings.NewReader("hello"), OriginalName: "scan.pdf", SizeHint: 5, MimeType: "application/pdf",
	})
	require.NoError(t, err)

	require.NoError(t, stager.Delete(context.Background(), alice, "acme", "SOP42", draft.DraftID, sf.TempID))

	got, err := drafts.Get(context.Background(), alice, "acme", "SOP42", draft.DraftID)
	require.NoError(t, err)
	assert.Empty(t, got.StagedFiles)
}
