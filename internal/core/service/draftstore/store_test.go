package draftstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elnvault/eln-core/internal/core/entity"
	"github.com/elnvault/eln-core/internal/core/service/draftstore"
	"github.com/elnvault/eln-core/internal/testing/testhelper"
)

func TestSaveGetRoundTrip(t *testing.T) {
	storage := testhelper.NewMemStorage()
	store := draftstore.New(storage)
	alice := &entity.User{ID: "alice"}

	draft, err := store.Save(context.Background(), alice, draftstore.SaveInput{
		Tenant: "acme", SOPID: "SOP42", SessionID: "s1",
		FormData: map[string]any{"project_id": "P7"},
		Variables: []string{"P7", "S9"}, FieldIDs: []string{"project_id", "sample_id"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, draft.DraftID)

	got, err := store.Get(context.Background(), alice, "acme", "SOP42", draft.DraftID)
	require.NoError(t, err)
	assert.Equal(t, draft.DraftID, got.DraftID)
	assert.Equal(t, "alice", got.OwnerID)
}

func TestNonOwnerSaveFails(t *testing.T) {
	storage := testhelper.NewMemStorage()
	store := draftstore.New(storage)
	alice := &entity.User{ID: "alice"}
	bob := &entity.User{ID: "bob"}

	draft, err := store.Save(context.Background(), alice, draftstore.SaveInput{
		Tenant: "acme", SOPID: "SOP42", Variables: []string{"P7"}, FieldIDs: []string{"project_id"},
	})
	require.NoError(t, err)

	_, err = store.Save(context.Background(), bob, draftstore.SaveInput{
		Tenant: "acme", SOPID: "SOP42", DraftID: draft.DraftID,
		Variables: []string{"P8"}, FieldIDs: []string{"project_id"},
	})
	require.Error(t, err)
	assert.Equal(t, entity.KindForbidden, entity.KindOf(err))
}

func TestListScopedToOwner(t *testing.T) {
	storage := testhelper.NewMemStorage()
	store := draftstore.New(storage)
	alice := &entity.User{ID: "alice"}
	bob := &entity.User{ID: "bob"}

	_, err := store.Save(context.Background(), alice, draftstore.SaveInput{Tenant: "acme", SOPID: "SOP42"})
	require.NoError(t, err)
	_, err = store.Save(context.Background(), bob, draftstore.SaveInput{Tenant: "acme", SOPID: "SOP42"})
	require.NoError(t, err)

	drafts, err := store.List(context.Background(), alice, "acme", "SOP42")
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "alice", drafts[0].OwnerID)
}

func TestDeleteRemovesNotFoundAfter(t *testing.T) {
	storage := testhelper.NewMemStorage()
	store := draftstore.New(storage)
	alice := &entity.User{ID: "alice"}

	draft, err := store.Save(context.Background(), alice, draftstore.SaveInput{Tenant: "acme", SOPID: "SOP42"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), alice, "acme", "SOP42", draft.DraftID))

	_, err = store.Get(context.Background(), alice, "acme", "SOP42", draft.DraftID)
	require.Error(t, err)
	assert.Equal(t, entity.KindNotFound, entity.KindOf(err))
}
