package draftstore_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elnvault/eln-core/internal/core/entity"
	"github.com/elnvault/eln-core/internal/core/service/draftstore"
	"github.com/elnvault/eln-core/internal/core/service/filenamecodec"
	"github.com/elnvault/eln-core/internal/testing/testhelper"
)

func TestSweepExpiredRemovesOnlyOldDrafts(t *testing.T) {
	storage := testhelper.NewMemStorage()
	store := draftstore.New(storage)
	alice := &entity.User{ID: "alice"}
	ctx := context.Background()

	fresh, err := store.Save(ctx, alice, draftstore.SaveInput{Tenant: "acme", SOPID: "SOP1"})
	require.NoError(t, err)

	oldCreated := time.Now().UTC().Add(-45 * 24 * time.Hour)
	old := &entity.Draft{
		Tenant: "acme", SOPID: "SOP1", OwnerID: "alice",
		DraftID: "old-draft", CreatedAt: oldCreated, UpdatedAt: oldCreated,
	}
	body, err := json.Marshal(old)
	require.NoError(t, err)
	oldKey := "acme/drafts/SOP1/" + filenamecodec.EncodeDraft(oldCreated, "alice", nil, "old-draft", "json")
	require.NoError(t, storage.Put(ctx, oldKey, bytes.NewReader(body), int64(len(body)), "application/json", false))

	swept, err := store.SweepExpired(ctx, "acme", 30)
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	_, err = store.Get(ctx, alice, "acme", "SOP1", "old-draft")
	assert.Equal(t, entity.KindNotFound, entity.KindOf(err))

	got, err := store.Get(ctx, alice, "acme", "SOP1", fresh.DraftID)
	require.NoError(t, err)
	assert.Equal(t, fresh.DraftID, got.DraftID)
}

func TestSweepExpiredNoopWhenRetentionDisabled(t *testing.T) {
	storage := testhelper.NewMemStorage()
	store := draftstore.New(storage)

	swept, err := store.SweepExpired(context.Background(), "acme", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, swept)
}
