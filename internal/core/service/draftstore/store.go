// Package draftstore implements the Draft Store (spec §4.6): CRUD on
// mutable drafts keyed by (tenant, sop, draft-id), owner-scoped listing,
// and the deletion fan-out to a draft's staged attachments.
package draftstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/elnvault/eln-core/internal/core/entity"
	"github.com/elnvault/eln-core/internal/core/port"
	"github.com/elnvault/eln-core/internal/core/service/filenamecodec"
)

// Store implements draft persistence over a port.StorageAdapter. It holds
// no state of its own; every operation is a read-modify-write against the
// adapter, which is why concurrent saves to the same draft_id are
// last-writer-wins (spec §4.6, §5) — there is no revision token to race on.
type Store struct {
	storage port.StorageAdapter
}

// New builds a Store backed by storage.
func New(storage port.StorageAdapter) *Store {
	return &Store{storage: storage}
}

// SaveInput is the set of fields a save accepts (spec §4.6).
type SaveInput struct {
	Tenant       string
	SOPID        string
	SessionID    string
	FormData     map[string]any
	Completion   int
	Title        string
	Variables    []string
	FieldIDs     []string
	DraftID      string // empty mints a new draft
}

// Save creates or overwrites a draft. If DraftID is set, the existing
// draft's owner must match user (unless user is admin) or the save fails
// Forbidden.
func (s *Store) Save(ctx context.Context, user *entity.User, in SaveInput) (*entity.Draft, error) {
	if len(in.Variables) != len(in.FieldIDs) {
		return nil, entity.NewError(entity.KindInvalid, "filename_variables and field_ids must be parallel")
	}

	now := time.Now().UTC()
	draft := &entity.Draft{
		Tenant:               in.Tenant,
		SOPID:                in.SOPID,
		SessionID:            in.SessionID,
		OwnerID:              user.ID,
		UpdatedAt:            now,
		CompletionPercentage: in.Completion,
		Title:                in.Title,
		FormData:             in.FormData,
		FilenameVariables:    in.Variables,
		FieldIDs:             in.FieldIDs,
	}

	var existingKey string
	if in.DraftID == "" {
		draft.DraftID = uuid.NewString()
		draft.CreatedAt = now
	} else {
		existing, foundKey, err := s.find(ctx, in.Tenant, in.SOPID, in.DraftID)
		if err != nil {
			return nil, err
		}
		if !user.IsAdmin && !existing.IsOwnedBy(user.ID) {
			return nil, entity.Wrap(entity.KindForbidden, "not draft owner", entity.ErrNotOwner)
		}
		draft.DraftID = in.DraftID
		draft.CreatedAt = existing.CreatedAt
		draft.StagedFiles = existing.StagedFiles
		draft.SizeBytes = existing.SizeBytes
		existingKey = foundKey
	}

	body, err := json.Marshal(draft)
	if err != nil {
		return nil, entity.Wrap(entity.KindInvalid, "marshaling draft", err)
	}

	key := s.key(draft)
	if err := s.storage.Put(ctx, key, newReader(body), int64(len(body)), "application/json", false); err != nil {
		return nil, err
	}
	// FilenameVariables is recomputed from form_data on every save (spec
	// §4.6 overwrite semantics), so the encoded key can change even though
	// draft_id and created_at didn't. Clean up the stale object or it
	// lingers as an orphan find()/List() would otherwise also match.
	if existingKey != "" && existingKey != key {
		if err := s.storage.Delete(ctx, existingKey); err != nil {
			return nil, err
		}
	}
	return draft, nil
}

// Get returns a draft, enforcing owner scoping unless user is admin.
func (s *Store) Get(ctx context.Context, user *entity.User, tenant, sopID, draftID string) (*entity.Draft, error) {
	draft, _, err := s.find(ctx, tenant, sopID, draftID)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin && !draft.IsOwnedBy(user.ID) {
		return nil, entity.Wrap(entity.KindForbidden, "not draft owner", entity.ErrNotOwner)
	}
	return draft, nil
}

// List returns drafts owned by user (or every draft in the tenant, for an
// admin), optionally filtered to sopID. Ordering is updated_at descending,
// ties broken by draft_id ascending (spec §4.6).
func (s *Store) List(ctx context.Context, user *entity.User, tenant, sopID string) ([]*entity.Draft, error) {
	prefix := tenant + "/drafts/"
	if sopID != "" {
		prefix += sopID + "/"
	}

	objs, err := s.storage.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	var out []*entity.Draft
	for _, obj := range objs {
		if strings.Contains(obj.Key, "/attachments/") {
			continue
		}
		base := baseName(obj.Key)
		owner, ok := ownerFromFilename(base)
		if !ok {
			continue
		}
		if !user.IsAdmin && owner != user.ID {
			continue
		}
		rc, err := s.storage.Get(ctx, obj.Key)
		if err != nil {
			continue
		}
		var d entity.Draft
		if err := json.NewDecoder(rc).Decode(&d); err != nil {
			rc.Close()
			continue
		}
		rc.Close()
		out = append(out, &d)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].DraftID < out[j].DraftID
	})
	return out, nil
}

// Delete removes a draft body and every staged file it references.
func (s *Store) Delete(ctx context.Context, user *entity.User, tenant, sopID, draftID string) error {
	draft, key, err := s.find(ctx, tenant, sopID, draftID)
	if err != nil {
		return err
	}
	if !user.IsAdmin && !draft.IsOwnedBy(user.ID) {
		return entity.Wrap(entity.KindForbidden, "not draft owner", entity.ErrNotOwner)
	}

	for _, sf := range draft.StagedFiles {
		sfKey := fmt.Sprintf("%s/drafts/%s/attachments/%s", tenant, sopID,
			filenamecodec.EncodeStagedFilename(draft.OwnerID, sf.FieldID, sf.TempID, sf.OriginalName))
		_ = s.storage.Delete(ctx, sfKey)
	}
	return s.storage.Delete(ctx, key)
}

// find scans the sop's draft prefix for the object whose filename encodes
// draftID as its trailing component, then fetches and decodes its body.
func (s *Store) find(ctx context.Context, tenant, sopID, draftID string) (*entity.Draft, string, error) {
	prefix := fmt.Sprintf("%s/drafts/%s/", tenant, sopID)
	objs, err := s.storage.List(ctx, prefix)
	if err != nil {
		return nil, "", err
	}
	for _, obj := range objs {
		if strings.Contains(obj.Key, "/attachments/") {
			continue
		}
		if tailFromFilename(baseName(obj.Key)) != filenamecodec.Scrub(draftID) {
			continue
		}
		rc, err := s.storage.Get(ctx, obj.Key)
		if err != nil {
			return nil, "", err
		}
		defer rc.Close()
		var d entity.Draft
		if err := json.NewDecoder(rc).Decode(&d); err != nil {
			return nil, "", entity.Wrap(entity.KindInvalid, "decoding draft body", err)
		}
		return &d, obj.Key, nil
	}
	return nil, "", entity.Wrap(entity.KindNotFound, "draft not found", entity.ErrDraftNotFound)
}

// AppendStagedFile records a newly-staged file against a draft without
// touching its form data, used by the File Stager after it writes the
// object body.
func (s *Store) AppendStagedFile(ctx context.Context, tenant, sopID, draftID string, sf entity.StagedFile) (*entity.Draft, error) {
	draft, _, err := s.find(ctx, tenant, sopID, draftID)
	if err != nil {
		return nil, err
	}
	draft.StagedFiles = append(draft.StagedFiles, sf)
	draft.SizeBytes += sf.SizeBytes
	draft.UpdatedAt = time.Now().UTC()
	return draft, s.put(ctx, draft)
}

// RemoveStagedFile drops a staged file from a draft's record. It does not
// delete the underlying object; the caller removes that separately.
func (s *Store) RemoveStagedFile(ctx context.Context, tenant, sopID, draftID, tempID string) (*entity.Draft, error) {
	draft, _, err := s.find(ctx, tenant, sopID, draftID)
	if err != nil {
		return nil, err
	}
	kept := draft.StagedFiles[:0]
	for _, sf := range draft.StagedFiles {
		if sf.TempID == tempID {
			draft.SizeBytes -= sf.SizeBytes
			continue
		}
		kept = append(kept, sf)
	}
	draft.StagedFiles = kept
	draft.UpdatedAt = time.Now().UTC()
	return draft, s.put(ctx, draft)
}

func (s *Store) put(ctx context.Context, draft *entity.Draft) error {
	body, err := json.Marshal(draft)
	if err != nil {
		return entity.Wrap(entity.KindInvalid, "marshaling draft", err)
	}
	return s.storage.Put(ctx, s.key(draft), newReader(body), int64(len(body)), "application/json", false)
}

func (s *Store) key(d *entity.Draft) string {
	filename := filenamecodec.EncodeDraft(d.CreatedAt, d.OwnerID, d.FilenameVariables, d.DraftID, "json")
	return fmt.Sprintf("%s/drafts/%s/%s", d.Tenant, d.SOPID, filename)
}

func baseName(key string) string {
	if i := strings.LastIndex(key, "/"); i >= 0 {
		return key[i+1:]
	}
	return key
}

// ownerFromFilename extracts the second delimited token (owner_id) from a
// draft filename, without needing to know the variable count.
func ownerFromFilename(filename string) (string, bool) {
	name := strings.TrimSuffix(filename, ".json")
	name = strings.TrimPrefix(name, "draft_")
	parts := strings.Split(name, filenamecodec.Delimiter)
	if len(parts) < 3 {
		return "", false
	}
	return parts[1], true
}

// tailFromFilename extracts the last delimited token (draft_id).
func tailFromFilename(filename string) string {
	name := strings.TrimSuffix(filename, ".json")
	name = strings.TrimPrefix(name, "draft_")
	parts := strings.Split(name, filenamecodec.Delimiter)
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

func newReader(b []byte) io.Reader {
	return bytes.NewReader(b)
}
