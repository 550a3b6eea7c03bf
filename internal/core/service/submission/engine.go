// Package submission implements the Submission Engine (spec §4.8): the
// only component allowed to write into the submissions namespace, and
// only ever via a conditional create followed by best-effort-with-retry
// attachment moves.
package submission

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/elnvault/eln-core/internal/core/entity"
	"github.com/elnvault/eln-core/internal/core/port"
	"github.com/elnvault/eln-core/internal/core/service/filenamecodec"
	"github.com/elnvault/eln-core/internal/core/service/permission"
	"github.com/elnvault/eln-core/internal/core/service/sop"
)

// Engine implements submit and the attach-to-eln retry path.
type Engine struct {
	storage port.StorageAdapter
	queue   port.MoveQueue
}

// New builds an Engine.
func New(storage port.StorageAdapter, queue port.MoveQueue) *Engine {
	return &Engine{storage: storage, queue: queue}
}

// Result is what a successful submit (possibly with pending attachments)
// returns. PendingAttachments is non-empty exactly when the response
// should carry the PartialFailure advisory described in spec §7.
type Result struct {
	Submission         *entity.Submission
	PendingAttachments []string // temp_ids still outstanding
}

// Submit runs the eight-step protocol of spec §4.8 against draft's current
// state. It never mutates or deletes the draft.
func (e *Engine) Submit(ctx context.Context, user *entity.User, desc *entity.SOPDescriptor, tenant string, draft *entity.Draft) (*Result, error) {
	if !permission.Check(user, "submit:"+desc.SOPID) && !permission.Check(user, "submit:*") {
		return nil, entity.NewError(entity.KindForbidden, "missing submit permission")
	}

	elnUUID := uuid.NewString()
	ts := time.Now().UTC()

	if err := sop.ValidateFormData(desc, draft.FormData); err != nil {
		return nil, err
	}
	variables := sop.Variables(desc, draft.FormData)

	filename := filenamecodec.EncodeSubmission(ts, draft.OwnerID, variables, elnUUID, "json")
	bodyKey := fmt.Sprintf("%s/submissions/%s/%s", tenant, desc.SOPID, filename)

	sub := &entity.Submission{
		ELNUUID:     elnUUID,
		Tenant:      tenant,
		SOPID:       desc.SOPID,
		SOPVersion:  desc.Version,
		Filename:    filename,
		SubmittedAt: ts,
		SubmitterID: draft.OwnerID,
		FormData:    draft.FormData,
		Attachments: attachmentsOf(draft),
		Provenance: entity.Provenance{
			SourceDraftID:  draft.DraftID,
			SessionID:      draft.SessionID,
			SubmissionTime: ts,
			Actor:          user.ID,
		},
		ContentHash: contentHash(draft.FormData),
	}

	body, err := json.Marshal(sub)
	if err != nil {
		return nil, entity.Wrap(entity.KindInvalid, "marshaling submission body", err)
	}

	if err := e.storage.Put(ctx, bodyKey, bytesReader(body), int64(len(body)), "application/json", true); err != nil {
		if entity.KindOf(err) == entity.KindConflict {
			return nil, entity.Wrap(entity.KindConflict, "submission filename collision, retry with a new id", err)
		}
		return nil, err
	}

	pending := e.moveAttachments(ctx, tenant, desc.SOPID, draft, sub.Attachments)
	if len(pending) > 0 {
		slog.WarnContext(ctx, "submission committed with pending attachment moves",
			slog.String("eln_uuid", elnUUID),
			slog.Int("pending_count", len(pending)),
		)
	}

	return &Result{Submission: sub, PendingAttachments: pending}, nil
}

// AttachToELN retries outstanding attachment moves for an already-committed
// submission. It is idempotent: attachments already present at the
// destination are treated as already-attached, not re-moved.
func (e *Engine) AttachToELN(ctx context.Context, tenant, sopID string, draft *entity.Draft, tempIDs []string) []string {
	wanted := make(map[string]bool, len(tempIDs))
	for _, id := range tempIDs {
		wanted[id] = true
	}
	var attachments []entity.Attachment
	for _, sf := range draft.StagedFiles {
		if wanted[sf.TempID] {
			attachments = append(attachments, entity.Attachment{
				TempID:   sf.TempID,
				FieldID:  sf.FieldID,
				Filename: filenamecodec.EncodeStagedFilename(draft.OwnerID, sf.FieldID, sf.TempID, sf.OriginalName),
			})
		}
	}
	return e.moveAttachments(ctx, tenant, sopID, draft, attachments)
}

// moveAttachments moves every attachment from draft staging into the
// submission's attachments area, queuing durable retries for failures and
// returning the temp ids that are still outstanding.
func (e *Engine) moveAttachments(ctx context.Context, tenant, sopID string, draft *entity.Draft, attachments []entity.Attachment) []string {
	var pending []string
	for _, a := range attachments {
		srcKey := fmt.Sprintf("%s/drafts/%s/attachments/%s", tenant, sopID, a.Filename)
		dstKey := fmt.Sprintf("%s/submissions/%s/attachments/%s", tenant, sopID, a.Filename)

		err := e.storage.Move(ctx, srcKey, dstKey, true)
		if err == nil {
			continue
		}
		if entity.KindOf(err) == entity.KindConflict {
			// destination exists with different bytes than the source once
			// had. Retrying the same move will never help, but the caller
			// still needs to know this attachment never arrived — surface
			// it as pending and let the worker cancel the job outright
			// instead of burning its retry budget (river/worker.go).
			slog.ErrorContext(ctx, "attachment move conflict, bytes differ at destination",
				slog.String("dst", dstKey))
		}

		pending = append(pending, a.TempID)
		if e.queue != nil {
			job := port.PendingMoveJob{
				Tenant: tenant, SOPID: sopID, SrcKey: srcKey, DstKey: dstKey,
				TempID: a.TempID, FieldID: a.FieldID,
			}
			if qerr := e.queue.EnqueueMove(ctx, job); qerr != nil {
				slog.ErrorContext(ctx, "failed to enqueue pending attachment move", slog.String("error", qerr.Error()))
			}
		}
	}
	return pending
}

func attachmentsOf(draft *entity.Draft) []entity.Attachment {
	out := make([]entity.Attachment, 0, len(draft.StagedFiles))
	for _, sf := range draft.StagedFiles {
		out = append(out, entity.Attachment{
			TempID:  sf.TempID,
			FieldID: sf.FieldID,
			Filename: filenamecodec.EncodeStagedFilename(draft.OwnerID, sf.FieldID, sf.TempID, sf.OriginalName),
		})
	}
	return out
}

// contentHash is SHA-256 over the canonical (map-key-sorted via
// encoding/json) encoding of form_data only — see SPEC_FULL.md §9 for why
// attachments are excluded.
func contentHash(formData map[string]any) string {
	b, _ := json.Marshal(formData)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func bytesReader(b []byte) io.Reader {
	return bytes.NewReader(b)
}
