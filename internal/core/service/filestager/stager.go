// Package filestager implements the File Stager (spec §4.7): receives
// uploads into a draft-scoped staging area, assigns opaque temp IDs, and
// enforces size/type policy: the extension and declared size are checked
// before streaming, and the per-file size cap again while the body is
// written, removing an object that turns out to exceed it.
package filestager

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/elnvault/eln-core/internal/core/entity"
	"github.com/elnvault/eln-core/internal/core/port"
	"github.com/elnvault/eln-core/internal/core/service/draftstore"
	"github.com/elnvault/eln-core/internal/core/service/filenamecodec"
)

// tempIDAlphabet excludes the filename delimiter and visually ambiguous
// characters (0/O, 1/I/l) so temp ids are safe both as filename components
// and when read aloud during support tickets.
const tempIDAlphabet = "23456789abcdefghjkmnpqrstuvwxyz"

const tempIDLength = 8

// Stager implements upload/delete of staged files.
type Stager struct {
	storage porter
	drafts  *draftstore.Store
}

// porter is the subset of port.StorageAdapter the stager needs; declared
// locally so tests can supply a narrower fake.
type porter interface {
	Put(ctx context.Context, key string, data io.Reader, size int64, contentType string, mustNotExist bool) error
	Delete(ctx context.Context, key string) error
}

var _ porter = port.StorageAdapter(nil)

// New builds a Stager.
func New(storage port.StorageAdapter, drafts *draftstore.Store) *Stager {
	return &Stager{storage: storage, drafts: drafts}
}

// UploadInput describes one staged upload.
type UploadInput struct {
	Tenant       string
	SOPID        string
	DraftID      string
	FieldID      string
	Stream       io.Reader
	OriginalName string
	SizeHint     int64
	MimeType     string
}

// Upload stages a file under draftID, enforcing policy before streaming
// the body to storage. The draft's owner must match user (checked via the
// Draft Store, so a forged draft_id can't be used to write into another
// user's staging area).
func (s *Stager) Upload(ctx context.Context, user *entity.User, policy entity.SizePolicy, in UploadInput) (*entity.StagedFile, error) {
	draft, err := s.drafts.Get(ctx, user, in.Tenant, in.SOPID, in.DraftID)
	if err != nil {
		return nil, err
	}

	ext := extOf(in.OriginalName)
	if !policy.Allows(ext) {
		return nil, entity.NewError(entity.KindForbiddenType, fmt.Sprintf("extension %q not allowed", ext))
	}
	if policy.MaxFileSizeBytes > 0 && in.SizeHint > policy.MaxFileSizeBytes {
		return nil, entity.NewError(entity.KindTooLarge, "file exceeds per-file size limit")
	}

	tempID, err := newTempID()
	if err != nil {
		return nil, entity.Wrap(entity.KindIO, "generating temp id", err)
	}

	filename := filenamecodec.EncodeStagedFilename(draft.OwnerID, in.FieldID, tempID, in.OriginalName)
	key := fmt.Sprintf("%s/drafts/%s/attachments/%s", in.Tenant, in.SOPID, filename)

	limited := &limitedReader{r: in.Stream, limit: policy.MaxFileSizeBytes, ext: ext}
	if err := s.storage.Put(ctx, key, limited, in.SizeHint, in.MimeType, false); err != nil {
		return nil, err
	}
	if limited.exceeded {
		_ = s.storage.Delete(ctx, key)
		return nil, entity.NewError(entity.KindTooLarge, "file exceeds per-file size limit")
	}

	sf := entity.StagedFile{
		TempID:       tempID,
		DraftID:      in.DraftID,
		FieldID:      in.FieldID,
		OriginalName: in.OriginalName,
		MimeType:     in.MimeType,
		SizeBytes:    limited.n,
		UploadedAt:   time.Now().UTC(),
	}
	if _, err := s.drafts.AppendStagedFile(ctx, in.Tenant, in.SOPID, in.DraftID, sf); err != nil {
		_ = s.storage.Delete(ctx, key)
		return nil, err
	}
	return &sf, nil
}

// Delete removes a staged file before submission.
func (s *Stager) Delete(ctx context.Context, user *entity.User, tenant, sopID, draftID, tempID string) error {
	draft, err := s.drafts.Get(ctx, user, tenant, sopID, draftID)
	if err != nil {
		return err
	}

	var target *entity.StagedFile
	for i := range draft.StagedFiles {
		if draft.StagedFiles[i].TempID == tempID {
			target = &draft.StagedFiles[i]
			break
		}
	}
	if target == nil {
		return entity.Wrap(entity.KindNotFound, "staged file not found", entity.ErrStagedFileNotFound)
	}

	key := fmt.Sprintf("%s/drafts/%s/attachments/%s", tenant, sopID,
		filenamecodec.EncodeStagedFilename(draft.OwnerID, target.FieldID, target.TempID, target.OriginalName))
	if err := s.storage.Delete(ctx, key); err != nil {
		return err
	}
	_, err = s.drafts.RemoveStagedFile(ctx, tenant, sopID, draftID, tempID)
	return err
}

func newTempID() (string, error) {
	buf := make([]byte, tempIDLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.Grow(tempIDLength)
	for _, b := range buf {
		sb.WriteByte(tempIDAlphabet[int(b)%len(tempIDAlphabet)])
	}
	return sb.String(), nil
}

func extOf(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return strings.ToLower(name[i+1:])
	}
	return ""
}

// limitedReader enforces the per-file size cap mid-stream rather than
// only checking the declared size hint, so a lying client can't smuggle
// an oversized body. Only the per-file cap is enforced; the stager does
// not check SizePolicy.MaxRequestAggBytes.
type limitedReader struct {
	r        io.Reader
	limit    int64
	n        int64
	exceeded bool
	ext      string
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.exceeded {
		return 0, io.EOF
	}
	n, err := l.r.Read(p)
	l.n += int64(n)
	if l.limit > 0 && l.n > l.limit {
		l.exceeded = true
		return n, io.EOF
	}
	return n, err
}
