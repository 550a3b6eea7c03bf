package draftstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/elnvault/eln-core/internal/core/entity"
	"github.com/elnvault/eln-core/internal/core/service/filenamecodec"
)

// SweepExpired deletes every draft under tenant whose timestamp component
// is older than retentionDays, along with its staged attachments (spec
// §4.6: "drafts older than the tenant's configured retention are deleted
// by a background sweep, attachments included"). It is safe to call
// concurrently with ordinary draft traffic: a draft saved mid-sweep gets a
// fresh UpdatedAt but keeps its original CreatedAt/timestamp, so a sweep
// racing a save can still delete a draft the caller just touched if its
// original creation time qualifies — the retention window is measured from
// creation, not last write, per the same spec section.
func (s *Store) SweepExpired(ctx context.Context, tenant string, retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-time.Duration(retentionDays) * 24 * time.Hour)

	objs, err := s.storage.List(ctx, tenant+"/drafts/")
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, obj := range objs {
		if strings.Contains(obj.Key, "/attachments/") {
			continue
		}
		name := baseName(obj.Key)
		ts, err := filenamecodec.PeekDraftTimestamp(name)
		if err != nil {
			continue
		}
		if ts.After(cutoff) {
			continue
		}

		if err := s.sweepOne(ctx, obj.Key); err != nil {
			slog.ErrorContext(ctx, "ttl sweep failed to delete draft",
				slog.String("key", obj.Key), slog.String("error", err.Error()))
			continue
		}
		swept++
	}
	return swept, nil
}

func (s *Store) sweepOne(ctx context.Context, key string) error {
	rc, err := s.storage.Get(ctx, key)
	if err != nil {
		if entity.KindOf(err) == entity.KindNotFound {
			return nil
		}
		return err
	}
	var d entity.Draft
	decodeErr := json.NewDecoder(rc).Decode(&d)
	rc.Close()
	if decodeErr != nil {
		return entity.Wrap(entity.KindInvalid, "decoding draft body for sweep", decodeErr)
	}

	for _, sf := range d.StagedFiles {
		sfKey := fmt.Sprintf("%s/drafts/%s/attachments/%s", d.Tenant, d.SOPID,
			filenamecodec.EncodeStagedFilename(d.OwnerID, sf.FieldID, sf.TempID, sf.OriginalName))
		_ = s.storage.Delete(ctx, sfKey)
	}
	return s.storage.Delete(ctx, key)
}
