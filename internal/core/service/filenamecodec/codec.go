// Package filenamecodec implements the wire format described in spec §4.5:
// submission, draft and staged-attachment filenames are the only persisted
// record of a field's filename-relevant value, so encode/decode must form
// a lossless round trip for every valid input.
package filenamecodec

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/elnvault/eln-core/internal/core/entity"
)

// Delimiter is the single reserved character. No component may contain it
// once Scrub has run.
const Delimiter = "-"

const (
	draftPrefix     = "draft_"
	timestampLayout = "20060102T150405Z"
)

// Scrub deterministically removes the delimiter from s: the string is
// first normalized to NFC (so visually-identical byte sequences collapse
// before substitution), then every delimiter rune is replaced with an
// underscore. Applied to user ids by the Auth Validator and, as
// defense in depth, to every component here.
func Scrub(s string) string {
	return strings.ReplaceAll(norm.NFC.String(s), Delimiter, "_")
}

// Decoded is the structured tuple a filename decodes to.
type Decoded struct {
	Timestamp   time.Time
	RawID       string // submitter_id or owner_id
	Variables   []string
	Tail        string // eln_uuid or draft_id
	Ext         string
	IsDraft     bool
}

// EncodeSubmission builds `{timestamp}-{submitter_id}-{v1}-...-{vN}-{eln_uuid}.{ext}`.
// All dynamic components are scrubbed so the result is always well-formed;
// Encode never fails.
func EncodeSubmission(ts time.Time, submitterID string, variables []string, elnUUID, ext string) string {
	return encode(ts, submitterID, variables, elnUUID, ext, false)
}

// EncodeDraft builds `draft_{timestamp}-{owner_id}-{v1}-...-{vN}-{draft_id}.{ext}`.
func EncodeDraft(ts time.Time, ownerID string, variables []string, draftID, ext string) string {
	return encode(ts, ownerID, variables, draftID, ext, true)
}

func encode(ts time.Time, id string, variables []string, tail, ext string, isDraft bool) string {
	parts := make([]string, 0, len(variables)+3)
	stamp := ts.UTC().Format(timestampLayout)
	if isDraft {
		stamp = draftPrefix + stamp
	}
	parts = append(parts, stamp, Scrub(id))
	for _, v := range variables {
		parts = append(parts, Scrub(v))
	}
	parts = append(parts, Scrub(tail))
	return strings.Join(parts, Delimiter) + "." + ext
}

// DecodeSubmission parses a submission filename. numComponents must equal
// the length of the SOP's filename_component_order at the time the
// filename was written — the component count is not recoverable from the
// filename alone (spec §4.5), so the caller (which holds the current
// SOPDescriptor) supplies it.
func DecodeSubmission(filename string, numComponents int) (*Decoded, error) {
	return decode(filename, numComponents, false)
}

// DecodeDraft parses a draft filename.
func DecodeDraft(filename string, numComponents int) (*Decoded, error) {
	return decode(filename, numComponents, true)
}

// PeekDraftTimestamp extracts just the timestamp component of a draft
// filename, without needing the SOP's current filename_component_order —
// unlike DecodeDraft, which must know the variable count to split the
// remaining components correctly. The TTL sweep only ever needs the
// timestamp, so it uses this instead of decoding the full tuple.
func PeekDraftTimestamp(filename string) (time.Time, error) {
	name := filename
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[:idx]
	}
	if !strings.HasPrefix(name, draftPrefix) {
		return time.Time{}, entity.NewError(entity.KindInvalid, "draft filename missing draft_ prefix")
	}
	name = strings.TrimPrefix(name, draftPrefix)

	idx := strings.Index(name, Delimiter)
	if idx < 0 {
		return time.Time{}, entity.NewError(entity.KindInvalid, "malformed draft filename")
	}
	ts, err := time.Parse(timestampLayout, name[:idx])
	if err != nil {
		return time.Time{}, entity.Wrap(entity.KindInvalid, "malformed filename timestamp", err)
	}
	return ts, nil
}

func decode(filename string, numComponents int, isDraft bool) (*Decoded, error) {
	name := filename
	ext := ""
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		ext = name[idx+1:]
		name = name[:idx]
	}
	if isDraft {
		if !strings.HasPrefix(name, draftPrefix) {
			return nil, entity.NewError(entity.KindInvalid, "draft filename missing draft_ prefix")
		}
		name = strings.TrimPrefix(name, draftPrefix)
	}

	parts := strings.Split(name, Delimiter)
	// fixed slots: timestamp, id, tail; everything else is variables.
	want := numComponents + 3
	if len(parts) != want {
		return nil, entity.NewError(entity.KindInvalid,
			fmt.Sprintf("malformed filename: expected %d delimited parts, got %d", want, len(parts)))
	}

	ts, err := time.Parse(timestampLayout, parts[0])
	if err != nil {
		return nil, entity.Wrap(entity.KindInvalid, "malformed filename timestamp", err)
	}

	variables := make([]string, numComponents)
	copy(variables, parts[2:2+numComponents])

	return &Decoded{
		Timestamp: ts,
		RawID:     parts[1],
		Variables: variables,
		Tail:      parts[len(parts)-1],
		Ext:       ext,
		IsDraft:   isDraft,
	}, nil
}

// EncodeStagedFilename builds `{owner_id}-{field_id}-{temp_id}-{original_name}`.
func EncodeStagedFilename(ownerID, fieldID, tempID, originalName string) string {
	return strings.Join([]string{Scrub(ownerID), Scrub(fieldID), Scrub(tempID), Scrub(originalName)}, Delimiter)
}

// DecodeStagedFilename reverses EncodeStagedFilename. original_name is
// taken as everything after the third delimiter since it may contain dots
// (extension) but — because it was scrubbed on encode — never the
// delimiter itself.
func DecodeStagedFilename(filename string) (ownerID, fieldID, tempID, originalName string, err error) {
	parts := strings.SplitN(filename, Delimiter, 4)
	if len(parts) != 4 {
		return "", "", "", "", entity.NewError(entity.KindInvalid, "malformed staged filename")
	}
	return parts[0], parts[1], parts[2], parts[3], nil
}
