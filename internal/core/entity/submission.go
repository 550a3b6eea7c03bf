package entity

import (
	"encoding/json"
	"time"
)

// Provenance records who/what produced a Submission, carried in the
// immutable body itself so audit information survives independent of any
// external log retention policy.
type Provenance struct {
	SourceDraftID  string    `json:"sourceDraftId,omitempty"`
	SessionID      string    `json:"sessionId"`
	SubmissionTime time.Time `json:"submissionTime"`
	Actor          string    `json:"actor"`
}

// Attachment is one file moved from draft staging into a Submission's
// attachments area. Filename is preserved exactly from staging so the
// temp_id and original_name keep the audit linkage described in §3.
type Attachment struct {
	TempID   string `json:"tempId"`
	FieldID  string `json:"fieldId"`
	Filename string `json:"filename"`
}

// Submission is immutable once its body is written by the Submission
// Engine. The core never calls put or delete on a submission path again.
type Submission struct {
	ELNUUID                  string          `json:"elnUuid"`
	Tenant                   string          `json:"tenant"`
	SOPID                    string          `json:"sopId"`
	SOPVersion               int             `json:"sopVersion"`
	Filename                 string          `json:"filename"`
	SubmittedAt              time.Time       `json:"submittedAt"`
	SubmitterID              string          `json:"submitterId"`
	FormData                 map[string]any  `json:"formData"`
	FieldDefinitionsSnapshot json.RawMessage `json:"fieldDefinitionsSnapshot,omitempty"`
	SOPMetadataSnapshot      json.RawMessage `json:"sopMetadataSnapshot,omitempty"`
	Attachments              []Attachment    `json:"attachments"`
	Provenance               Provenance      `json:"provenance"`
	ContentHash              string          `json:"contentHash"`
}
