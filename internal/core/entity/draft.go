package entity

import "time"

// Draft is a mutable, owner-scoped in-progress ELN. It exists until it is
// explicitly deleted or swept by the TTL job; promoting it to a Submission
// leaves the draft in place.
type Draft struct {
	DraftID              string         `json:"draftId"`
	Tenant                string         `json:"tenant"`
	SOPID                 string         `json:"sopId"`
	SessionID             string         `json:"sessionId"`
	OwnerID               string         `json:"ownerId"`
	CreatedAt             time.Time      `json:"createdAt"`
	UpdatedAt             time.Time      `json:"updatedAt"`
	CompletionPercentage  int            `json:"completionPercentage"`
	Title                 string         `json:"title"`
	FormData              map[string]any `json:"formData"`
	FilenameVariables     []string       `json:"filenameVariables"`
	FieldIDs              []string       `json:"fieldIds"`
	StagedFiles           []StagedFile   `json:"stagedFiles"`
	SizeBytes             int64          `json:"sizeBytes"`
}

// StagedFile is a mutable, draft-scoped uploaded attachment awaiting
// submission. Its stored name is computed by the Filename Codec and it is
// moved (never copied) into a Submission on promotion.
type StagedFile struct {
	TempID       string    `json:"tempId"`
	DraftID      string    `json:"draftId"`
	FieldID      string    `json:"fieldId"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	SizeBytes    int64     `json:"sizeBytes"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// IsOwnedBy reports whether the given user id is the draft's owner. Admin
// bypass is handled one layer up by the Permission Engine / caller, not
// here: Draft itself knows nothing about permissions.
func (d *Draft) IsOwnedBy(userID string) bool {
	return d.OwnerID == userID
}
