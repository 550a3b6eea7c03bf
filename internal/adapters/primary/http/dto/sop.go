package dto

import (
	"github.com/elnvault/eln-core/internal/core/entity"
	"github.com/elnvault/eln-core/internal/core/service/sop"
)

// SOPFieldResponse is the wire shape of one field node.
type SOPFieldResponse struct {
	ID         string `json:"id"`
	FieldType  string `json:"fieldType,omitempty"`
	Required   bool   `json:"required"`
	Validation string `json:"validation,omitempty"`
}

// SOPResponse is the wire shape of a loaded SOP descriptor. The arena's
// internal index/pointer representation never leaves the core; this is a
// flat, client-friendly projection of it.
type SOPResponse struct {
	SOPID                  string             `json:"sopId"`
	Version                int                `json:"version"`
	FilenameComponentOrder []string           `json:"filenameComponentOrder"`
	Fields                 []SOPFieldResponse `json:"fields"`
}

// NewSOPResponse projects desc into its wire shape.
func NewSOPResponse(desc *entity.SOPDescriptor) SOPResponse {
	resp := SOPResponse{
		SOPID:                  desc.SOPID,
		Version:                desc.Version,
		FilenameComponentOrder: desc.FilenameComponentOrder(),
	}
	desc.Walk(func(n *entity.Node) {
		if n.Kind != entity.NodeKindField {
			return
		}
		resp.Fields = append(resp.Fields, SOPFieldResponse{
			ID:         n.ID,
			FieldType:  string(n.FieldType),
			Required:   n.Required,
			Validation: n.Validation,
		})
	})
	return resp
}

// SOPMetadataResponse is the wire shape of one entry in a SOP listing.
type SOPMetadataResponse struct {
	SOPID   string `json:"sopId"`
	Version int    `json:"version"`
}

// SOPListResponse is the wire shape of GET /api/v1/sops/list.
type SOPListResponse struct {
	SOPs  []SOPMetadataResponse `json:"sops"`
	Total int                   `json:"total"`
}

// NewSOPListResponse projects a slice of sop.Metadata into its wire shape.
func NewSOPListResponse(items []sop.Metadata) SOPListResponse {
	resp := SOPListResponse{SOPs: make([]SOPMetadataResponse, 0, len(items)), Total: len(items)}
	for _, m := range items {
		resp.SOPs = append(resp.SOPs, SOPMetadataResponse{SOPID: m.SOPID, Version: m.Version})
	}
	return resp
}
