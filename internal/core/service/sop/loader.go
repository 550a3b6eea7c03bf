// Package sop parses persisted SOP descriptors into the arena-indexed
// entity.SOPDescriptor and caches the result per (tenant, sop_id, version),
// per Design Notes §9: "parse SOP documents into a typed SOPDescriptor
// value on load... never traverse raw maps in hot paths."
package sop

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/elnvault/eln-core/internal/core/entity"
	"github.com/elnvault/eln-core/internal/core/port"
)

// rawDocument mirrors the on-disk YAML shape: a flat node list with
// string-keyed parent/child references, matching the source format's
// cyclic `parents: [id]` / `children: [id]` schema (Design Notes §9).
type rawDocument struct {
	SOPID                 string        `yaml:"sop_id"`
	Version               int           `yaml:"version"`
	FilenameComponentOrder []string     `yaml:"filename_component_order"`
	Nodes                 []rawNode     `yaml:"nodes"`
}

type rawNode struct {
	ID         string   `yaml:"id"`
	Kind       string   `yaml:"kind"` // "field" | "container"
	FieldType  string   `yaml:"field_type"`
	Required   bool     `yaml:"required"`
	Validation string   `yaml:"validation"`
	Parents    []string `yaml:"parents"`
	Children   []string `yaml:"children"`
}

type cacheKey struct {
	tenant  string
	sopID   string
	version int
}

// Loader reads SOP documents through the Storage Adapter and caches their
// parsed descriptors. One Loader is shared process-wide.
type Loader struct {
	storage port.StorageAdapter
	cache   sync.Map // cacheKey -> *entity.SOPDescriptor
}

// New builds a Loader backed by storage.
func New(storage port.StorageAdapter) *Loader {
	return &Loader{storage: storage}
}

// Load returns the parsed descriptor for (tenant, sopID), at whatever
// version is currently persisted, from cache when available.
func (l *Loader) Load(ctx context.Context, tenant, sopID string) (*entity.SOPDescriptor, error) {
	// version is resolved from the document itself; a first pass loads the
	// raw bytes unconditionally in order to read it, then the cache is
	// keyed on the version found.
	key := fmt.Sprintf("%s/forms/sops/%s.yaml", tenant, sopID)
	rc, err := l.storage.Get(ctx, key)
	if err != nil {
		if entity.KindOf(err) == entity.KindNotFound {
			return nil, entity.Wrap(entity.KindNotFound, "sop not found", err)
		}
		return nil, err
	}
	defer rc.Close()

	raw, err := parse(rc)
	if err != nil {
		return nil, err
	}

	ck := cacheKey{tenant: tenant, sopID: sopID, version: raw.Version}
	if cached, ok := l.cache.Load(ck); ok {
		return cached.(*entity.SOPDescriptor), nil
	}

	desc, err := buildDescriptor(raw)
	if err != nil {
		return nil, err
	}
	l.cache.Store(ck, desc)
	return desc, nil
}

// Metadata is the lightweight summary GET /api/v1/sops/list returns for
// one SOP — enough to let a client pick a sop_id without loading its full
// field schema.
type Metadata struct {
	SOPID   string
	Version int
}

// ListMetadata returns the metadata of every SOP document persisted for
// tenant, sorted by sop_id. It decodes each document but keeps only its
// metadata, building no arena-indexed descriptor since the listing never
// needs field structure, and deliberately bypasses the descriptor cache.
func (l *Loader) ListMetadata(ctx context.Context, tenant string) ([]Metadata, error) {
	prefix := fmt.Sprintf("%s/forms/sops/", tenant)
	objs, err := l.storage.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	out := make([]Metadata, 0, len(objs))
	for _, obj := range objs {
		if !strings.HasSuffix(obj.Key, ".yaml") {
			continue
		}
		rc, err := l.storage.Get(ctx, obj.Key)
		if err != nil {
			continue
		}
		raw, err := parse(rc)
		rc.Close()
		if err != nil {
			continue
		}
		out = append(out, Metadata{SOPID: raw.SOPID, Version: raw.Version})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SOPID < out[j].SOPID })
	return out, nil
}

func parse(r io.Reader) (*rawDocument, error) {
	var doc rawDocument
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, entity.Wrap(entity.KindInvalid, "malformed sop document", err)
	}
	return &doc, nil
}

func buildDescriptor(raw *rawDocument) (*entity.SOPDescriptor, error) {
	nodes := make([]entity.Node, len(raw.Nodes))
	indexByID := make(map[string]int, len(raw.Nodes))
	for i, rn := range raw.Nodes {
		indexByID[rn.ID] = i
	}

	for i, rn := range raw.Nodes {
		n := entity.Node{
			Index:      i,
			ID:         rn.ID,
			Validation: rn.Validation,
			Required:   rn.Required,
		}
		switch rn.Kind {
		case "field":
			n.Kind = entity.NodeKindField
			n.FieldType = entity.FieldType(rn.FieldType)
		case "container":
			n.Kind = entity.NodeKindContainer
		default:
			return nil, entity.NewError(entity.KindInvalid, fmt.Sprintf("sop node %q: unknown kind %q", rn.ID, rn.Kind))
		}
		for _, p := range rn.Parents {
			if pi, ok := indexByID[p]; ok {
				n.ParentIdx = append(n.ParentIdx, pi)
			}
		}
		for _, c := range rn.Children {
			if ci, ok := indexByID[c]; ok {
				n.ChildIdx = append(n.ChildIdx, ci)
			}
		}
		nodes[i] = n
	}

	for pos, fieldID := range raw.FilenameComponentOrder {
		idx, ok := indexByID[fieldID]
		if !ok {
			return nil, entity.NewError(entity.KindInvalid,
				fmt.Sprintf("filename_component_order references unknown field %q", fieldID))
		}
		if nodes[idx].Kind != entity.NodeKindField {
			return nil, entity.NewError(entity.KindInvalid,
				fmt.Sprintf("filename_component_order entry %q is not a field", fieldID))
		}
		order := pos
		nodes[idx].FilenameOrder = &order
	}

	return entity.NewSOPDescriptor(raw.SOPID, raw.Version, nodes, raw.FilenameComponentOrder), nil
}
