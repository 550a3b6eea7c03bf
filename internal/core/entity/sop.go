package entity

// FieldType enumerates the primitive types an SOP field can declare.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeDate    FieldType = "date"
)

// NodeKind distinguishes the two kinds of schema element the SOP Loader
// produces: fields and containers. A filename component is not a separate
// kind; it is a field whose FilenameOrder is set.
type NodeKind string

const (
	NodeKindField     NodeKind = "field"
	NodeKindContainer NodeKind = "container"
)

// Node is one element of an SOP's parsed structure, stored in a flat arena
// and referenced by integer index rather than by pointer. This is what
// makes the source schema's cyclic parents/children references safe to
// hold: a cycle among indices costs nothing, and traversal is iterative.
type Node struct {
	Index int
	Kind  NodeKind
	ID    string

	// Field-only attributes; zero-valued for containers.
	FieldType  FieldType
	Required   bool
	Validation string // expr-lang expression source, evaluated against form_data[ID]

	// FilenameOrder is non-nil when this field is a filename component;
	// its value is the field's position in filename_component_order.
	FilenameOrder *int

	ParentIdx []int
	ChildIdx  []int
}

// SOPDescriptor is the typed, cached parse of a raw SOP document. It is the
// only thing the Submission Engine and Draft Store consult — they never
// traverse raw maps.
type SOPDescriptor struct {
	SOPID   string
	Version int
	Nodes   []Node

	indexByID              map[string]int
	filenameComponentOrder []string // field ids, positional
}

// NewSOPDescriptor builds a descriptor from parsed nodes. filenameOrder is
// the field ids, in declared order, that participate in filenames.
func NewSOPDescriptor(sopID string, version int, nodes []Node, filenameOrder []string) *SOPDescriptor {
	idx := make(map[string]int, len(nodes))
	for _, n := range nodes {
		idx[n.ID] = n.Index
	}
	return &SOPDescriptor{
		SOPID:                  sopID,
		Version:                version,
		Nodes:                  nodes,
		indexByID:              idx,
		filenameComponentOrder: filenameOrder,
	}
}

// FilenameComponentOrder returns the ordered list of field ids whose values
// participate in filenames. Reducing this list after an SOP is in use
// breaks decode for prior filenames (§4.5); adding is safe.
func (d *SOPDescriptor) FilenameComponentOrder() []string {
	return d.filenameComponentOrder
}

// FieldByID looks up a field node by its declared id.
func (d *SOPDescriptor) FieldByID(id string) (*Node, bool) {
	idx, ok := d.indexByID[id]
	if !ok {
		return nil, false
	}
	n := d.Nodes[idx]
	if n.Kind != NodeKindField {
		return nil, false
	}
	return &d.Nodes[idx], true
}

// Walk visits every node reachable from the root containers using an
// explicit queue, so cyclic parent/child index references (legal in the
// source schema format) can never cause infinite recursion or a stack
// overflow. visit is called at most once per node index.
func (d *SOPDescriptor) Walk(visit func(*Node)) {
	seen := make([]bool, len(d.Nodes))
	queue := make([]int, 0, len(d.Nodes))
	for i := range d.Nodes {
		if len(d.Nodes[i].ParentIdx) == 0 {
			queue = append(queue, i)
		}
	}
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		if seen[i] {
			continue
		}
		seen[i] = true
		visit(&d.Nodes[i])
		for _, c := range d.Nodes[i].ChildIdx {
			if !seen[c] {
				queue = append(queue, c)
			}
		}
	}
}
