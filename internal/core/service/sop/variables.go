package sop

import (
	"fmt"

	"github.com/expr-lang/expr"

	"github.com/elnvault/eln-core/internal/core/entity"
)

// Variables reads the SOP's filename-component fields positionally from
// form_data; a missing value becomes an empty string, preserving position
// (spec §4.8 step 3). Shared by the draft controller's Save (so a saved
// draft carries the same variables a later submission would encode) and
// the Submission Engine itself.
func Variables(desc *entity.SOPDescriptor, formData map[string]any) []string {
	order := desc.FilenameComponentOrder()
	out := make([]string, len(order))
	for i, fieldID := range order {
		v, ok := formData[fieldID]
		if !ok || v == nil {
			out[i] = ""
			continue
		}
		s, ok := v.(string)
		if !ok {
			s = fmt.Sprintf("%v", v)
		}
		out[i] = s
	}
	return out
}

// ValidateFormData runs every field's validation expression (expr-lang,
// evaluated against that single field's value) and reports the first
// failure. A field with no validation source always passes; a required
// field that's absent fails regardless of whether it declares validation.
func ValidateFormData(desc *entity.SOPDescriptor, formData map[string]any) error {
	var firstErr error
	desc.Walk(func(n *entity.Node) {
		if firstErr != nil || n.Kind != entity.NodeKindField {
			return
		}
		v, present := formData[n.ID]
		if n.Required && (!present || v == nil) {
			firstErr = entity.NewError(entity.KindInvalid, fmt.Sprintf("field %q is required", n.ID))
			return
		}
		if n.Validation == "" || !present {
			return
		}
		program, err := expr.Compile(n.Validation, expr.Env(map[string]any{"value": v}))
		if err != nil {
			firstErr = entity.Wrap(entity.KindInvalid, fmt.Sprintf("field %q: malformed validation expression", n.ID), err)
			return
		}
		result, err := expr.Run(program, map[string]any{"value": v})
		if err != nil {
			firstErr = entity.Wrap(entity.KindInvalid, fmt.Sprintf("field %q: validation expression error", n.ID), err)
			return
		}
		ok, isBool := result.(bool)
		if !isBool || !ok {
			firstErr = entity.NewError(entity.KindInvalid, fmt.Sprintf("field %q failed validation", n.ID))
		}
	})
	return firstErr
}
