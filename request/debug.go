package request

import (
	"fmt"

	"github.com/tailored-agentic-units/radadapter/radius"
)

// DebugInfo returns a snapshot of the request suitable for a diagnostic dump.
func (r *Request) DebugInfo() map[string]any {
	info := map[string]any{
		"id":           r.id,
		"config_items": attributeStrings(&r.configItems),
	}

	if code, ok := r.ReturnValue(); ok {
		info["return_value"] = code.String()
	} else {
		info["return_value"] = "unset"
	}

	packets := make([]any, 0, len(r.packets))
	for i, p := range r.packets {
		packets = append(packets, map[string]any{
			"index":      i,
			"code":       radius.CodeName(p.Code),
			"identifier": int(p.Identifier),
			"attributes": attributeStrings(&p.Attributes),
		})
	}
	info["packets"] = packets

	if r.app != nil {
		info["application"] = r.app.Name()
	}

	return info
}

func attributeStrings(l *radius.AttributeList) []any {
	attrs := l.All()
	out := make([]any, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, fmt.Sprintf("%d %s %q", a.Type, a.Op, a.Value))
	}
	return out
}
