// Package render decides how a generation result should be displayed.
package render

import "github.com/doeshing/ytgenius/internal/domain"

// Mode is the display strategy for a result payload.
type Mode string

const (
	StructuredAudit  Mode = "structured_audit"
	StructuredScript Mode = "structured_script"
	MarkdownBlock    Mode = "markdown_block"
	RawJSON          Mode = "raw_json"
)

// Select maps a task and its payload to a render mode. It never fails:
// shapes it does not recognise fall back to RawJSON.
func Select(task domain.TaskTag, payload domain.ResultPayload) Mode {
	switch task {
	case domain.TaskMetadata:
		return MarkdownBlock
	case domain.TaskAudit:
		if payload.Kind == domain.PayloadAudit {
			return StructuredAudit
		}
	case domain.TaskScript:
		if payload.Kind == domain.PayloadScript {
			return StructuredScript
		}
	}

	if payload.Kind == domain.PayloadText {
		return MarkdownBlock
	}

	if !task.IsKnown() {
		return selectLegacy(payload)
	}
	return RawJSON
}

// selectLegacy handles records written with free-form task labels. Decoding
// already sniffed them for a numeric score; anything else is dumped.
func selectLegacy(payload domain.ResultPayload) Mode {
	if payload.Kind == domain.PayloadAudit {
		return StructuredAudit
	}
	return RawJSON
}

// Label is the heading of a markdown block.
func Label(task domain.TaskTag, subType string) string {
	if task == domain.TaskMetadata && subType != "" {
		return subType
	}
	return "Result"
}
