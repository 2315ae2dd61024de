// Package domain defines core business entities and value objects for ytgenius.
//
// The domain layer is independent of infrastructure concerns: it knows nothing
// about HTTP, YAML or SQLite and only describes tasks, payloads, history
// records, sessions and the error taxonomy shared by every adapter.
package domain

import (
	"fmt"
	"strings"
)

// TaskTag identifies the category of a generation request.
type TaskTag string

const (
	TaskAudit     TaskTag = "audit"
	TaskScript    TaskTag = "script"
	TaskMetadata  TaskTag = "metadata"
	TaskThumbnail TaskTag = "thumbnail"

	// UI-only pseudo tasks. They never reach the dispatcher.
	TaskSettings TaskTag = "settings"
	TaskHistory  TaskTag = "history"
)

// DispatchableTasks lists the tasks accepted by the generation service, in menu order.
var DispatchableTasks = []TaskTag{TaskMetadata, TaskAudit, TaskScript, TaskThumbnail}

// IsDispatchable reports whether the tag may be sent to the generation service.
func (t TaskTag) IsDispatchable() bool {
	switch t {
	case TaskAudit, TaskScript, TaskMetadata, TaskThumbnail:
		return true
	default:
		return false
	}
}

// IsKnown reports whether the tag belongs to the closed set, pseudo tasks included.
func (t TaskTag) IsKnown() bool {
	return t.IsDispatchable() || t == TaskSettings || t == TaskHistory
}

// ExpectsURL reports whether the task takes a video link rather than free text.
func (t TaskTag) ExpectsURL() bool {
	return t == TaskAudit || t == TaskThumbnail
}

// Title is the human readable menu name.
func (t TaskTag) Title() string {
	switch t {
	case TaskMetadata:
		return "Metadata Kit"
	case TaskAudit:
		return "Deep Audit"
	case TaskScript:
		return "Video Script"
	case TaskThumbnail:
		return "Thumbnail Rater"
	case TaskSettings:
		return "Settings"
	case TaskHistory:
		return "History"
	default:
		return string(t)
	}
}

// ParseTaskTag converts user input into a dispatchable task.
func ParseTaskTag(raw string) (TaskTag, error) {
	tag := TaskTag(strings.ToLower(strings.TrimSpace(raw)))
	if !tag.IsDispatchable() {
		return "", fmt.Errorf("unknown task %q (expected one of %s)", raw, joinTasks(DispatchableTasks))
	}
	return tag, nil
}

// MetadataSubType selects which metadata artefact the service generates.
type MetadataSubType string

const (
	MetadataTitle       MetadataSubType = "title"
	MetadataDescription MetadataSubType = "description"
	MetadataTags        MetadataSubType = "tags"
	MetadataHashtags    MetadataSubType = "hashtags"
	MetadataDisclaimer  MetadataSubType = "disclaimer"
)

// MetadataSubTypes lists the sub types in tab order.
var MetadataSubTypes = []MetadataSubType{
	MetadataTitle,
	MetadataDescription,
	MetadataTags,
	MetadataHashtags,
	MetadataDisclaimer,
}

// IsValid reports whether the sub type is one the service understands.
func (m MetadataSubType) IsValid() bool {
	for _, known := range MetadataSubTypes {
		if m == known {
			return true
		}
	}
	return false
}

// Placeholder is the input hint shown for the sub type.
func (m MetadataSubType) Placeholder() string {
	switch m {
	case MetadataTitle:
		return "Enter video topic (e.g. iPhone 16 Review)"
	case MetadataDescription:
		return "Enter video topic & key points..."
	case MetadataTags:
		return "Enter main keyword..."
	case MetadataHashtags:
		return "Enter niche (e.g. Gaming, Cooking)..."
	case MetadataDisclaimer:
		return "Enter type (e.g. Financial Advice, Affiliate Link)..."
	default:
		return "Describe your video idea in detail..."
	}
}

// ParseMetadataSubType normalises user input; empty input selects the default.
func ParseMetadataSubType(raw string) (MetadataSubType, error) {
	sub := MetadataSubType(strings.ToLower(strings.TrimSpace(raw)))
	if sub == "" {
		return DefaultMetadataSubType, nil
	}
	if !sub.IsValid() {
		names := make([]string, len(MetadataSubTypes))
		for i, s := range MetadataSubTypes {
			names[i] = string(s)
		}
		return "", fmt.Errorf("unknown metadata type %q (expected one of %s)", raw, strings.Join(names, "|"))
	}
	return sub, nil
}

func joinTasks(tasks []TaskTag) string {
	names := make([]string, len(tasks))
	for i, t := range tasks {
		names[i] = string(t)
	}
	return strings.Join(names, "|")
}
