package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// legacyMetadataPrefix is how older clients folded the metadata sub type into the task label.
const legacyMetadataPrefix = "Metadata: "

// HistoryRecord captures one successful generation request and its result.
type HistoryRecord struct {
	ID        int64         `json:"id"`
	TaskType  TaskTag       `json:"task_type"`
	SubType   string        `json:"sub_type,omitempty"`
	Prompt    string        `json:"prompt"`
	Result    ResultPayload `json:"result"`
	CreatedAt time.Time     `json:"created_at"`
}

// Label is the heading shown in history listings.
func (r HistoryRecord) Label() string {
	if r.TaskType == TaskMetadata && r.SubType != "" {
		return legacyMetadataPrefix + r.SubType
	}
	return string(r.TaskType)
}

// DisplayPrompt hides long links behind a short caption.
func (r HistoryRecord) DisplayPrompt() string {
	if strings.Contains(r.Prompt, "http") {
		return "Analyzed Video URL"
	}
	return r.Prompt
}

// UnmarshalJSON decodes the record and re-interprets the result for its task.
func (r *HistoryRecord) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID        int64           `json:"id"`
		TaskType  string          `json:"task_type"`
		SubType   string          `json:"sub_type"`
		Prompt    string          `json:"prompt"`
		Result    json.RawMessage `json:"result"`
		CreatedAt time.Time       `json:"created_at"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	task := TaskTag(wire.TaskType)
	sub := wire.SubType
	if strings.HasPrefix(wire.TaskType, legacyMetadataPrefix) {
		task = TaskMetadata
		if sub == "" {
			sub = strings.TrimSpace(strings.TrimPrefix(wire.TaskType, legacyMetadataPrefix))
		}
	}

	result := wire.Result
	if len(result) == 0 {
		result = json.RawMessage("null")
	}
	payload, err := DecodePayload(task, result)
	if err != nil {
		return err
	}

	*r = HistoryRecord{
		ID:        wire.ID,
		TaskType:  task,
		SubType:   sub,
		Prompt:    wire.Prompt,
		Result:    payload,
		CreatedAt: wire.CreatedAt,
	}
	return nil
}
