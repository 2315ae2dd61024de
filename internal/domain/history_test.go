package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/ytgenius/internal/domain"
)

func TestHistoryRecordRoundTrip(t *testing.T) {
	created := time.UnixMilli(1718000000123).UTC()
	records := []domain.HistoryRecord{
		{
			ID:        1718000000123,
			TaskType:  domain.TaskAudit,
			Prompt:    "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			Result:    domain.NewAuditPayload(domain.AuditResult{Score: 42, GrowthHack: "Shorter intro"}),
			CreatedAt: created,
		},
		{
			ID:        1718000000100,
			TaskType:  domain.TaskMetadata,
			SubType:   "tags",
			Prompt:    "sourdough",
			Result:    domain.NewTextPayload("bread, baking"),
			CreatedAt: created.Add(-23 * time.Millisecond),
		},
	}

	data, err := json.Marshal(records)
	require.NoError(t, err)

	var decoded []domain.HistoryRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, records, decoded)
}

func TestHistoryRecordLegacyMetadataLabel(t *testing.T) {
	data := []byte(`{"id":1,"task_type":"Metadata: hashtags","prompt":"cooking","result":"#food","created_at":"2024-06-10T10:00:00Z"}`)

	var rec domain.HistoryRecord
	require.NoError(t, json.Unmarshal(data, &rec))
	assert.Equal(t, domain.TaskMetadata, rec.TaskType)
	assert.Equal(t, "hashtags", rec.SubType)
	assert.Equal(t, "Metadata: hashtags", rec.Label())
	assert.Equal(t, domain.PayloadText, rec.Result.Kind)
}

func TestHistoryRecordMissingResult(t *testing.T) {
	var rec domain.HistoryRecord
	require.NoError(t, json.Unmarshal([]byte(`{"id":2,"task_type":"script","prompt":"x"}`), &rec))
	assert.Equal(t, domain.PayloadObject, rec.Result.Kind)
	assert.Equal(t, "null", string(rec.Result.Raw()))
}

func TestHistoryRecordDisplayPrompt(t *testing.T) {
	rec := domain.HistoryRecord{Prompt: "https://youtu.be/abc"}
	assert.Equal(t, "Analyzed Video URL", rec.DisplayPrompt())

	rec.Prompt = "cooking channel ideas"
	assert.Equal(t, "cooking channel ideas", rec.DisplayPrompt())
}
