package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/ytgenius/internal/app"
	historyapp "github.com/doeshing/ytgenius/internal/application/history"
	"github.com/doeshing/ytgenius/internal/domain"
	historyinfra "github.com/doeshing/ytgenius/internal/infrastructure/history"
	"github.com/doeshing/ytgenius/internal/pkg/logger"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"plain error", errors.New("boom"), 1},
		{"unauthenticated", domain.NewGenerationError(domain.ErrUnauthenticated, ""), 3},
		{"rejected", domain.NewGenerationError(domain.ErrServiceRejected, "Insufficient coins"), 4},
		{"transport wrapped", fmt.Errorf("submit: %w", domain.NewGenerationError(domain.ErrTransport, "")), 5},
		{"empty input", domain.NewGenerationError(domain.ErrEmptyInput, ""), 2},
		{"busy", domain.NewGenerationError(domain.ErrBusy, ""), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestPrintErrorUsesUserMessage(t *testing.T) {
	var buf bytes.Buffer
	PrintError(&buf, fmt.Errorf("submit: %w", domain.NewGenerationError(domain.ErrServiceRejected, "Insufficient coins")))
	assert.Equal(t, "error: Insufficient coins\n", buf.String())

	buf.Reset()
	PrintError(&buf, domain.NewGenerationError(domain.ErrUnauthenticated, ""))
	assert.Equal(t, "error: Please sign in first\n", buf.String())
}

func TestReadPrompt(t *testing.T) {
	got, err := readPrompt([]string{"cooking", "tips"}, strings.NewReader("ignored"))
	require.NoError(t, err)
	assert.Equal(t, "cooking tips", got)

	got, err = readPrompt(nil, strings.NewReader("  piped idea\n"))
	require.NoError(t, err)
	assert.Equal(t, "piped idea", got)
}

func TestRendererPlainAudit(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, domain.OutputPlain)
	require.False(t, r.Styled())

	outcome := domain.GenerationOutcome{
		Payload: domain.NewAuditPayload(domain.AuditResult{
			Score:      85,
			GrowthHack: "Post at 6pm",
		}),
		CoinsLeft: 7,
	}
	require.NoError(t, r.Outcome(domain.TaskAudit, "", "https://youtu.be/dQw4w9WgXcQ", outcome))

	out := buf.String()
	assert.Contains(t, out, "Preview: https://img.youtube.com/vi/dQw4w9WgXcQ/")
	assert.Contains(t, out, "Viral Score: 85/100  Excellent")
	assert.Contains(t, out, "## Growth Hack\n\nPost at 6pm")
	assert.Contains(t, out, "Generated! 7 coins left")
}

func TestRendererPlainMetadataMarkdown(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, domain.OutputPlain)

	outcome := domain.GenerationOutcome{Payload: domain.NewTextPayload("1. Best title"), CoinsLeft: 3}
	require.NoError(t, r.Outcome(domain.TaskMetadata, "title", "idea", outcome))

	assert.Equal(t, "== TITLE ==\n1. Best title\nGenerated! 3 coins left\n", buf.String())
}

func TestRendererJSONOutcome(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, domain.OutputJSON)

	outcome := domain.GenerationOutcome{Payload: domain.NewTextPayload("hello"), CoinsLeft: 9}
	require.NoError(t, r.Outcome(domain.TaskScript, "", "idea", outcome))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "script", got["task_type"])
	assert.Equal(t, "markdown_block", got["render_mode"])
	assert.Equal(t, float64(9), got["coins_left"])
	assert.Equal(t, "hello", got["result"])
}

func TestRendererJSONEmptyRecords(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, domain.OutputJSON).Records(nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestDisplayDoctorReport(t *testing.T) {
	var buf bytes.Buffer
	displayDoctorReport(&buf, domain.HealthReport{Checks: []domain.HealthCheck{
		{Name: "Session", Status: domain.HealthWarn, Details: "not signed in"},
	}})
	assert.Equal(t, "[WARN] Session - not signed in\n", buf.String())
}

func TestParseRecordID(t *testing.T) {
	id, err := parseRecordID("1700000000000")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000), id)

	_, err = parseRecordID("abc")
	assert.Error(t, err)
}

func TestExecuteClosesContainerAfterFailedCommand(t *testing.T) {
	closed := 0
	container := &app.Container{
		Logger:  logger.Discard(),
		History: historyapp.NewCache(historyinfra.NewMemoryStore(), logger.Discard()),
	}
	container.OnClose(func() error {
		closed++
		return nil
	})

	e := &env{container: container}
	root := newRootCmd(e, Options{})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"history", "show", "42", "--output", "plain"})

	err := execute(context.Background(), root, e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no history record found")
	assert.Equal(t, 1, closed)
}
