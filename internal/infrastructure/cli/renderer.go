package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/doeshing/ytgenius/internal/application/render"
	"github.com/doeshing/ytgenius/internal/domain"
)

const maxWrapWidth = 100

// Renderer prints results, history and status lines.
// Styling is applied only in auto mode when the output is a terminal.
type Renderer struct {
	out    io.Writer
	mode   string
	styled bool
	md     *glamour.TermRenderer

	errorStyle   lipgloss.Style
	warnStyle    lipgloss.Style
	successStyle lipgloss.Style
	dimStyle     lipgloss.Style
	headerStyle  lipgloss.Style
	bandStyles   map[domain.ScoreBand]lipgloss.Style
}

// NewRenderer builds a renderer for out. mode is auto, plain or json.
func NewRenderer(out io.Writer, mode string) *Renderer {
	if out == nil {
		out = os.Stdout
	}
	mode = strings.ToLower(mode)
	if mode == "" {
		mode = domain.OutputAuto
	}
	r := &Renderer{
		out:    out,
		mode:   mode,
		styled: mode == domain.OutputAuto && isTerminal(out),
	}

	if r.styled {
		r.md, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrapWidth(out)),
		)
	}

	r.errorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#D00000", Dark: "#FF5555"}).
		Bold(true)
	r.warnStyle = lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#FFAA00"})
	r.successStyle = lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#008000", Dark: "#55FF55"})
	r.dimStyle = lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"})
	r.headerStyle = lipgloss.NewStyle().
		Bold(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(lipgloss.AdaptiveColor{Light: "#CCCCCC", Dark: "#444444"})
	r.bandStyles = map[domain.ScoreBand]lipgloss.Style{
		domain.BandExcellent: r.successStyle.Bold(true),
		domain.BandNeedsWork: r.warnStyle.Bold(true),
		domain.BandCritical:  r.errorStyle,
	}
	return r
}

// JSON reports whether output is machine readable.
func (r *Renderer) JSON() bool {
	return r.mode == domain.OutputJSON
}

// Styled reports whether ANSI styling is in effect.
func (r *Renderer) Styled() bool {
	return r.styled
}

type resultEnvelope struct {
	ID         int64                `json:"id,omitempty"`
	TaskType   domain.TaskTag       `json:"task_type"`
	SubType    string               `json:"sub_type,omitempty"`
	Prompt     string               `json:"prompt,omitempty"`
	RenderMode render.Mode          `json:"render_mode"`
	CoinsLeft  *int                 `json:"coins_left,omitempty"`
	CreatedAt  *time.Time           `json:"created_at,omitempty"`
	Result     domain.ResultPayload `json:"result"`
}

// Outcome prints a fresh generation result.
func (r *Renderer) Outcome(task domain.TaskTag, subType, prompt string, outcome domain.GenerationOutcome) error {
	mode := render.Select(task, outcome.Payload)
	if r.JSON() {
		coins := outcome.CoinsLeft
		return r.writeJSON(resultEnvelope{
			TaskType:   task,
			SubType:    subType,
			Prompt:     prompt,
			RenderMode: mode,
			CoinsLeft:  &coins,
			Result:     outcome.Payload,
		})
	}

	if task == domain.TaskThumbnail || task == domain.TaskAudit {
		if preview := domain.ThumbnailURL(prompt); preview != "" {
			r.Dim("Preview: %s", preview)
		}
	}
	if err := r.payload(task, subType, mode, outcome.Payload); err != nil {
		return err
	}
	r.Success("Generated! %d coins left", outcome.CoinsLeft)
	return nil
}

// Record prints a stored history record in full.
func (r *Renderer) Record(rec domain.HistoryRecord) error {
	mode := render.Select(rec.TaskType, rec.Result)
	if r.JSON() {
		created := recordTime(rec)
		return r.writeJSON(resultEnvelope{
			ID:         rec.ID,
			TaskType:   rec.TaskType,
			SubType:    rec.SubType,
			Prompt:     rec.Prompt,
			RenderMode: mode,
			CreatedAt:  &created,
			Result:     rec.Result,
		})
	}

	r.Header(strings.ToUpper(rec.Label()))
	r.Dim("%s  ·  %s", recordTime(rec).Local().Format("2006-01-02 15:04"), rec.DisplayPrompt())
	if rec.Prompt != rec.DisplayPrompt() {
		r.Dim("%s", rec.Prompt)
	}
	fmt.Fprintln(r.out)
	return r.payload(rec.TaskType, rec.SubType, mode, rec.Result)
}

// Records prints a compact listing, newest first.
func (r *Renderer) Records(records []domain.HistoryRecord) error {
	if r.JSON() {
		if records == nil {
			records = []domain.HistoryRecord{}
		}
		return r.writeJSON(records)
	}
	for _, rec := range records {
		id := fmt.Sprintf("%d", rec.ID)
		if r.styled {
			id = r.dimStyle.Render(id)
		}
		fmt.Fprintf(r.out, "%s  %s  %-20s %s\n",
			id,
			recordTime(rec).Local().Format(domain.DateFormat),
			rec.Label(),
			truncate(rec.DisplayPrompt(), 60),
		)
	}
	return nil
}

func (r *Renderer) payload(task domain.TaskTag, subType string, mode render.Mode, payload domain.ResultPayload) error {
	switch mode {
	case render.StructuredAudit:
		return r.audit(*payload.Audit)
	case render.StructuredScript:
		return r.script(*payload.Script)
	case render.MarkdownBlock:
		r.Header(strings.ToUpper(render.Label(task, subType)))
		return r.Markdown(payload.Markdown())
	default:
		if r.md == nil {
			fmt.Fprintln(r.out, payload.PrettyJSON())
			return nil
		}
		return r.Markdown("```json\n" + payload.PrettyJSON() + "\n```")
	}
}

func (r *Renderer) audit(a domain.AuditResult) error {
	band := a.Band()
	score := fmt.Sprintf("%d/100  %s", a.Score, band)
	if r.styled {
		score = r.bandStyles[band].Render(score)
	}
	fmt.Fprintf(r.out, "Viral Score: %s\n\n", score)

	var md strings.Builder
	section(&md, "Growth Hack", a.GrowthHack)
	section(&md, "Title Analysis", a.TitleAnalysis)
	section(&md, "Hook Analysis", a.HookAnalysis)
	if len(a.MissingKeywords) > 0 {
		md.WriteString("## Missing Keywords\n\n")
		for _, kw := range a.MissingKeywords {
			fmt.Fprintf(&md, "- %s\n", kw)
		}
	}
	if md.Len() == 0 {
		return nil
	}
	return r.Markdown(md.String())
}

func (r *Renderer) script(s domain.ScriptResult) error {
	var md strings.Builder
	if s.Title != "" {
		fmt.Fprintf(&md, "# %s\n\n", s.Title)
	}
	md.WriteString(strings.TrimSpace(s.ScriptBody))
	md.WriteString("\n\n")
	section(&md, "Description", s.Description)
	if len(s.Tags) > 0 {
		fmt.Fprintf(&md, "## Tags\n\n%s\n", strings.Join(s.Tags, ", "))
	}
	return r.Markdown(md.String())
}

func section(md *strings.Builder, title, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	fmt.Fprintf(md, "## %s\n\n%s\n\n", title, strings.TrimSpace(body))
}

// Markdown renders md through glamour when styled, verbatim otherwise.
func (r *Renderer) Markdown(md string) error {
	if r.md == nil {
		fmt.Fprintln(r.out, strings.TrimRight(md, "\n"))
		return nil
	}
	rendered, err := r.md.Render(md)
	if err != nil {
		fmt.Fprintln(r.out, md)
		return err
	}
	fmt.Fprint(r.out, rendered)
	return nil
}

// Header prints a section header.
func (r *Renderer) Header(title string) {
	if !r.styled {
		fmt.Fprintf(r.out, "== %s ==\n", title)
		return
	}
	fmt.Fprintln(r.out, r.headerStyle.Render(title))
}

// Error prints a single error line.
func (r *Renderer) Error(err error) {
	msg := err.Error()
	var genErr *domain.GenerationError
	if errors.As(err, &genErr) {
		msg = genErr.UserMessage()
	}
	r.line(r.errorStyle, "error: "+msg)
}

// Warn prints a warning line.
func (r *Renderer) Warn(format string, args ...interface{}) {
	r.line(r.warnStyle, "warning: "+fmt.Sprintf(format, args...))
}

// Success prints a confirmation line.
func (r *Renderer) Success(format string, args ...interface{}) {
	prefix := ""
	if r.styled {
		prefix = "✓ "
	}
	r.line(r.successStyle, prefix+fmt.Sprintf(format, args...))
}

// Dim prints secondary text.
func (r *Renderer) Dim(format string, args ...interface{}) {
	r.line(r.dimStyle, fmt.Sprintf(format, args...))
}

func (r *Renderer) line(style lipgloss.Style, msg string) {
	if r.styled {
		msg = style.Render(msg)
	}
	fmt.Fprintln(r.out, msg)
}

func (r *Renderer) writeJSON(v interface{}) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func recordTime(rec domain.HistoryRecord) time.Time {
	if rec.CreatedAt.IsZero() {
		return time.UnixMilli(rec.ID).UTC()
	}
	return rec.CreatedAt
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func wrapWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return maxWrapWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return maxWrapWidth
	}
	return min(width-2, maxWrapWidth)
}
