package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PayloadKind tags the variant held by a ResultPayload.
type PayloadKind string

const (
	PayloadAudit  PayloadKind = "audit"
	PayloadScript PayloadKind = "script"
	PayloadText   PayloadKind = "text"
	PayloadObject PayloadKind = "object"
)

// ErrEmptyPayload is returned when there is no JSON to decode.
var ErrEmptyPayload = errors.New("empty result payload")

// ResultPayload is the tagged union returned by the generation service.
//
// The variant is chosen from the request's task type when the payload is
// decoded; the raw JSON is kept so the payload is written back to storage
// exactly as the service produced it.
type ResultPayload struct {
	Kind   PayloadKind
	Audit  *AuditResult
	Script *ScriptResult
	Text   string

	raw    json.RawMessage
	fields map[string]json.RawMessage
}

// AuditResult is the structured answer of the audit task.
type AuditResult struct {
	Score           int        `json:"score"`
	GrowthHack      string     `json:"growth_hack"`
	TitleAnalysis   string     `json:"title_analysis"`
	HookAnalysis    string     `json:"hook_analysis"`
	MissingKeywords StringList `json:"missing_keywords"`
}

// ScoreBand labels the audit score the same way the dashboard does.
type ScoreBand string

const (
	BandExcellent ScoreBand = "Excellent"
	BandNeedsWork ScoreBand = "Needs Work"
	BandCritical  ScoreBand = "Critical"
)

// Band returns the qualitative label for the score.
func (a AuditResult) Band() ScoreBand {
	switch {
	case a.Score >= 80:
		return BandExcellent
	case a.Score >= 50:
		return BandNeedsWork
	default:
		return BandCritical
	}
}

// ScriptResult is the structured answer of the script task.
type ScriptResult struct {
	Title       string     `json:"title"`
	ScriptBody  string     `json:"script_body"`
	Tags        StringList `json:"tags"`
	Description string     `json:"description"`
}

// StringList accepts either a JSON array of strings or a comma separated string.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] == '"' {
		var joined string
		if err := json.Unmarshal(data, &joined); err != nil {
			return err
		}
		var out []string
		for _, part := range strings.Split(joined, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		*l = out
		return nil
	}
	var items []interface{}
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case nil:
		default:
			out = append(out, fmt.Sprint(v))
		}
	}
	*l = out
	return nil
}

// DecodePayload interprets raw service output for the given task.
//
// The task decides the variant. Only tasks outside the known set take the
// legacy path, which sniffs for a "score" field to recognise audit-like objects.
func DecodePayload(task TaskTag, raw json.RawMessage) (ResultPayload, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ResultPayload{}, ErrEmptyPayload
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		return ResultPayload{}, fmt.Errorf("decode payload: %w", err)
	}
	payload := ResultPayload{Kind: PayloadObject, raw: json.RawMessage(compact.Bytes())}

	switch trimmed[0] {
	case '"':
		if err := json.Unmarshal(trimmed, &payload.Text); err != nil {
			return ResultPayload{}, fmt.Errorf("decode text payload: %w", err)
		}
		payload.Kind = PayloadText
		return payload, nil
	case '{':
		if err := json.Unmarshal(trimmed, &payload.fields); err != nil {
			return ResultPayload{}, fmt.Errorf("decode object payload: %w", err)
		}
	default:
		return payload, nil
	}

	switch {
	case task == TaskAudit && payload.Has("score"):
		payload.decodeAudit()
	case task == TaskScript && payload.Has("script_body"):
		payload.decodeScript()
	case !task.IsKnown() && truthy(payload.fields["score"]):
		// Legacy records carry free-form task labels. The dashboard only
		// treated them as audits when the score was truthy, so 0 stays raw.
		payload.decodeAudit()
	}
	return payload, nil
}

// NewTextPayload builds a markdown payload.
func NewTextPayload(text string) ResultPayload {
	raw, _ := json.Marshal(text)
	return ResultPayload{Kind: PayloadText, Text: text, raw: raw}
}

// NewAuditPayload builds an audit payload.
func NewAuditPayload(a AuditResult) ResultPayload {
	raw, _ := json.Marshal(a)
	p, _ := DecodePayload(TaskAudit, raw)
	return p
}

// NewScriptPayload builds a script payload.
func NewScriptPayload(s ScriptResult) ResultPayload {
	raw, _ := json.Marshal(s)
	p, _ := DecodePayload(TaskScript, raw)
	return p
}

func (p *ResultPayload) decodeAudit() {
	var a AuditResult
	score, ok := flexibleInt(p.fields["score"])
	if !ok {
		return
	}
	var rest struct {
		GrowthHack      string     `json:"growth_hack"`
		TitleAnalysis   string     `json:"title_analysis"`
		HookAnalysis    string     `json:"hook_analysis"`
		MissingKeywords StringList `json:"missing_keywords"`
	}
	if err := json.Unmarshal(p.raw, &rest); err != nil {
		return
	}
	a.Score = clamp(score, 0, 100)
	a.GrowthHack = rest.GrowthHack
	a.TitleAnalysis = rest.TitleAnalysis
	a.HookAnalysis = rest.HookAnalysis
	a.MissingKeywords = rest.MissingKeywords
	p.Kind = PayloadAudit
	p.Audit = &a
}

func (p *ResultPayload) decodeScript() {
	var s ScriptResult
	if err := json.Unmarshal(p.raw, &s); err != nil {
		return
	}
	p.Kind = PayloadScript
	p.Script = &s
}

// Has reports whether an object payload carries the named top-level field.
func (p ResultPayload) Has(field string) bool {
	_, ok := p.fields[field]
	return ok
}

// IsObject reports whether the raw payload is a JSON object.
func (p ResultPayload) IsObject() bool {
	return p.fields != nil
}

// Raw returns the compacted JSON exactly as stored.
func (p ResultPayload) Raw() json.RawMessage {
	return p.raw
}

// Markdown returns the text form used by markdown blocks.
func (p ResultPayload) Markdown() string {
	if p.Kind == PayloadText {
		return p.Text
	}
	return string(p.raw)
}

// PrettyJSON returns an indented dump of the payload.
func (p ResultPayload) PrettyJSON() string {
	var out bytes.Buffer
	if err := json.Indent(&out, p.raw, "", "  "); err != nil {
		return string(p.raw)
	}
	return out.String()
}

// CopyText is the most useful single piece of the payload for the clipboard.
func (p ResultPayload) CopyText() string {
	switch p.Kind {
	case PayloadText:
		return p.Text
	case PayloadScript:
		return p.Script.ScriptBody
	default:
		return string(p.raw)
	}
}

// MarshalJSON implements json.Marshaler.
func (p ResultPayload) MarshalJSON() ([]byte, error) {
	if len(p.raw) == 0 {
		return []byte("null"), nil
	}
	return p.raw, nil
}

// UnmarshalJSON implements json.Unmarshaler using the legacy sniffing rules.
// HistoryRecord re-decodes with its own task type.
func (p *ResultPayload) UnmarshalJSON(data []byte) error {
	decoded, err := DecodePayload("", data)
	if err != nil {
		return err
	}
	*p = decoded
	return nil
}

func flexibleInt(raw json.RawMessage) (int, bool) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(math.Round(n)), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return int(math.Round(f)), true
	default:
		return 0, false
	}
}

func truthy(raw json.RawMessage) bool {
	var v interface{}
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil {
		return false
	}
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	default:
		return true
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
