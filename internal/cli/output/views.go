package output

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Value kinds.
const (
	KindLiteral     = "literal"
	KindPlaceholder = "placeholder"
)

// SpanView is an inclusive byte range of the statement text.
type SpanView struct {
	Start int `json:"start" yaml:"start"`
	Stop  int `json:"stop" yaml:"stop"`
}

func (s SpanView) String() string {
	return fmt.Sprintf("[%d..%d]", s.Start, s.Stop)
}

// ValueView is a literal or a parameter placeholder.
type ValueView struct {
	Kind  string   `json:"kind" yaml:"kind"`
	Value *int64   `json:"value,omitempty" yaml:"value,omitempty"`
	Index *int     `json:"index,omitempty" yaml:"index,omitempty"`
	Span  SpanView `json:"span" yaml:"span"`
}

func (v ValueView) String() string {
	switch {
	case v.Index != nil:
		return fmt.Sprintf("?%d", *v.Index)
	case v.Value != nil:
		return fmt.Sprintf("%d", *v.Value)
	default:
		return v.Kind
	}
}

// LimitView is an extracted LIMIT segment.
type LimitView struct {
	RowCount *ValueView `json:"row_count,omitempty" yaml:"row_count,omitempty"`
	Offset   *ValueView `json:"offset,omitempty" yaml:"offset,omitempty"`
	Span     SpanView   `json:"span" yaml:"span"`
}

// StatementView is the result of extracting one statement.
type StatementView struct {
	SQL             string     `json:"sql" yaml:"sql"`
	Dialect         string     `json:"dialect" yaml:"dialect"`
	ParametersCount int        `json:"parameters_count" yaml:"parameters_count"`
	Limit           *LimitView `json:"limit,omitempty" yaml:"limit,omitempty"`
	Error           string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether extraction failed.
func (s StatementView) Failed() bool { return s.Error != "" }

// StatementsOutput is the document written by the extract command.
type StatementsOutput struct {
	Statements []StatementView `json:"statements" yaml:"statements"`
	Count      struct {
		Total  int `json:"total" yaml:"total"`
		Failed int `json:"failed" yaml:"failed"`
	} `json:"count" yaml:"count"`
}

// NewStatementsOutput wraps views and counts failures.
func NewStatementsOutput(views []StatementView) StatementsOutput {
	out := StatementsOutput{Statements: views}
	out.Count.Total = len(views)
	for _, v := range views {
		if v.Failed() {
			out.Count.Failed++
		}
	}
	return out
}

// ResourceView names one rule definition file.
type ResourceView struct {
	Role string `json:"role" yaml:"role"`
	Path string `json:"path" yaml:"path"`
}

// ExtractorRuleView is a resolved extractor rule.
type ExtractorRuleView struct {
	ID             string `json:"id" yaml:"id"`
	ExtractorClass string `json:"extractor_class" yaml:"extractor_class"`
	Layer          string `json:"layer" yaml:"layer"`
}

// StatementRuleView lists the extractor rules run for one statement context.
type StatementRuleView struct {
	Context    string   `json:"context" yaml:"context"`
	Extractors []string `json:"extractors" yaml:"extractors"`
}

// FillerRuleView is a resolved filler rule.
type FillerRuleView struct {
	SegmentClass string `json:"segment_class" yaml:"segment_class"`
	FillerClass  string `json:"filler_class" yaml:"filler_class"`
}

// RulesOutput is the document written by the rules command.
type RulesOutput struct {
	Feature    string              `json:"feature" yaml:"feature"`
	Dialect    string              `json:"dialect" yaml:"dialect"`
	Resources  []ResourceView      `json:"resources" yaml:"resources"`
	Extractors []ExtractorRuleView `json:"extractor_rules" yaml:"extractor_rules"`
	Statements []StatementRuleView `json:"statement_rules" yaml:"statement_rules"`
	Fillers    []FillerRuleView    `json:"filler_rules" yaml:"filler_rules"`
}

// Statements writes extraction results in the renderer's mode.
func (r *Renderer) Statements(out StatementsOutput) error {
	switch r.mode {
	case ModeJSON:
		return r.JSON(out)
	case ModeYAML:
		return r.YAML(out)
	}

	styles := r.styles
	for i, stmt := range out.Statements {
		if i > 0 {
			r.Println("")
		}
		r.Println(styles.Header1.Render(fmt.Sprintf("Statement %d", i+1)) +
			styles.Muted.Render(fmt.Sprintf("  %s, %d parameters", stmt.Dialect, stmt.ParametersCount)))
		r.Println("  " + strings.TrimSpace(stmt.SQL))
		if stmt.Failed() {
			r.Println("  " + styles.Error.Render("error") + " " + stmt.Error)
			continue
		}
		if stmt.Limit == nil {
			r.Println("  " + styles.Muted.Render("no segments"))
			continue
		}
		r.Println("  " + styles.Bold.Render("limit") + " " + styles.Muted.Render(stmt.Limit.Span.String()))
		if stmt.Limit.Offset != nil {
			r.Println("    " + fmt.Sprintf("%-10s", "offset") + r.value(*stmt.Limit.Offset))
		}
		if stmt.Limit.RowCount != nil {
			r.Println("    " + fmt.Sprintf("%-10s", "row count") + r.value(*stmt.Limit.RowCount))
		}
	}

	summary := fmt.Sprintf("%d statements, %d failed", out.Count.Total, out.Count.Failed)
	r.Println("")
	if out.Count.Failed > 0 {
		r.Println(styles.Error.Render(summary))
	} else {
		r.Println(styles.Success.Render(summary))
	}
	return nil
}

func (r *Renderer) value(v ValueView) string {
	text := v.String()
	if v.Kind == KindPlaceholder {
		text = r.styles.Placeholder.Render(text)
	}
	return text + " " + r.styles.Muted.Render(v.Span.String())
}

// Rules writes a resolved rule set in the renderer's mode.
func (r *Renderer) Rules(out RulesOutput) error {
	switch r.mode {
	case ModeJSON:
		return r.JSON(out)
	case ModeYAML:
		return r.YAML(out)
	}

	styles := r.styles
	r.Println(styles.Header1.Render(fmt.Sprintf("Parsing rules for %s / %s", out.Feature, out.Dialect)))
	r.Println("")

	r.Println(styles.Header2.Render("Resources"))
	for _, res := range out.Resources {
		r.Printf("  %-18s %s\n", res.Role, styles.Muted.Render(res.Path))
	}
	r.Println("")

	r.Println(styles.Header2.Render("Extractor rules"))
	t := r.table()
	t.AppendHeader(table.Row{"ID", "Extractor class", "Layer"})
	for _, e := range out.Extractors {
		t.AppendRow(table.Row{e.ID, e.ExtractorClass, e.Layer})
	}
	t.Render()
	r.Println("")

	r.Println(styles.Header2.Render("Statement rules"))
	t = r.table()
	t.AppendHeader(table.Row{"Context", "Extractor rules"})
	for _, s := range out.Statements {
		t.AppendRow(table.Row{s.Context, strings.Join(s.Extractors, ", ")})
	}
	t.Render()
	r.Println("")

	r.Println(styles.Header2.Render("Filler rules"))
	t = r.table()
	t.AppendHeader(table.Row{"Segment class", "Filler class"})
	for _, f := range out.Fillers {
		t.AppendRow(table.Row{f.SegmentClass, f.FillerClass})
	}
	t.Render()
	return nil
}

func (r *Renderer) table() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	return t
}
