// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/leapstack-labs/shardparse/internal/cli/output"
	"github.com/leapstack-labs/shardparse/pkg/dialect"
	"github.com/leapstack-labs/shardparse/pkg/rule"
)

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a renderer in mode whose output is captured in
// buffers for inspection.
func NewTestRenderer(mode output.Mode) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRenderer(out, errOut, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// RulesDir lays out a rules directory with the same structure as the
// built-in definitions.
type RulesDir struct {
	t    *testing.T
	Root string
}

// NewRulesDir creates an empty rules directory under t.TempDir().
func NewRulesDir(t *testing.T) *RulesDir {
	t.Helper()
	return &RulesDir{t: t, Root: t.TempDir()}
}

// WriteExtractorRules writes the extractor rule file of feature and db.
func (d *RulesDir) WriteExtractorRules(feature string, db dialect.DatabaseType, content string) {
	d.write(rule.ExtractorRuleDefinitionFileName(feature, db), content)
}

// WriteStatementRules writes the statement rule file of feature and db.
func (d *RulesDir) WriteStatementRules(feature string, db dialect.DatabaseType, content string) {
	d.write(rule.SQLStatementRuleDefinitionFileName(feature, db), content)
}

func (d *RulesDir) write(name, content string) {
	d.t.Helper()
	path := filepath.Join(d.Root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		d.t.Fatalf("failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		d.t.Fatalf("failed to write %s: %v", name, err)
	}
}
