package rule

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// ErrInvalidDefinition is returned for definition files that decode but do
// not make sense, such as a rule without an id.
var ErrInvalidDefinition = errors.New("invalid rule definition")

type extractorRuleDefinition struct {
	XMLName xml.Name        `xml:"extractor-rule-definition"`
	Rules   []extractorRule `xml:"extractor-rule"`
}

type extractorRule struct {
	ID             string `xml:"id,attr"`
	ExtractorClass string `xml:"extractor-class,attr"`
}

type sqlStatementRuleDefinition struct {
	XMLName xml.Name           `xml:"sql-statement-rule-definition"`
	Rules   []sqlStatementRule `xml:"sql-statement-rule"`
}

type sqlStatementRule struct {
	Context           string `xml:"context,attr"`
	ExtractorRuleRefs string `xml:"extractor-rule-refs,attr"`
}

// refs splits the comma-separated extractor-rule-refs attribute.
func (r sqlStatementRule) refs() []string {
	var out []string
	for _, ref := range strings.Split(r.ExtractorRuleRefs, ",") {
		if ref = strings.TrimSpace(ref); ref != "" {
			out = append(out, ref)
		}
	}
	return out
}

type fillerRuleDefinition struct {
	XMLName xml.Name     `xml:"filler-rule-definition"`
	Rules   []fillerRule `xml:"filler-rule"`
}

type fillerRule struct {
	SegmentClass string `xml:"segment-class,attr"`
	FillerClass  string `xml:"filler-class,attr"`
}

// decodeFile reads name from fsys and unmarshals it into v.
func decodeFile(fsys fs.FS, name string, v any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if err := xml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", name, err)
	}
	return nil
}

func loadExtractorRules(fsys fs.FS, name string) ([]extractorRule, error) {
	var def extractorRuleDefinition
	if err := decodeFile(fsys, name, &def); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(def.Rules))
	for _, r := range def.Rules {
		if r.ID == "" || r.ExtractorClass == "" {
			return nil, fmt.Errorf("%w: %s: extractor-rule needs id and extractor-class", ErrInvalidDefinition, name)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate extractor-rule %q", ErrInvalidDefinition, name, r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	return def.Rules, nil
}

func loadSQLStatementRules(fsys fs.FS, name string) ([]sqlStatementRule, error) {
	var def sqlStatementRuleDefinition
	if err := decodeFile(fsys, name, &def); err != nil {
		return nil, err
	}
	for _, r := range def.Rules {
		if r.Context == "" {
			return nil, fmt.Errorf("%w: %s: sql-statement-rule needs a context", ErrInvalidDefinition, name)
		}
	}
	return def.Rules, nil
}

func loadFillerRules(fsys fs.FS, name string) ([]fillerRule, error) {
	var def fillerRuleDefinition
	if err := decodeFile(fsys, name, &def); err != nil {
		return nil, err
	}
	for _, r := range def.Rules {
		if r.SegmentClass == "" || r.FillerClass == "" {
			return nil, fmt.Errorf("%w: %s: filler-rule needs segment-class and filler-class", ErrInvalidDefinition, name)
		}
	}
	return def.Rules, nil
}
