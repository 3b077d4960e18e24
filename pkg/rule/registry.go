package rule

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/leapstack-labs/shardparse/pkg/dialect"
	"github.com/leapstack-labs/shardparse/pkg/extractor"
	"github.com/leapstack-labs/shardparse/pkg/filler"
	"github.com/leapstack-labs/shardparse/pkg/segment"
	"github.com/leapstack-labs/shardparse/pkg/tree"
)

// Errors returned by Load.
var (
	// ErrUnknownImplementation means a definition names an extractor-class or
	// filler-class that no package registered.
	ErrUnknownImplementation = errors.New("unknown implementation")

	// ErrUnknownExtractorRule means a statement rule references an extractor
	// rule id that no definition declares.
	ErrUnknownExtractorRule = errors.New("unknown extractor rule")
)

// Layer tells which definition file a binding came from.
type Layer string

// Definition layers, from least to most specific.
const (
	LayerGeneral  Layer = "general"
	LayerSpecific Layer = "specific"
)

// Binding ties an extractor rule id to its extractor.
type Binding struct {
	ID             string              `json:"id" yaml:"id"`
	ExtractorClass string              `json:"extractor_class" yaml:"extractor_class"`
	Layer          Layer               `json:"layer" yaml:"layer"`
	Extractor      extractor.Extractor `json:"-" yaml:"-"`
}

// FillerBinding ties a segment kind to its filler.
type FillerBinding struct {
	Kind        segment.Kind  `json:"segment_class" yaml:"segment_class"`
	FillerClass string        `json:"filler_class" yaml:"filler_class"`
	Filler      filler.Filler `json:"-" yaml:"-"`
}

// Registry is the resolved rule set of one (feature, dialect) pair. It is
// immutable after Load returns and safe for concurrent use.
type Registry struct {
	feature      string
	databaseType dialect.DatabaseType

	extractors map[string]Binding
	statements map[tree.RuleName][]Binding
	fillers    map[segment.Kind]FillerBinding
}

// Load reads the general and the feature/dialect definitions from fsys and
// merges them. The feature/dialect extractor file is optional; the other
// three files are required.
func Load(fsys fs.FS, feature string, db dialect.DatabaseType) (*Registry, error) {
	r := &Registry{
		feature:      feature,
		databaseType: db,
		extractors:   make(map[string]Binding),
		statements:   make(map[tree.RuleName][]Binding),
		fillers:      make(map[segment.Kind]FillerBinding),
	}

	general, err := loadExtractorRules(fsys, GeneralExtractorRuleDefinitionFileName())
	if err != nil {
		return nil, err
	}
	if err := r.bindExtractors(general, LayerGeneral); err != nil {
		return nil, err
	}

	specific, err := loadExtractorRules(fsys, ExtractorRuleDefinitionFileName(feature, db))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := r.bindExtractors(specific, LayerSpecific); err != nil {
			return nil, err
		}
	}

	statements, err := loadSQLStatementRules(fsys, SQLStatementRuleDefinitionFileName(feature, db))
	if err != nil {
		return nil, err
	}
	for _, s := range statements {
		var bindings []Binding
		for _, ref := range s.refs() {
			b, ok := r.extractors[ref]
			if !ok {
				return nil, fmt.Errorf("%w: %q in statement rule %q", ErrUnknownExtractorRule, ref, s.Context)
			}
			bindings = append(bindings, b)
		}
		r.statements[tree.RuleName(s.Context)] = bindings
	}

	fillers, err := loadFillerRules(fsys, GeneralFillerRuleDefinitionFileName())
	if err != nil {
		return nil, err
	}
	for _, f := range fillers {
		impl, ok := filler.Lookup(f.FillerClass)
		if !ok {
			return nil, fmt.Errorf("%w: filler-class %q", ErrUnknownImplementation, f.FillerClass)
		}
		kind := segment.Kind(f.SegmentClass)
		r.fillers[kind] = FillerBinding{Kind: kind, FillerClass: f.FillerClass, Filler: impl}
	}

	return r, nil
}

// bindExtractors resolves extractor classes and overlays them on the
// bindings loaded so far.
func (r *Registry) bindExtractors(rules []extractorRule, layer Layer) error {
	for _, rule := range rules {
		impl, ok := extractor.Lookup(rule.ExtractorClass)
		if !ok {
			return fmt.Errorf("%w: extractor-class %q", ErrUnknownImplementation, rule.ExtractorClass)
		}
		r.extractors[rule.ID] = Binding{
			ID:             rule.ID,
			ExtractorClass: rule.ExtractorClass,
			Layer:          layer,
			Extractor:      impl,
		}
	}
	return nil
}

// Feature returns the feature the registry was loaded for.
func (r *Registry) Feature() string { return r.feature }

// DatabaseType returns the dialect the registry was loaded for.
func (r *Registry) DatabaseType() dialect.DatabaseType { return r.databaseType }

// Extractor returns the extractor bound to an extractor rule id.
func (r *Registry) Extractor(id string) (extractor.Extractor, bool) {
	b, ok := r.extractors[id]
	return b.Extractor, ok
}

// StatementExtractors returns the ordered extractor bindings of a statement
// rule, keyed by the grammar rule of the statement's root node.
func (r *Registry) StatementExtractors(context tree.RuleName) ([]Binding, bool) {
	b, ok := r.statements[context]
	if !ok {
		return nil, false
	}
	out := make([]Binding, len(b))
	copy(out, b)
	return out, true
}

// Filler returns the filler bound to a segment kind.
func (r *Registry) Filler(kind segment.Kind) (filler.Filler, bool) {
	b, ok := r.fillers[kind]
	return b.Filler, ok
}

// Bindings returns the extractor bindings sorted by id.
func (r *Registry) Bindings() []Binding {
	out := make([]Binding, 0, len(r.extractors))
	for _, b := range r.extractors {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FillerBindings returns the filler bindings sorted by segment kind.
func (r *Registry) FillerBindings() []FillerBinding {
	out := make([]FillerBinding, 0, len(r.fillers))
	for _, b := range r.fillers {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

// StatementContexts returns the statement rules the registry knows, sorted.
func (r *Registry) StatementContexts() []tree.RuleName {
	out := make([]tree.RuleName, 0, len(r.statements))
	for c := range r.statements {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
