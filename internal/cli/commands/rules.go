package commands

import (
	"github.com/leapstack-labs/shardparse/internal/cli/output"
	"github.com/leapstack-labs/shardparse/pkg/rule"
	"github.com/spf13/cobra"
)

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Show the parsing rules for a feature and dialect",
		Long: `Resolve and print the parsing rule definitions used for the configured
feature and dialect: the definition files read, the extractor rules with the
layer they come from, the extractor rules run per statement, and the segment
fillers.

Definitions in --rules-dir replace the built-in files with the same path.`,
		Example: `  # Show the MySQL sharding rules
  shardparse rules

  # Show PostgreSQL rules as YAML
  shardparse rules --dialect postgresql -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)
			p, err := cmdCtx.Pipeline()
			if err != nil {
				return err
			}
			reg, err := p.Registry()
			if err != nil {
				return err
			}
			return cmdCtx.Renderer.Rules(rulesOutput(reg))
		},
	}
}

func rulesOutput(reg *rule.Registry) output.RulesOutput {
	feature, db := reg.Feature(), reg.DatabaseType()
	out := output.RulesOutput{
		Feature: feature,
		Dialect: db.Name(),
		Resources: []output.ResourceView{
			{Role: "statement", Path: rule.SQLStatementRuleDefinitionFileName(feature, db)},
			{Role: "extractor", Path: rule.ExtractorRuleDefinitionFileName(feature, db)},
			{Role: "general extractor", Path: rule.GeneralExtractorRuleDefinitionFileName()},
			{Role: "general filler", Path: rule.GeneralFillerRuleDefinitionFileName()},
		},
	}

	for _, b := range reg.Bindings() {
		out.Extractors = append(out.Extractors, output.ExtractorRuleView{
			ID:             b.ID,
			ExtractorClass: b.ExtractorClass,
			Layer:          string(b.Layer),
		})
	}
	for _, ctx := range reg.StatementContexts() {
		bindings, _ := reg.StatementExtractors(ctx)
		view := output.StatementRuleView{Context: string(ctx), Extractors: []string{}}
		for _, b := range bindings {
			view.Extractors = append(view.Extractors, b.ID)
		}
		out.Statements = append(out.Statements, view)
	}
	for _, f := range reg.FillerBindings() {
		out.Fillers = append(out.Fillers, output.FillerRuleView{
			SegmentClass: string(f.Kind),
			FillerClass:  f.FillerClass,
		})
	}
	return out
}
