package commands

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/leapstack-labs/shardparse/internal/cli/output"
	"github.com/leapstack-labs/shardparse/internal/config"
	"github.com/leapstack-labs/shardparse/pkg/pipeline"
	"github.com/leapstack-labs/shardparse/pkg/rule"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext collects the config, logger and renderer stored on the
// command's context by the root command.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := config.FromContext(cmd.Context())
	mode := output.Mode(cfg.Output)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)
	if cfg.NoColor {
		r = output.NewRendererWithProfile(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode, termenv.Ascii)
	}
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: r,
	}
}

// Pipeline builds the extraction pipeline for the configured feature and
// dialect.
func (c *CommandContext) Pipeline() (*pipeline.Pipeline, error) {
	opts := []pipeline.Option{
		pipeline.WithLogger(c.Logger),
		pipeline.WithFeature(c.Cfg.Feature),
		pipeline.WithDatabaseType(c.Cfg.Dialect),
	}

	fsys, err := rulesFS(c.Cfg.RulesDir)
	if err != nil {
		return nil, err
	}
	if fsys != nil {
		c.Logger.Debug("using rules directory", slog.String("dir", c.Cfg.RulesDir))
		opts = append(opts, pipeline.WithRulesFS(fsys))
	}
	return pipeline.New(opts...), nil
}

// rulesFS layers dir over the embedded rule definitions. It returns nil when
// dir is empty.
func rulesFS(dir string) (fs.FS, error) {
	if dir == "" {
		return nil, nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("rules directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("rules directory %s is not a directory", dir)
	}
	return rule.Overlay(os.DirFS(dir), rule.Resources()), nil
}
