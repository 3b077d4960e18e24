package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/leapstack-labs/shardparse/internal/cli/output"
	"github.com/leapstack-labs/shardparse/pkg/dialect"
	"github.com/leapstack-labs/shardparse/pkg/filler"
	"github.com/leapstack-labs/shardparse/pkg/grammar"
	"github.com/leapstack-labs/shardparse/pkg/pipeline"
	"github.com/leapstack-labs/shardparse/pkg/segment"
	"github.com/leapstack-labs/shardparse/pkg/tree"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// ErrNoStatements is returned when the input holds no SQL.
var ErrNoStatements = errors.New("no SQL statements given")

// ExtractOptions holds options for the extract command.
type ExtractOptions struct {
	File  string // Read statements from a file, "-" for stdin
	Watch bool   // Re-run when the file or the rules directory changes
}

// NewExtractCommand creates the extract command.
func NewExtractCommand() *cobra.Command {
	opts := &ExtractOptions{}
	cmd := &cobra.Command{
		Use:   "extract [sql...]",
		Short: "Extract segments from SQL statements",
		Long: `Parse SQL statements and print the segments the sharding rules extract
from them, with the source span of every value.

Statements are read from the arguments, from --file, or from stdin when
neither is given. Input may hold several statements separated by semicolons.
Parameter markers (?) are numbered from zero in source order.`,
		Example: `  # Extract from one statement
  shardparse extract "SELECT * FROM t_order LIMIT ?, 10"

  # PostgreSQL syntax
  shardparse extract --dialect postgresql "SELECT * FROM t LIMIT 5 OFFSET ?"

  # Extract every statement of a script as JSON
  shardparse extract -f queries.sql -o json

  # Re-run whenever the script or the rule definitions change
  shardparse extract -f queries.sql --rules-dir ./rules --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Read statements from a file (- for stdin)")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-run when the file or rules directory changes")

	return cmd
}

func runExtract(cmd *cobra.Command, args []string, opts *ExtractOptions) error {
	cmdCtx := NewCommandContext(cmd)
	if opts.Watch {
		return watchExtract(cmd, cmdCtx, opts)
	}

	sources, err := readSources(cmd, args, opts)
	if err != nil {
		return err
	}
	return extractSources(cmd.Context(), cmdCtx, sources)
}

func extractSources(ctx context.Context, cmdCtx *CommandContext, sources []string) error {
	db := cmdCtx.Cfg.Dialect
	var statements []string
	for _, src := range sources {
		statements = append(statements, grammar.Split(src, db)...)
	}
	if len(statements) == 0 {
		return ErrNoStatements
	}

	p, err := cmdCtx.Pipeline()
	if err != nil {
		return err
	}

	results := p.ParseAll(ctx, statements)
	views := make([]output.StatementView, len(results))
	for i, res := range results {
		views[i] = statementView(res, db)
	}

	out := output.NewStatementsOutput(views)
	cmdCtx.Logger.Debug("extraction finished",
		slog.Int("statements", out.Count.Total),
		slog.Int("failed", out.Count.Failed))

	if err := cmdCtx.Renderer.Statements(out); err != nil {
		return err
	}
	if out.Count.Failed > 0 {
		return fmt.Errorf("%d of %d statements failed", out.Count.Failed, out.Count.Total)
	}
	return nil
}

// watchExtract extracts from the file, then again after every change to it
// or to the rules directory, until interrupted.
func watchExtract(cmd *cobra.Command, cmdCtx *CommandContext, opts *ExtractOptions) error {
	if opts.File == "" || opts.File == "-" {
		return errors.New("--watch requires --file")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	paths := []string{opts.File}
	if cmdCtx.Cfg.RulesDir != "" {
		paths = append(paths, cmdCtx.Cfg.RulesDir)
	}
	w, err := newPathWatcher(cmdCtx.Logger, paths...)
	if err != nil {
		return err
	}

	run := func() {
		sources, err := readSources(cmd, nil, opts)
		if err == nil {
			err = extractSources(ctx, cmdCtx, sources)
		}
		if err != nil {
			cmdCtx.Renderer.Warnf("Error: %v\n", err)
		}
	}

	run()
	cmdCtx.Logger.Info("watching for changes", slog.Any("paths", paths))
	return w.Run(ctx, run)
}

func readSources(cmd *cobra.Command, args []string, opts *ExtractOptions) ([]string, error) {
	switch {
	case opts.File == "-":
		return readAll(cmd.InOrStdin())
	case opts.File != "":
		data, err := os.ReadFile(opts.File)
		if err != nil {
			return nil, fmt.Errorf("failed to read SQL file: %w", err)
		}
		return []string{string(data)}, nil
	case len(args) > 0:
		return args, nil
	case isTerminal(cmd.InOrStdin()):
		return nil, fmt.Errorf("%w: pass statements as arguments, with --file, or on stdin", ErrNoStatements)
	default:
		return readAll(cmd.InOrStdin())
	}
}

// isTerminal reports whether r is an interactive terminal, where reading
// until EOF would block on the user.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func readAll(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return []string{string(data)}, nil
}

func statementView(res pipeline.Result, db dialect.DatabaseType) output.StatementView {
	view := output.StatementView{SQL: res.SQL, Dialect: db.Name()}
	if res.Err != nil {
		view.Error = res.Err.Error()
		return view
	}
	view.ParametersCount = res.Statement.ParametersCount
	view.Limit = limitView(res.Statement)
	return view
}

func limitView(stmt *filler.SelectStatement) *output.LimitView {
	if stmt.Limit == nil {
		return nil
	}
	view := &output.LimitView{Span: spanView(stmt.Limit.Span())}
	if v, ok := stmt.Limit.RowCount(); ok {
		view.RowCount = valueView(v)
	}
	if v, ok := stmt.Limit.Offset(); ok {
		view.Offset = valueView(v)
	}
	return view
}

func valueView(v segment.Value) *output.ValueView {
	view := &output.ValueView{Span: spanView(v.Span())}
	switch v := v.(type) {
	case segment.LiteralValue:
		n := v.Value()
		view.Kind = output.KindLiteral
		view.Value = &n
	case segment.PlaceholderValue:
		i := v.Index()
		view.Kind = output.KindPlaceholder
		view.Index = &i
	}
	return view
}

func spanView(s tree.Span) output.SpanView {
	return output.SpanView{Start: s.Start, Stop: s.Stop}
}
