package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/shardparse/internal/cli/output"
	"github.com/leapstack-labs/shardparse/pkg/dialect"
	"github.com/leapstack-labs/shardparse/pkg/grammar"
	"github.com/leapstack-labs/shardparse/pkg/pipeline"
	"github.com/spf13/cobra"
)

const (
	replPrompt         = "shardparse> "
	replContinuePrompt = "       ...> "
)

// REPLOptions holds options for the repl command.
type REPLOptions struct {
	History string // Readline history file
}

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	opts := &REPLOptions{}
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Extract segments interactively",
		Long: `Start an interactive session that extracts segments from each SQL
statement entered. Statements end with a semicolon and may span lines.

Type .help for the session commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.History, "history", "", "History file (default: no history)")

	return cmd
}

func runREPL(cmd *cobra.Command, opts *REPLOptions) error {
	session, err := newREPLSession(cmd.Context(), NewCommandContext(cmd))
	if err != nil {
		return err
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     opts.History,
		AutoComplete:    newREPLCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "shardparse REPL (%s, feature %s)\n", session.db.Name(), session.feature)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			session.Reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		prompt, quit := session.Eval(line)
		if quit {
			return nil
		}
		rl.SetPrompt(prompt)
	}
}

// replSession evaluates REPL input. It buffers lines until a statement is
// terminated with a semicolon.
type replSession struct {
	ctx      context.Context
	cmdCtx   *CommandContext
	db       dialect.DatabaseType
	feature  string
	pipeline *pipeline.Pipeline
	pending  strings.Builder
}

func newREPLSession(ctx context.Context, cmdCtx *CommandContext) (*replSession, error) {
	p, err := cmdCtx.Pipeline()
	if err != nil {
		return nil, err
	}
	return &replSession{
		ctx:      ctx,
		cmdCtx:   cmdCtx,
		db:       p.DatabaseType(),
		feature:  p.Feature(),
		pipeline: p,
	}, nil
}

// Reset drops any partially entered statement.
func (s *replSession) Reset() {
	s.pending.Reset()
}

// Eval handles one input line and returns the prompt for the next one.
func (s *replSession) Eval(line string) (prompt string, quit bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return s.prompt(), false
	}

	if s.pending.Len() == 0 && strings.HasPrefix(line, ".") {
		return replPrompt, s.dotCommand(line)
	}

	s.pending.WriteString(line)
	if !strings.HasSuffix(line, ";") {
		s.pending.WriteString("\n")
		return replContinuePrompt, false
	}

	script := s.pending.String()
	s.pending.Reset()
	s.extract(script)
	return replPrompt, false
}

func (s *replSession) prompt() string {
	if s.pending.Len() > 0 {
		return replContinuePrompt
	}
	return replPrompt
}

func (s *replSession) extract(script string) {
	r := s.cmdCtx.Renderer
	statements := grammar.Split(script, s.db)
	if len(statements) == 0 {
		return
	}

	results := s.pipeline.ParseAll(s.ctx, statements)
	views := make([]output.StatementView, len(results))
	for i, res := range results {
		views[i] = statementView(res, s.db)
	}
	if err := r.Statements(output.NewStatementsOutput(views)); err != nil {
		r.Warnf("Error: %v\n", err)
	}
	r.Println("")
}

func (s *replSession) dotCommand(line string) (quit bool) {
	r := s.cmdCtx.Renderer
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(r.Writer())

	case ".dialect":
		if len(parts) < 2 {
			r.Printf("%s\n", s.db.Name())
			return false
		}
		if err := s.useDialect(parts[1]); err != nil {
			r.Warnf("Error: %v\n", err)
			return false
		}
		r.Printf("Using %s\n", s.db.Name())

	case ".rules":
		reg, err := s.pipeline.Registry()
		if err != nil {
			r.Warnf("Error: %v\n", err)
			return false
		}
		if err := r.Rules(rulesOutput(reg)); err != nil {
			r.Warnf("Error: %v\n", err)
		}

	default:
		r.Warnf("Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func (s *replSession) useDialect(name string) error {
	db, err := dialect.Parse(name)
	if err != nil {
		return err
	}
	cfg := *s.cmdCtx.Cfg
	cfg.Dialect = db
	cmdCtx := *s.cmdCtx
	cmdCtx.Cfg = &cfg

	p, err := cmdCtx.Pipeline()
	if err != nil {
		return err
	}
	s.cmdCtx = &cmdCtx
	s.pipeline = p
	s.db = db
	return nil
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help            Show this help message
  .dialect [name]  Show or switch the SQL dialect
  .rules           Show the parsing rules in use
  .quit / .exit    Exit the REPL

Tips:
  - Statements must end with a semicolon (;)
  - Parameter markers (?) are numbered from zero per statement
  - Use arrow keys to navigate history
`
	_, _ = fmt.Fprintln(w, help)
}

// newREPLCompleter completes dot-commands and dialect names.
func newREPLCompleter() *readline.PrefixCompleter {
	var dialects []readline.PrefixCompleterInterface
	for _, db := range dialect.All() {
		dialects = append(dialects, readline.PcItem(db.Name()))
	}
	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".dialect", dialects...),
		readline.PcItem(".rules"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
