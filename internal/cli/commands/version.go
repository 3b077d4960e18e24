package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/leapstack-labs/shardparse/pkg/dialect"
	"github.com/leapstack-labs/shardparse/pkg/extractor"
	"github.com/spf13/cobra"
)

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version   string
	GitCommit string
	BuildDate string
}

// NewVersionCommand creates the version command.
func NewVersionCommand(info BuildInfo) *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version, dialects and built-in extractors",
		Long: `Display the shardparse version and build metadata, the SQL dialects the
front end understands, and the extractor implementations rule definitions
can bind to.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			writeVersion(cmd.OutOrStdout(), info, short)
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "Print only the version number")
	return cmd
}

func writeVersion(w io.Writer, info BuildInfo, short bool) {
	if short {
		_, _ = fmt.Fprintln(w, info.Version)
		return
	}

	_, _ = fmt.Fprintf(w, "shardparse v%s\n", info.Version)
	if info.GitCommit != "" && info.GitCommit != "unknown" {
		_, _ = fmt.Fprintf(w, "%-12s%s\n", "commit", info.GitCommit)
	}
	if info.BuildDate != "" && info.BuildDate != "unknown" {
		_, _ = fmt.Fprintf(w, "%-12s%s\n", "built", info.BuildDate)
	}

	names := make([]string, 0, len(dialect.All()))
	for _, db := range dialect.All() {
		names = append(names, db.Name())
	}
	_, _ = fmt.Fprintf(w, "%-12s%s\n", "dialects", strings.Join(names, ", "))
	_, _ = fmt.Fprintf(w, "%-12s%s\n", "extractors", strings.Join(extractor.Names(), ", "))
}
