package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/storekb/internal/logging"
	"github.com/Aman-CERP/storekb/internal/output"
	"github.com/Aman-CERP/storekb/internal/ui"
)

type logsOptions struct {
	follow  bool
	lines   int
	level   string
	pattern string
	noColor bool
	logFile string
	files   bool
}

func newLogsCmd() *cobra.Command {
	var opts logsOptions

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "View server logs",
		Long: `View and tail the storekb server log (~/.storekb/logs/server.log).

By default shows the last 50 lines. Use -f to follow new entries.`,
		Example: `  storekb logs                      # last 50 lines
  storekb logs -n 200 --level warn  # last 200 lines, warnings and errors
  storekb logs -f --filter search   # follow search events
  storekb logs --files              # list rotated log files`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogs(cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.follow, "follow", "f", false, "Follow log output (like tail -f)")
	cmd.Flags().IntVarP(&opts.lines, "lines", "n", 50, "Number of lines to show")
	cmd.Flags().StringVar(&opts.level, "level", "", "Minimum level (debug|info|warn|error)")
	cmd.Flags().StringVar(&opts.pattern, "filter", "", "Filter by pattern (regex)")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().StringVar(&opts.logFile, "file", "", "Path to log file")
	cmd.Flags().BoolVar(&opts.files, "files", false, "List the log file and its rotated generations")

	return cmd
}

func runLogs(cmd *cobra.Command, opts logsOptions) error {
	path, err := logging.FindLogFile(opts.logFile)
	if err != nil {
		return err
	}

	if opts.files {
		listLogFiles(cmd, path)
		return nil
	}

	var pattern *regexp.Regexp
	if opts.pattern != "" {
		if pattern, err = regexp.Compile(opts.pattern); err != nil {
			return fmt.Errorf("invalid filter pattern: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	viewer := logging.NewViewer(logging.ViewerConfig{
		Level:   opts.level,
		Pattern: pattern,
		NoColor: opts.noColor || ui.DetectNoColor() || !ui.IsTTY(out),
	}, out)

	if opts.follow {
		fmt.Fprintf(cmd.ErrOrStderr(), "Log file: %s\nFollowing... (Ctrl+C to stop)\n---\n", path)
		return runFollow(cmd.Context(), cmd, viewer, path)
	}

	entries, err := viewer.Tail(path, opts.lines)
	if err != nil {
		return err
	}
	viewer.Print(entries)
	return nil
}

func runFollow(ctx context.Context, cmd *cobra.Command, viewer *logging.Viewer, path string) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	entries := make(chan logging.LogEntry, 100)
	errCh := make(chan error, 1)
	go func() {
		errCh <- viewer.Follow(ctx, path, entries)
	}()

	for {
		select {
		case entry := <-entries:
			fmt.Fprintln(cmd.OutOrStdout(), viewer.FormatEntry(entry))
		case err := <-errCh:
			return err
		case <-ctx.Done():
			fmt.Fprintln(cmd.ErrOrStderr(), "\n---\nStopped.")
			return nil
		}
	}
}

func listLogFiles(cmd *cobra.Command, path string) {
	fields := []output.Field{{Key: "current", Value: path}}
	for _, f := range logging.RotatedFiles(path) {
		fields = append(fields, output.Field{Key: strconv.Itoa(f.Generation), Value: f.Path})
	}
	output.New(cmd.OutOrStdout()).KeyValues(fields...)
}
