package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"ArticlePublisher/internal/app"
	"ArticlePublisher/internal/config"
	"ArticlePublisher/internal/logging"
	"ArticlePublisher/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

type runOptions struct {
	topic       string
	destination string
	tags        []string
	configPath  string
	dryRun      bool
	output      string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "articlepublisher",
		Short:         "Generate and publish catalog buying guides",
		Long:          "articlepublisher turns a topic keyword into a compliant buying guide built from the store catalog, publishes it and records every visual asset it used.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "articlepublisher %s (commit: %s)\n", version, commit)
		},
	}
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline once for a topic keyword",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.topic, "topic", "", "topic keyword to write about")
	cmd.Flags().StringVar(&opts.destination, "destination", "", "destination blog (defaults to publishing.destination)")
	cmd.Flags().StringSliceVar(&opts.tags, "tags", nil, "comma separated article tags")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "path to config file")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "stop after validation without publishing")
	cmd.Flags().StringVar(&opts.output, "output", "", "write the validated document HTML to this file")
	_ = cmd.MarkFlagRequired("topic")
	return cmd
}

func runPipeline(ctx context.Context, out io.Writer, opts *runOptions) error {
	if opts.configPath != "" {
		if err := os.Setenv("ARTICLE_PUBLISHER_CONFIG", opts.configPath); err != nil {
			return err
		}
	}

	cfg := config.Load()
	logger := logging.NewWithFormat(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("application setup failed", "error", err)
		return err
	}
	defer application.Close()

	res, err := application.Run(ctx, application.Request(opts.topic, opts.destination, opts.tags, opts.dryRun))
	if res.Document != nil && opts.output != "" {
		if writeErr := os.WriteFile(opts.output, []byte(res.Document.HTML()), 0o644); writeErr != nil {
			logger.Warn("cannot write document", "path", opts.output, "error", writeErr)
		}
	}
	printResult(out, res)
	if err != nil {
		logger.Error("pipeline aborted", "run_id", res.RunID, "error", err)
		return err
	}
	return nil
}

func printResult(out io.Writer, res usecase.Result) {
	if res.RunID == "" {
		return
	}
	fmt.Fprintf(out, "run:        %s\n", res.RunID)
	if res.Topic.Keyword != "" {
		fmt.Fprintf(out, "topic:      %s (%d candidates, %d found, expanded=%t)\n",
			res.Topic.Keyword, len(res.Topic.Candidates), res.Topic.Found, res.Topic.Expanded)
	}
	if res.Document != nil {
		fmt.Fprintf(out, "document:   %q, %d chars, %d item links, %d visuals\n",
			res.Document.Title, res.Document.Metrics.Length, res.Document.Metrics.ItemLinks, len(res.Document.Assets))
	}
	if res.Report.Score > 0 || len(res.Report.Violations) > 0 {
		fmt.Fprintf(out, "compliance: %.1f%%\n", res.Report.Score)
		if len(res.Corrections) > 0 {
			fmt.Fprintf(out, "corrected:  %s\n", strings.Join(res.Corrections, ", "))
		}
		for _, v := range res.Report.Violations {
			fmt.Fprintf(out, "  violation %s: %s\n", v.Rule, v.Detail)
		}
		for _, w := range res.Report.Warnings {
			fmt.Fprintf(out, "  warning   %s: %s\n", w.Rule, w.Detail)
		}
	}
	if res.Published {
		fmt.Fprintf(out, "published:  %s (id %s)\n", res.Record.URL, res.Record.ExternalID)
	}
}
