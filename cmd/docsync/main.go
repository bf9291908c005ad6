package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"docsync/internal/config"
	"docsync/internal/generator"
	"docsync/internal/git"
	"docsync/internal/markdown"
	"docsync/internal/storage"
	"docsync/internal/verify"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:           "docsync",
		Short:         "Regenerate documentation pages from README, example and API docs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetLevel(log.DebugLevel)
			}
		},
	}
	configPath string
	verbose    bool
	logger     = log.NewWithOptions(os.Stderr, log.Options{Prefix: "docsync"})
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "docsync.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	generateCmd.Flags().String("report", "", "Write a JSON run report to this path")
	checkCmd.Flags().Bool("git", false, "Also list generated pages that differ from HEAD")
	historyCmd.Flags().IntP("limit", "n", 10, "Number of runs to show")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(outlineCmd)
}

// setup loads the configuration and wires the pipeline.
func setup() (*config.Config, *generator.Pipeline, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	p, err := generator.NewFromConfig(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return cfg, p, nil
}

// recordRun stores the run in the state database. History is best effort:
// failing to record never fails the command.
func recordRun(ctx context.Context, cfg *config.Config, run *storage.Run) {
	if cfg.State.DB == "" {
		return
	}
	store, err := storage.NewSQLiteStore(cfg.Path(cfg.State.DB))
	if err != nil {
		logger.Warn("failed to open state database", "err", err)
		return
	}
	defer store.Close()
	if _, err := store.SaveRun(ctx, run); err != nil {
		logger.Warn("failed to record run", "err", err)
	}
}

// lastGoodPages returns the page digests of the last successful run, or nil
// when there is no history.
func lastGoodPages(ctx context.Context, cfg *config.Config) []storage.PageRecord {
	if cfg.State.DB == "" {
		return nil
	}
	store, err := storage.NewSQLiteStore(cfg.Path(cfg.State.DB))
	if err != nil {
		logger.Debug("no run history", "err", err)
		return nil
	}
	defer store.Close()
	pages, err := store.LastPages(ctx)
	if err != nil {
		logger.Warn("failed to read last run", "err", err)
		return nil
	}
	return pages
}

func pageRecords(digests []generator.PageDigest) []storage.PageRecord {
	records := make([]storage.PageRecord, 0, len(digests))
	for _, d := range digests {
		records = append(records, storage.PageRecord{Path: d.Path, SHA256: d.SHA256, Size: d.Size})
	}
	return records
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Regenerate the overview, example and API reference pages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, p, err := setup()
		if err != nil {
			return err
		}

		fmt.Printf("📝 Generating documentation for %d modules...\n", len(p.Modules()))
		start := time.Now()
		run := &storage.Run{Mode: "generate", StartedAt: start, Modules: p.Modules()}

		var report *generator.Report
		reportPath, _ := cmd.Flags().GetString("report")
		if reportPath != "" {
			report = generator.NewReport("generate")
		}

		res, err := p.RunWithReport(ctx, report)
		run.DurationMS = time.Since(start).Milliseconds()
		if reportPath != "" {
			if saveErr := report.Save(reportPath); saveErr != nil {
				logger.Warn("failed to save report", "path", reportPath, "err", saveErr)
			} else {
				fmt.Printf("📊 Run report saved to %s\n", reportPath)
			}
		}
		if err != nil {
			run.Status, run.Error = "error", err.Error()
			recordRun(ctx, cfg, run)
			return err
		}
		run.Status, run.Pages = "ok", pageRecords(res.Pages)
		recordRun(ctx, cfg, run)

		for _, d := range res.Pages {
			fmt.Printf("  -> %s (%d bytes, sha256 %s)\n", d.Path, d.Size, d.SHA256[:12])
		}
		fmt.Printf("✅ Documentation generated in %v.\n", time.Since(start).Round(time.Millisecond))
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Regenerate the pages and fail if any of them changed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, p, err := setup()
		if err != nil {
			return err
		}

		fmt.Println("🔍 Checking that documentation is up to date...")
		start := time.Now()
		run := &storage.Run{Mode: "check", StartedAt: start, Modules: p.Modules()}

		baseline := lastGoodPages(ctx, cfg)
		report, err := verify.Check(ctx, cfg.Outputs(), p)
		run.DurationMS = time.Since(start).Milliseconds()
		switch {
		case errors.Is(err, verify.ErrDrift):
			run.Status, run.Error = "drift", err.Error()
		case err != nil:
			run.Status, run.Error = "error", err.Error()
		default:
			run.Status = "ok"
		}
		if report != nil {
			after := make([]generator.PageDigest, len(report.Pages))
			for i, pc := range report.Pages {
				after[i] = pc.After
			}
			run.Pages = pageRecords(after)
		}
		recordRun(ctx, cfg, run)

		if report != nil {
			report.SetBaseline(baseline)
			for _, pc := range report.Pages {
				if !pc.Drifted() {
					fmt.Printf("  ✅ %s\n", pc.After.Path)
					continue
				}
				fmt.Printf("  ⚠️  %s\n", pc.After.Path)
				if pc.Baseline != "" {
					fmt.Printf("     last good run sha256 %s, regenerated %s\n", pc.Baseline[:12], pc.After.SHA256[:12])
				}
			}
		}

		if withGit, _ := cmd.Flags().GetBool("git"); withGit && report != nil {
			reportGitChanges(ctx, cfg)
		}

		if err != nil {
			return err
		}
		fmt.Println("✅ Documentation is up to date.")
		return nil
	},
}

func reportGitChanges(ctx context.Context, cfg *config.Config) {
	var rel []string
	for _, out := range cfg.Outputs() {
		r, err := filepath.Rel(cfg.Project.Root, out)
		if err != nil {
			r = out
		}
		rel = append(rel, r)
	}
	changes, err := git.ChangedFiles(ctx, cfg.Project.Root, "HEAD", rel...)
	if err != nil {
		logger.Warn("git comparison skipped", "err", err)
		return
	}
	if len(changes) == 0 {
		fmt.Println("  -> all generated pages match HEAD")
		return
	}
	for _, c := range changes {
		fmt.Printf("  -> %s differs from HEAD (%d lines)\n", c.Path, len(c.ChangedLines))
	}
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the most recent generate and check runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfg.State.DB == "" {
			return fmt.Errorf("no state database configured")
		}
		store, err := storage.NewSQLiteStore(cfg.Path(cfg.State.DB))
		if err != nil {
			return fmt.Errorf("failed to open state database: %w", err)
		}
		defer store.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := store.LatestRuns(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded yet.")
			return nil
		}
		for _, r := range runs {
			fmt.Printf("#%d %s %-8s %-5s %5dms %d pages\n",
				r.ID, r.StartedAt.Local().Format(time.DateTime), r.Mode, r.Status, r.DurationMS, len(r.Pages))
			if r.Error != "" {
				fmt.Printf("    %s\n", r.Error)
			}
		}
		return nil
	},
}

var outlineCmd = &cobra.Command{
	Use:   "outline <page>",
	Short: "Print the heading outline of a markdown page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		headings := markdown.Outline(body)
		fmt.Print(markdown.Render(headings))
		for _, p := range markdown.Check(headings) {
			fmt.Printf("⚠️  %s\n", p)
		}
		return nil
	},
}
