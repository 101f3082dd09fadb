package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/effortless-metrics/mtpcompat/internal/collect"
	"github.com/effortless-metrics/mtpcompat/internal/config"
	"github.com/effortless-metrics/mtpcompat/internal/diff"
	"github.com/effortless-metrics/mtpcompat/internal/evidence"
	"github.com/effortless-metrics/mtpcompat/internal/logger"
	"github.com/effortless-metrics/mtpcompat/internal/overlay"
	"github.com/effortless-metrics/mtpcompat/internal/pipeline"
	"github.com/effortless-metrics/mtpcompat/internal/report"
	"github.com/effortless-metrics/mtpcompat/internal/runner"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run both toolchains against a device and diff the results",
	Long: `Runs the reference and candidate toolchains against an attached MTP
device, diffs their normalized output and writes an evidence bundle.

Exit codes:
  0  no unresolved diffs (every difference classified, no candidate defects)
  1  unresolved diffs present, investigation required
  2  argument or configuration error`,
	RunE: runHarness,
}

var (
	runConfigPath      string
	runDevice          string
	runAllowWrite      bool
	runEvidenceDir     string
	runExpectationsDir string
	runTimeout         int
	runTolerance       int64
	runVerbose         bool
)

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "Path to a harness configuration file")
	runCmd.Flags().StringVar(&runDevice, "device", "", "Target a specific device by VID:PID (e.g. 18d1:4ee1)")
	runCmd.Flags().BoolVar(&runAllowWrite, "allow-write", false, "Enable controlled write tests (uploads a sentinel file)")
	runCmd.Flags().StringVar(&runEvidenceDir, "evidence-dir", "", "Root directory for evidence output")
	runCmd.Flags().StringVar(&runExpectationsDir, "expectations-dir", "", "Directory holding per-device expectation overlays")
	runCmd.Flags().IntVar(&runTimeout, "timeout", 0, "Per-command timeout in seconds")
	runCmd.Flags().Int64Var(&runTolerance, "ts-tolerance", -1, "Acceptable mtime difference in seconds (overridden by overlay)")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Enable debug logging")
}

func runHarness(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(runConfigPath)
	if err != nil {
		return err
	}
	applyFlagOverrides(cfg)

	logger.Initialize(cfg.Logging)
	log := logger.New("harness")

	runID := uuid.NewString()[:8]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	printBanner(runID, cfg)

	// Overlay problems are configuration errors: they surface before any
	// tool runs.
	ov, overlayPath, err := overlay.LoadForTarget(cfg.ExpectationsDir, cfg.Device)
	if err != nil {
		return err
	}
	if overlayPath != "" {
		log.Info("expectation overlay loaded", logger.String("path", overlayPath))
	}

	refRunner := runner.New(time.Duration(cfg.TimeoutSeconds)*time.Second, log)
	candTimeout := time.Duration(cfg.TimeoutSeconds+cfg.CandidateExtraTimeoutSeconds) * time.Second
	candRunner := runner.New(candTimeout, log)

	checkTools(cfg)

	reference := collect.NewReference(refRunner, cfg.Reference, cfg.Device, log)
	candidate := collect.NewCandidate(candRunner, cfg.CandidateCommand, cfg.Device, log)

	toolVersions := map[string]string{
		cfg.Reference.Detect:    refRunner.ToolVersion(ctx, cfg.Reference.Detect),
		cfg.CandidateCommand[0]: candRunner.ToolVersion(ctx, cfg.CandidateCommand[0]),
	}

	pipe := pipeline.New(log)
	rep, logs := pipe.Run(ctx, reference, candidate, ov, pipeline.Options{
		RunID:            runID,
		Target:           cfg.Device,
		ToleranceSeconds: cfg.TimestampToleranceSeconds,
		AllowWrite:       cfg.AllowWrite,
		ToolVersions:     toolVersions,
		OverlayPath:      overlayPath,
	})

	if cfg.AllowWrite {
		rep.WriteTests = collect.RunWriteTests(ctx, reference, candidate, log)
	}

	sink := evidence.NewSink(cfg.EvidenceDir, log)
	runDir, err := sink.Write(rep, logs.Reference, logs.Candidate)
	if err != nil {
		return fmt.Errorf("writing evidence: %w", err)
	}

	printSummary(rep, runDir)

	if rep.NeedsInvestigation() {
		return ErrInvestigationRequired
	}
	return nil
}

func applyFlagOverrides(cfg *config.Config) {
	if runDevice != "" {
		cfg.Device = runDevice
	}
	if runAllowWrite {
		cfg.AllowWrite = true
	}
	if runEvidenceDir != "" {
		cfg.EvidenceDir = runEvidenceDir
	}
	if runExpectationsDir != "" {
		cfg.ExpectationsDir = runExpectationsDir
	}
	if runTimeout > 0 {
		cfg.TimeoutSeconds = runTimeout
	}
	if runTolerance >= 0 {
		cfg.TimestampToleranceSeconds = runTolerance
	}
	if runVerbose {
		cfg.Logging.Level = "debug"
	}
}

func printBanner(runID string, cfg *config.Config) {
	header := color.New(color.Bold)
	header.Println("MTP Compatibility Harness")
	device := cfg.Device
	if device == "" {
		device = "(auto-detect first found)"
	}
	fmt.Printf("  Run ID     : %s\n", runID)
	fmt.Printf("  Device     : %s\n", device)
	fmt.Printf("  Write tests: %v\n", cfg.AllowWrite)
	fmt.Printf("  Evidence   : %s\n\n", cfg.EvidenceDir)
}

func checkTools(cfg *config.Config) {
	ok := color.New(color.FgGreen).SprintFunc()
	missing := color.New(color.FgRed).SprintFunc()

	tools := []string{
		cfg.Reference.Detect,
		cfg.Reference.Folders,
		cfg.Reference.Files,
		cfg.CandidateCommand[0],
	}
	for _, tool := range tools {
		if runner.LookTool(tool) {
			fmt.Printf("  %s %s\n", ok("✓"), tool)
		} else {
			fmt.Printf("  %s %s (results for this side may be empty)\n", missing("✗"), tool)
		}
	}
	fmt.Println()
}

func printSummary(rep *report.Report, runDir string) {
	header := color.New(color.Bold)
	header.Println("Results")

	fmt.Printf("  Total diffs: %d\n", rep.Summary.TotalDiffs)
	for _, label := range diff.AllLabels() {
		if n := rep.Summary.ByLabel[label]; n > 0 {
			fmt.Printf("    %-20s: %d\n", label, n)
		}
	}
	if len(rep.WriteTests) > 0 {
		status := color.GreenString("PASS")
		if !rep.WriteTestsPassed() {
			status = color.RedString("FAIL")
		}
		fmt.Printf("  Write tests: %s\n", status)
	}
	fmt.Println()

	rep.WriteTable(os.Stdout)
	fmt.Printf("\n  Evidence dir: %s\n", runDir)
}
