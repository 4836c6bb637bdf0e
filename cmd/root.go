package cmd

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/ppjets/sim"
	"github.com/inference-sim/ppjets/sim/trace"
)

var (
	// CLI flags for the run definition
	numEvents int64  // Number of generator calls
	seed      int64  // Master random seed
	output    string // Output YODA file
	label     string // Run label prefixing every histogram path
	runCard   string // Optional YAML run card
	logLevel  string // Log verbosity level

	// CLI flags for the generator
	extraSettings []string // Extra "Key = value" generator lines, applied last

	// CLI flags for jet reconstruction
	jetRadius    float64 // Distance parameter R
	jetPtMin     float64 // Inclusive jet threshold (GeV)
	jetAlgorithm string  // antikt, kt or cambridge

	// CLI flags for diagnostics and publishing
	traceLevel string // none or events
	uploadURI  string // s3://bucket/key destination for the output file
	awsRegion  string // Region for the upload client
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "ppjets",
	Short: "Jet kinematics analysis of generated proton-proton collisions",
}

// runCmd generates events, clusters jets and writes the histograms
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the jet analysis",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg := sim.DefaultRunConfig()
		if runCard != "" {
			cfg, err = loadRunCard(runCard)
			if err != nil {
				logrus.Fatalf("Failed to load run card: %v", err)
			}
		}
		applyRunFlags(cmd, &cfg)
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("Invalid run configuration: %v", err)
		}
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Unknown trace level %q; valid: none, events", traceLevel)
		}

		fs, path, err := outputFilesystem(cfg.Output)
		if err != nil {
			logrus.Fatalf("Output path %s: %v", cfg.Output, err)
		}

		logrus.Infof("Starting run %s: %d events, seed %d, output %s", cfg.Label, cfg.Events, cfg.Seed, cfg.Output)
		startTime := time.Now()

		opts := runOptions{
			extraSettings: extraSettings,
			traceLevel:    trace.TraceLevel(traceLevel),
			upload:        uploadURI,
			region:        awsRegion,
		}
		if err := runAnalysis(context.Background(), cfg, opts, fs, path); err != nil {
			logrus.Fatalf("Run failed: %v", err)
		}

		logrus.Infof("Run complete in %s.", time.Since(startTime).Round(time.Millisecond))
	},
}

// applyRunFlags overlays explicitly set flags on cfg.
func applyRunFlags(cmd *cobra.Command, cfg *sim.RunConfig) {
	flags := cmd.Flags()
	if flags.Changed("events") {
		cfg.Events = int(numEvents)
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("output") {
		cfg.Output = output
	}
	if flags.Changed("label") {
		cfg.Label = label
	}
	if flags.Changed("jet-r") {
		cfg.Jets.Radius = jetRadius
	}
	if flags.Changed("jet-ptmin") {
		cfg.Jets.PtMin = jetPtMin
	}
	if flags.Changed("jet-algorithm") {
		cfg.Jets.Algorithm = jetAlgorithm
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// registerRunFlags binds the run flags of c to the package variables.
func registerRunFlags(c *cobra.Command) {
	c.Flags().Int64Var(&numEvents, "events", sim.DefaultNumberOfEvents, "Number of events to generate")
	c.Flags().Int64Var(&seed, "seed", sim.DefaultSeed, "Master seed (sets Random:setSeed and Random:seed)")
	c.Flags().StringVar(&output, "output", sim.DefaultOutputPath, "Output YODA file")
	c.Flags().StringVar(&label, "label", sim.DefaultRunLabel, "Run label prefixing histogram paths")
	c.Flags().StringVar(&runCard, "config", "", "YAML run card; explicit flags override its values")
	c.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	// Generator configs
	c.Flags().StringArrayVar(&extraSettings, "set", nil, `Extra generator setting, e.g. --set "PartonLevel:MPI = off" (repeatable)`)

	// Jet configs
	c.Flags().Float64Var(&jetRadius, "jet-r", 0.4, "Jet distance parameter R")
	c.Flags().Float64Var(&jetPtMin, "jet-ptmin", 20.0, "Minimum jet pT in GeV")
	c.Flags().StringVar(&jetAlgorithm, "jet-algorithm", sim.JetAlgorithmAntiKt, "Jet algorithm (antikt, kt, cambridge)")

	// Diagnostics and publishing
	c.Flags().StringVar(&traceLevel, "trace-level", string(trace.TraceLevelNone), "Event trace level (none, events)")
	c.Flags().StringVar(&uploadURI, "upload", "", "Upload the output file to s3://bucket/key after the run")
	c.Flags().StringVar(&awsRegion, "region", "", "AWS region for --upload (default from the AWS config chain)")
}

// init sets up CLI flags and subcommands
func init() {
	registerRunFlags(runCmd)

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
