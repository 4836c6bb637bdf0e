package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/ppjets/sim"
	"github.com/inference-sim/ppjets/sim/generator"
	"github.com/inference-sim/ppjets/sim/histo"
	"github.com/inference-sim/ppjets/sim/jets"
	"github.com/inference-sim/ppjets/sim/publish"
	"github.com/inference-sim/ppjets/sim/trace"
)

// runOptions carries the run inputs that are not part of sim.RunConfig.
type runOptions struct {
	extraSettings []string
	traceLevel    trace.TraceLevel
	upload        string
	region        string
}

// newPutObjectClient builds the upload client. Tests replace it.
var newPutObjectClient = func(ctx context.Context, region string) (publish.PutObjectAPI, error) {
	return publish.NewS3Client(ctx, region)
}

// outputFilesystem roots an OS filesystem at the directory of output and
// returns the file name inside it.
func outputFilesystem(output string) (billy.Filesystem, string, error) {
	abs, err := filepath.Abs(output)
	if err != nil {
		return nil, "", err
	}
	return osfs.New(filepath.Dir(abs)), filepath.Base(abs), nil
}

// generatorSettings returns the ordered setting lines for one run: the
// configured lines, then the seed, then any extra lines.
func generatorSettings(cfg sim.RunConfig, extra []string) []string {
	lines := append([]string(nil), cfg.Generator...)
	lines = append(lines,
		"Random:setSeed = on",
		fmt.Sprintf("Random:seed = %d", cfg.Seed),
	)
	return append(lines, extra...)
}

// runAnalysis wires the generator, the jet clusterer and the histogram
// registry, runs the pipeline and prints its statistics. The output file is
// written to path on fs and optionally uploaded afterwards.
func runAnalysis(ctx context.Context, cfg sim.RunConfig, opts runOptions, fs billy.Filesystem, path string) error {
	var loc publish.Location
	if opts.upload != "" {
		var err error
		if loc, err = publish.ParseS3URI(opts.upload, path); err != nil {
			return err
		}
	}

	gen := generator.New()
	if err := gen.ReadLines(generatorSettings(cfg, opts.extraSettings)); err != nil {
		return fmt.Errorf("generator settings: %w", err)
	}

	clusterer, err := jets.NewClusterer(cfg.Jets.Algorithm, cfg.Jets.Radius)
	if err != nil {
		return err
	}
	registry := histo.NewRegistry(cfg.Label, path, fs)

	var rt *trace.RunTrace
	if opts.traceLevel == trace.TraceLevelEvents {
		rt = trace.NewRunTrace(trace.TraceConfig{Level: opts.traceLevel})
	}

	metrics, err := sim.Execute(gen, clusterer, registry, cfg, rt)
	if err != nil {
		return err
	}
	metrics.Print()
	if rt.Enabled() {
		trace.Summarize(rt).Print(os.Stdout)
	}
	info := gen.Info()
	for _, proc := range info.Processes() {
		s, e := info.ProcessSigma(proc.Code)
		logrus.Infof("%s (%d): %d events, %.4e +- %.4e mb", proc.Name, proc.Code, proc.Accepted, s, e)
	}
	sigma, sigmaErr := info.SigmaGen()
	logrus.Infof("Generated cross section %.4e +- %.4e mb", sigma, sigmaErr)

	if opts.upload == "" {
		return nil
	}
	client, err := newPutObjectClient(ctx, opts.region)
	if err != nil {
		return fmt.Errorf("upload client: %w", err)
	}
	return publish.NewUploader(client, registry.Filesystem()).Upload(ctx, registry.OutputPath(), loc)
}
