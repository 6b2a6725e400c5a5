// Command chartproof is the CLI for the chartproof toolchain.
// It canonicalizes generated SVG charts for reproducible diffs, verifies
// identifier integrity, and renders benchmark results as canonical charts.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/chartproof/chartproof/core/bench"
	"github.com/chartproof/chartproof/core/benchdb"
	"github.com/chartproof/chartproof/core/canon"
	apperrors "github.com/chartproof/chartproof/core/errors"
	"github.com/chartproof/chartproof/core/plot"
	"github.com/chartproof/chartproof/core/svgcheck"
	"github.com/chartproof/chartproof/internal/archive"
	"github.com/chartproof/chartproof/internal/logging"
)

const version = "0.1.0"

// CLI defines the command-line interface for chartproof.
var CLI struct {
	// Global flags
	Debug    bool `help:"Enable debug logging"`
	JSONLogs bool `name:"json-logs" help:"Emit logs as JSON"`

	Canonicalize CanonicalizeCmd `cmd:"" help:"Canonicalize an SVG chart (in place unless an output path is given)"`
	Verify       VerifyCmd       `cmd:"" help:"Verify id and reference integrity of an SVG file"`
	Plot         PlotCmd         `cmd:"" help:"Render benchmark results as canonical SVG charts"`
	Bench        BenchGroup      `cmd:"" help:"Benchmark run history (import, list)"`
	Version      VersionCmd      `cmd:"" help:"Print version information"`
}

// BenchGroup contains run-history operations.
type BenchGroup struct {
	Import BenchImportCmd `cmd:"" help:"Import a benchmark results file as a labeled run"`
	List   BenchListCmd   `cmd:"" help:"List stored runs"`
}

// CanonicalizeCmd canonicalizes one SVG file.
type CanonicalizeCmd struct {
	Input  string `arg:"" help:"Path to SVG file" type:"existingfile"`
	Output string `arg:"" optional:"" help:"Output path (default: overwrite input)" type:"path"`
	Check  bool   `help:"Report whether the file is already canonical; writes nothing"`
}

func (c *CanonicalizeCmd) Run() error {
	if c.Check {
		canonical, got, want, err := canon.CheckFile(c.Input)
		if err != nil {
			return err
		}
		if !canonical {
			return fmt.Errorf("%s is not canonical (blake3 %s, canonical form %s)", c.Input, got[:16], want[:16])
		}
		fmt.Printf("%s is canonical (blake3 %s)\n", c.Input, got[:16])
		return nil
	}

	if err := canon.File(c.Input, c.Output); err != nil {
		return err
	}
	dst := c.Output
	if dst == "" {
		dst = c.Input
	}
	logging.Debug("canonicalized", "input", c.Input, "output", dst)
	fmt.Printf("Canonicalized: %s\n", dst)
	return nil
}

// VerifyCmd checks identifier integrity of an SVG file.
type VerifyCmd struct {
	Path string `arg:"" help:"Path to SVG file" type:"existingfile"`
}

func (c *VerifyCmd) Run() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return apperrors.NewIO("read", c.Path, err)
	}
	report, err := svgcheck.Check(data)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %s\n", c.Path, report.Summary())
	for _, id := range report.Duplicates {
		fmt.Printf("  duplicate id: %s\n", id)
	}
	for _, ref := range report.Dangling {
		fmt.Printf("  dangling reference: <%s %s> -> #%s\n", ref.Element, ref.Attr, ref.Target)
	}
	if !report.OK() {
		return apperrors.NewValidation("document", "identifier integrity check failed")
	}
	return nil
}

// PlotCmd renders benchmark results as charts.
type PlotCmd struct {
	Results  string `arg:"" help:"Benchmark results JSON file" type:"existingfile"`
	OutDir   string `name:"out-dir" default:"plots" help:"Output directory for charts" type:"path"`
	Baseline string `help:"Overlay a stored run (by label) as baseline series"`
	DB       string `default:"chartproof.db" help:"Run history database path" type:"path"`
	Bundle   string `help:"Also pack the charts into a tar.xz bundle at this path" type:"path"`
}

func (c *PlotCmd) Run() error {
	res, err := bench.Load(c.Results)
	if err != nil {
		return err
	}
	if len(res.Measurements) == 0 {
		return apperrors.NewValidation("results", "no plottable benchmark entries found")
	}

	ms := res.Measurements
	if c.Baseline != "" {
		db, err := benchdb.Open(c.DB)
		if err != nil {
			return err
		}
		defer db.Close()

		base, err := db.LoadRun(context.Background(), c.Baseline)
		if err != nil {
			return err
		}
		for i := range base {
			base[i].MapType += " (baseline)"
		}
		ms = append(ms, base...)
	}

	paths, err := plot.RenderAll(ms, c.OutDir)
	if err != nil {
		return err
	}
	fmt.Printf("Rendered %d charts to %s\n", len(paths), c.OutDir)

	if c.Bundle != "" {
		if err := archive.CreateTarXz(paths, c.Bundle); err != nil {
			return fmt.Errorf("failed to create bundle: %w", err)
		}
		fmt.Printf("Created: %s\n", c.Bundle)
	}
	return nil
}

// BenchImportCmd imports a results file as a run.
type BenchImportCmd struct {
	Results string `arg:"" help:"Benchmark results JSON file" type:"existingfile"`
	Label   string `help:"Run label (default: results file name without extension)"`
	DB      string `default:"chartproof.db" help:"Run history database path" type:"path"`
}

func (c *BenchImportCmd) Run() error {
	res, err := bench.Load(c.Results)
	if err != nil {
		return err
	}

	label := c.Label
	if label == "" {
		base := filepath.Base(c.Results)
		label = strings.TrimSuffix(base, filepath.Ext(base))
	}

	db, err := benchdb.Open(c.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	runID, err := db.ImportRun(context.Background(), label, c.Results, res)
	if err != nil {
		return err
	}
	fmt.Printf("Imported run %d (%s): %d measurements from %s\n",
		runID, label, len(res.Measurements), c.Results)
	return nil
}

// BenchListCmd lists stored runs.
type BenchListCmd struct {
	DB string `default:"chartproof.db" help:"Run history database path" type:"path"`
}

func (c *BenchListCmd) Run() error {
	db, err := benchdb.Open(c.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns(context.Background())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs stored.")
		return nil
	}
	for _, run := range runs {
		fmt.Printf("%4d  %-20s  %s  %4d measurements  %s\n",
			run.ID, run.Label, run.ImportedAt.Format("2006-01-02 15:04"),
			run.Measurements, run.Host.HostName)
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("chartproof %s (sqlite driver: %s)\n", version, benchdb.DriverInfo())
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("chartproof"),
		kong.Description("Reproducible benchmark charts - canonical SVG output, byte for byte"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	level := logging.LevelInfo
	if CLI.Debug {
		level = logging.LevelDebug
	}
	format := logging.FormatText
	if CLI.JSONLogs {
		format = logging.FormatJSON
	}
	logging.InitLogger(level, format)

	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
