// Command navpathc is the offline compiler: it reads a fixture source
// document and build configuration and writes a queryable snapshot.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/dshills/navpath/internal/buildcfg"
	"github.com/dshills/navpath/internal/fixture"
	"github.com/dshills/navpath/internal/logx"
	"github.com/dshills/navpath/pkg/navpath"
)

const version = "0.1.0"

var (
	sourcePath = flag.String("source", "", "Path to JSON fixture source document (required)")
	configPath = flag.String("config", "", "Path to YAML build config (required)")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	versionF   = flag.Bool("version", false, "Print version and exit")
	help       = flag.Bool("help", false, "Show help message")
)

func main() {
	flag.Parse()

	if *versionF {
		fmt.Printf("navpathc version %s\n", version)
		os.Exit(0)
	}
	if *help {
		printUsage()
		os.Exit(0)
	}
	if *sourcePath == "" || *configPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -source and -config are both required")
		printUsage()
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logx.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	log := logx.WithComponent("navpathc")

	cfg, err := buildcfg.LoadBuildConfig(*configPath)
	if err != nil {
		return fmt.Errorf("load build config: %w", err)
	}

	acc, err := fixture.Load(*sourcePath)
	if err != nil {
		return fmt.Errorf("load source fixture: %w", err)
	}

	log.Info("compiling snapshot", "source", *sourcePath, "output", cfg.OutputPath)

	report, err := navpath.Compile(acc, cfg.OutputPath, navpath.BuildOptions{
		LandmarkCount:  cfg.LandmarkCount,
		IncludeGlobals: cfg.IncludeGlobals,
	})
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}

	log.Info("snapshot written",
		"nodes", report.Nodes,
		"walk_edges", report.WalkEdges,
		"macro_edges", report.MacroEdges,
		"global_teleports", report.GlobalTeleports,
		"landmarks", report.Landmarks,
	)
	fmt.Printf("wrote %s (%d nodes, %d walk edges, %d macro edges, %d landmarks)\n",
		cfg.OutputPath, report.Nodes, report.WalkEdges, report.MacroEdges, report.Landmarks)
	return nil
}

func printUsage() {
	fmt.Println(`navpathc - offline navigation graph compiler

Usage:
  navpathc -source <fixture.json> -config <build.yaml>

Flags:`)
	flag.PrintDefaults()
}
