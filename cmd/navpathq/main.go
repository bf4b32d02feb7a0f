// Command navpathq opens a compiled snapshot and answers one route
// query, printing the resulting action list to stdout. It is a thin
// demo driver over pkg/navpath, not a production query service: the
// HTTP/RPC shell around it is an external collaborator per spec.md §1.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/dshills/navpath/internal/actions"
	"github.com/dshills/navpath/internal/buildcfg"
	"github.com/dshills/navpath/internal/debugsvg"
	"github.com/dshills/navpath/internal/eligibility"
	"github.com/dshills/navpath/internal/logx"
	"github.com/dshills/navpath/internal/search"
	"github.com/dshills/navpath/internal/source"
	"github.com/dshills/navpath/pkg/navpath"
)

const version = "0.1.0"

var (
	profilePath = flag.String("profile", "", "Path to YAML query profile (required)")
	fromX       = flag.Int("from-x", 0, "Start tile X")
	fromY       = flag.Int("from-y", 0, "Start tile Y")
	fromPlane   = flag.Int("from-plane", 0, "Start tile plane")
	toX         = flag.Int("to-x", 0, "Goal tile X")
	toY         = flag.Int("to-y", 0, "Goal tile Y")
	toPlane     = flag.Int("to-plane", 0, "Goal tile plane")
	svgPath     = flag.String("svg", "", "Optional path to write a debug SVG of the route")
	openSet     = flag.String("open-set", "", "Override the profile's open_set (heap or bucket)")
	versionF    = flag.Bool("version", false, "Print version and exit")
	help        = flag.Bool("help", false, "Show help message")
)

func main() {
	flag.Parse()

	if *versionF {
		fmt.Printf("navpathq version %s\n", version)
		os.Exit(0)
	}
	if *help {
		printUsage()
		os.Exit(0)
	}
	if *profilePath == "" {
		fmt.Fprintln(os.Stderr, "Error: -profile is required")
		printUsage()
		os.Exit(1)
	}

	logx.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	log := logx.WithComponent("navpathq")

	profile, err := buildcfg.LoadQueryProfile(*profilePath)
	if err != nil {
		return fmt.Errorf("load query profile: %w", err)
	}
	if *openSet != "" {
		profile.OpenSet = *openSet
	}

	inst, err := navpath.Open(profile.SnapshotPath)
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer inst.Close()

	start, ok := inst.NodeID(source.Coord{X: int32(*fromX), Y: int32(*fromY), Plane: int32(*fromPlane)})
	if !ok {
		return fmt.Errorf("start tile (%d,%d,%d) not found in snapshot", *fromX, *fromY, *fromPlane)
	}
	goal, ok := inst.NodeID(source.Coord{X: int32(*toX), Y: int32(*toY), Plane: int32(*toPlane)})
	if !ok {
		return fmt.Errorf("goal tile (%d,%d,%d) not found in snapshot", *toX, *toY, *toPlane)
	}

	var setKind search.OpenSetKind
	if profile.OpenSet == "bucket" {
		setKind = search.OpenSetBucket
	}

	log.Info("routing", "start", start, "goal", goal, "open_set", profile.OpenSet)

	result, err := inst.Route(context.Background(), start, goal, eligibility.Profile{}, navpath.RouteOptions{
		OpenSet:         setKind,
		MaxGlobalFanout: profile.MaxGlobalFanout,
	})
	if err != nil {
		return fmt.Errorf("route: %w", err)
	}

	fmt.Printf("route cost=%.1f hops=%d\n", result.Cost, len(result.Actions))
	for _, a := range result.Actions {
		printAction(a)
	}

	if *svgPath != "" {
		if err := writeDebugSVG(*svgPath, inst, result); err != nil {
			log.Warn("failed to write debug svg", "error", err)
		}
	}
	return nil
}

func printAction(a actions.Action) {
	switch a.Kind {
	case actions.KindMove:
		fmt.Printf("  move %d -> %d (%.0f)\n", a.From, a.To, a.Weight)
	case actions.KindMacro:
		dir := ""
		switch a.Door {
		case actions.DoorOut:
			dir = " [door out]"
		case actions.DoorIn:
			dir = " [door in]"
		}
		fmt.Printf("  macro %d -> %d via %s#%d (%.0f)%s\n", a.From, a.To, a.FirstStepKind, a.FirstStepID, a.Weight, dir)
	case actions.KindGlobal:
		fmt.Printf("  teleport %d -> %d (%.0f)\n", a.From, a.To, a.Weight)
	default:
		fmt.Printf("  ? %d -> %d (%.0f)\n", a.From, a.To, a.Weight)
	}
}

func writeDebugSVG(path string, inst *navpath.Instance, result *navpath.RouteResult) error {
	nodes := make([]debugsvg.RouteNode, len(result.Nodes))
	for i, n := range result.Nodes {
		c := inst.Coord(n)
		nodes[i] = debugsvg.RouteNode{X: c.X, Y: c.Y, Label: fmt.Sprintf("%d", n)}
	}
	return debugsvg.SaveToFile(nil, nodes, debugsvg.DefaultOptions(), path)
}

func printUsage() {
	fmt.Println(`navpathq - navigation route query demo driver

Usage:
  navpathq -profile <query.yaml> -from-x .. -from-y .. -to-x .. -to-y ..

Flags:`)
	flag.PrintDefaults()
}
