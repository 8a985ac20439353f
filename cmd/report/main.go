package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"studyviz/domain/core"
	"studyviz/domain/grouping"
	"studyviz/internal/coordinator"
	"studyviz/internal/report"
	"studyviz/internal/testkit"
)

func main() {
	in := flag.String("in", "", "input dataset path (.xlsx or .csv); synthetic students when empty")
	sheet := flag.String("sheet", "Sheet1", "xlsx sheet name")
	path := flag.String("path", "", `hierarchy node to filter on, e.g. "Low Study/Normal Sleep"`)
	group := flag.String("group", "", "box plot group to filter on (applied after -path)")
	pins := flag.String("pin", "", "comma-separated record IDs to pin")
	format := flag.String("format", "md", "output format: md or html")
	out := flag.String("out", "", "output file (stdout when empty)")
	title := flag.String("title", "", "report title")
	flag.Parse()

	outFormat, err := report.ParseFormat(*format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx := context.Background()
	store, err := testkit.NewTestKit(*in, *sheet, testkit.DefaultStudentConfig()).LoadStore(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error loading dataset:", err)
		os.Exit(1)
	}

	coord, err := coordinator.New(store, grouping.Default(), coordinator.Options{})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error starting dashboard:", err)
		os.Exit(1)
	}

	var events []coordinator.Event
	if *path != "" {
		events = append(events, coordinator.Event{Type: coordinator.NodeActivated, Path: strings.Split(*path, "/")})
	}
	if *group != "" {
		events = append(events, coordinator.Event{Type: coordinator.GroupActivated, Label: *group})
	}
	for _, id := range strings.Split(*pins, ",") {
		if id = strings.TrimSpace(id); id != "" {
			events = append(events, coordinator.Event{Type: coordinator.PointActivated, RecordID: core.RecordID(id)})
		}
	}
	for _, ev := range events {
		res, err := coord.Dispatch(ctx, ev)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error applying %s: %v\n", ev.Type, err)
			os.Exit(1)
		}
		if res.Notice != "" {
			fmt.Fprintln(os.Stderr, "note:", res.Notice)
		}
	}

	snap, err := coord.Snapshot(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error computing views:", err)
		os.Exit(1)
	}
	body, err := report.Render(snap, outFormat, report.Options{Title: *title})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error rendering report:", err)
		os.Exit(1)
	}

	if *out == "" {
		os.Stdout.Write(body)
		return
	}
	if err := os.WriteFile(*out, body, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "error writing report:", err)
		os.Exit(1)
	}
	fmt.Printf("Report written: %s\n", *out)
}
