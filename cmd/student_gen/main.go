package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"studyviz/adapters/ingest"
	"studyviz/domain/dataset"
	"studyviz/internal/testkit"
)

func main() {
	out := flag.String("out", "student_habits_performance.xlsx", "output file path")
	rows := flag.Int("rows", 1000, "number of students")
	format := flag.String("format", "", "output format: xlsx or csv (default inferred from -out)")
	seed := flag.Int64("seed", 42, "RNG seed (deterministic)")
	missing := flag.Float64("missing", 0, "share of numeric cells left empty (0-1)")
	flag.Parse()

	if *rows <= 0 {
		fmt.Fprintln(os.Stderr, "rows must be > 0")
		os.Exit(2)
	}
	if *missing < 0 || *missing >= 1 {
		fmt.Fprintln(os.Stderr, "missing must be in [0, 1)")
		os.Exit(2)
	}

	fmtName := strings.ToLower(strings.TrimSpace(*format))
	if fmtName == "" {
		switch strings.ToLower(filepath.Ext(*out)) {
		case ".csv":
			fmtName = "csv"
		default:
			fmtName = "xlsx"
		}
	}

	table := testkit.NewStudentDataGenerator(testkit.StudentGeneratorConfig{
		StudentCount: *rows,
		Seed:         *seed,
		MissingRate:  *missing,
	}).Generate()
	store, err := dataset.NewStore(table)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error generating dataset:", err)
		os.Exit(1)
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error creating output:", err)
		os.Exit(1)
	}
	defer f.Close()

	switch fmtName {
	case "csv":
		err = ingest.WriteCSV(f, store.Fields(), store.Records())
	case "xlsx":
		err = ingest.WriteXLSX(f, ingest.DefaultSheet, store.Fields(), store.Records())
	default:
		fmt.Fprintln(os.Stderr, "unsupported format:", fmtName)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", fmtName, err)
		os.Exit(1)
	}

	fmt.Printf("Student dataset created: %s\n", *out)
	fmt.Printf("Total Columns: %d | Total Rows: %d\n", len(store.Fields()), store.Len())
}
