// Command queryrunner executes a pre-built query plan against a
// directory of flat CSV data files and prints the resulting tuple
// stream.
//
// Grounded on original_source/src/main.cpp's control flow (load
// catalog, read plan file, build operator tree, open/next-loop/close,
// catch-and-exit-1 on any error) and on cmd/server/main.go's
// package-level log.Fatalf/log.Printf diagnostics.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/WoodRank/queryrunner/internal/catalog"
	"github.com/WoodRank/queryrunner/internal/plan"
	"github.com/WoodRank/queryrunner/internal/result"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "Usage: %s <path_to_plan.json> <path_to_data_directory>\n", os.Args[0])
		os.Exit(1)
	}

	planPath := os.Args[1]
	dataDir := os.Args[2]

	if err := run(planPath, dataDir); err != nil {
		log.Printf("error during execution: %v", err)
		os.Exit(1)
	}
}

func run(planPath, dataDir string) error {
	cat, err := catalog.Load(dataDir)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	planJSON, err := os.ReadFile(planPath)
	if err != nil {
		return fmt.Errorf("reading plan file %q: %w", planPath, err)
	}

	log.Println("building query plan...")
	root, err := plan.Translate(planJSON, cat, dataDir)
	if err != nil {
		return fmt.Errorf("translating plan: %w", err)
	}

	if err := root.Open(); err != nil {
		root.Close()
		return fmt.Errorf("opening operator tree: %w", err)
	}
	defer root.Close()

	_, err = result.Print(os.Stdout, root)
	if err != nil {
		return fmt.Errorf("executing query: %w", err)
	}
	return nil
}
