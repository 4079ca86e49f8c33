// Command filter removes knitwear products that do not reference jumpers
// from a comma-delimited product feed.
//
// Usage:
//
//	filter --infile feed_priced.csv --out feed_filtered.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/JonMunkholm/feedclean/internal/app"
	"github.com/JonMunkholm/feedclean/internal/config"
	"github.com/JonMunkholm/feedclean/internal/feed"
	"github.com/JonMunkholm/feedclean/internal/logging"
	"github.com/joho/godotenv"
)

func main() {
	infile := flag.String("infile", "", "Input csv file path")
	out := flag.String("out", "", "Output filtered csv file path")
	flag.Parse()

	if *infile == "" || *out == "" {
		fmt.Fprintln(os.Stderr, "Usage: filter --infile <path> --out <path>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	os.Exit(run(*infile, *out))
}

func run(infile, out string) int {
	// .env is optional
	_ = godotenv.Overload()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return 1
	}
	logging.SetupWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer a.Close()

	fmt.Printf("Reading file: %s\n", infile)

	result, rec, err := a.Service.FilterFile(ctx, infile, out)
	if result == nil {
		fmt.Fprintf(os.Stderr, "Error filtering knit products: %s\n", feed.FormatUserError(err))
		return 1
	}

	fmt.Printf("Columns checked for knit references: %s\n", strings.Join(result.KnitColumns, ", "))
	fmt.Printf("Columns checked for jumper references: %s\n", strings.Join(result.JumperColumns, ", "))
	fmt.Printf("Initial row count: %d\n", result.Stats.Total)
	fmt.Printf("Found %d knit products\n", result.Stats.Knit)
	fmt.Printf("Found %d products with jumper references in name/category\n", result.Stats.Jumper)
	fmt.Printf("Found %d knit products WITH jumper references\n", result.Stats.KnitWithJumper)
	fmt.Printf("Found %d knit products WITHOUT jumper references\n", result.Stats.KnitWithoutJumper)
	fmt.Printf("Removed %d rows\n", result.Removed)
	fmt.Printf("Final row count: %d\n", result.Kept)
	if result.Skipped > 0 {
		fmt.Printf("Skipped %d malformed rows\n", result.Skipped)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error filtering knit products: %s\n", feed.FormatUserError(err))
		return 1
	}

	fmt.Printf("Results saved to: %s (run %s)\n", out, rec.ID)
	return 0
}
