// Command convert normalizes a TSV or CSV product feed to CSV and adds the
// numeric price column.
//
// Usage:
//
//	convert --infile feed.tsv --out feed_priced.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/feedclean/internal/app"
	"github.com/JonMunkholm/feedclean/internal/config"
	"github.com/JonMunkholm/feedclean/internal/feed"
	"github.com/JonMunkholm/feedclean/internal/logging"
	"github.com/joho/godotenv"
)

func main() {
	infile := flag.String("infile", "", "Input file path (tab or comma delimited)")
	out := flag.String("out", "", "Output file path for the final csv with the price column")
	flag.Parse()

	if *infile == "" || *out == "" {
		fmt.Fprintln(os.Stderr, "Usage: convert --infile <path> --out <path>")
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

	fmt.Printf("Input file: %s\n", infile)
	fmt.Printf("Intermediate csv file: %s\n", feed.IntermediatePath(infile))
	fmt.Printf("Output file with %s column: %s\n", cfg.Pipeline.PriceColumn, out)

	result, rec, err := a.Service.ConvertFile(ctx, infile, out)
	if result == nil {
		fmt.Println("Failed to convert file to csv.")
		fmt.Fprintln(os.Stderr, feed.FormatUserError(err))
		return 1
	}

	fmt.Printf("Detected file format: %s (delimiter: %q)\n", result.Delimiter, rune(result.Delimiter))
	if result.Converted {
		fmt.Printf("Converted %s to csv: %s\n", result.Delimiter, result.IntermediatePath)
	} else {
		fmt.Println("File is already in csv format, no conversion needed.")
	}
	if result.Skipped > 0 {
		fmt.Printf("Skipped %d malformed rows\n", result.Skipped)
	}

	if err != nil {
		fmt.Printf("Failed to add %s column.\n", cfg.Pipeline.PriceColumn)
		fmt.Fprintln(os.Stderr, feed.FormatUserError(err))
		return 1
	}

	fmt.Printf("Successfully saved to: %s (%d rows)\n", result.OutputPath, result.Rows)
	fmt.Printf("Successfully completed all tasks. Run ID: %s\n", rec.ID)
	return 0
}
