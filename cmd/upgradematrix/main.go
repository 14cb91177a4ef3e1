// Command upgradematrix builds an upgrade matrix once from pasted report links and writes
// it as CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/omarshaarawi/upgradebot/internal/api/raidbots"
	"github.com/omarshaarawi/upgradebot/internal/api/sims"
	"github.com/omarshaarawi/upgradebot/internal/config"
	"github.com/omarshaarawi/upgradebot/internal/sink"
	"github.com/omarshaarawi/upgradebot/internal/sink/sqlite"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		slog.Error("Error running upgradematrix", "error", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("upgradematrix", flag.ContinueOnError)
	versionFlag := fs.Bool("version", false, "Print version information and exit")
	inputFlag := fs.String("input", "", "File with pasted report links (default: stdin)")
	outputFlag := fs.String("output", "", "CSV output file (default: stdout)")
	sqliteFlag := fs.String("sqlite", "", "Also store the matrix in this SQLite database")
	hostFlag := fs.String("host", "raidbots.com", "Report host")
	markerFlag := fs.String("marker", "/228843/", "Marker identifying upgrade trial rows")
	timeoutFlag := fs.Duration("timeout", 30*time.Second, "Per-report fetch timeout")
	concurrencyFlag := fs.Int("concurrency", 4, "Reports fetched at once")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *versionFlag {
		fmt.Fprintf(stdout, "upgradematrix version %s\n", version)
		return nil
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg := config.Raidbots{
		Host:        *hostFlag,
		Marker:      *markerFlag,
		Timeout:     *timeoutFlag,
		Concurrency: *concurrencyFlag,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	input, err := readInput(*inputFlag, stdin)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	links := raidbots.ExtractLinks(input, cfg.Host)
	api := sims.NewAPI(raidbots.NewClient(cfg), raidbots.ParseReport, cfg.Marker, cfg.Concurrency)
	harvest := api.Harvest(ctx, links)

	for _, f := range harvest.Failures {
		slog.Warn("Report skipped", "link", f.Link, "error", f.Err)
	}

	if *sqliteFlag != "" {
		store, err := sqlite.Open(*sqliteFlag)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Write(ctx, harvest.Matrix); err != nil {
			return err
		}
	}

	if *outputFlag != "" {
		if err := sink.NewCSVFile(*outputFlag).Write(ctx, harvest.Matrix); err != nil {
			return err
		}
		slog.Info("Saved upgrade matrix", "path", *outputFlag, "players", len(harvest.Matrix.Rows))
		return nil
	}
	return sink.WriteCSV(stdout, harvest.Matrix)
}

func readInput(path string, stdin io.Reader) (string, error) {
	if path == "" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("error reading stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("error reading input: %w", err)
	}
	return string(b), nil
}
