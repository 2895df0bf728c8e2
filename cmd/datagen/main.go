package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"sessionpulse/internal/datagen"
)

func main() {
	datasetType := flag.String("type", "both", "dataset to generate: shopify (success), aws (duration), or both")
	sessions := flag.Int("sessions", datagen.DefaultSessionCount, "number of sessions to generate (1-10000)")
	output := flag.String("output", "sessions.csv", "output file path (used as a base name with -type both)")
	noise := flag.Float64("noise", datagen.DefaultNoiseProbability, "probability of flipping a session outcome (0-1)")
	pattern := flag.String("pattern", string(datagen.PatternCurved), "success-rate decay shape: linear or curved")
	inflection := flag.Int("inflection", datagen.DefaultInflectionIndex, "session index where the success rate collapses")
	seed := flag.Int64("seed", 0, "random seed (0 seeds from the current time)")
	flag.Parse()

	if err := run(*datasetType, *sessions, *output, *noise, *pattern, *inflection, *seed); err != nil {
		slog.Error("Generation failed", "error", err)
		os.Exit(1)
	}
}

func run(datasetType string, sessions int, output string, noise float64, pattern string, inflection int, seed int64) error {
	params := datagen.Params{
		SessionCount:     sessions,
		InflectionIndex:  inflection,
		NoiseProbability: noise,
		Pattern:          datagen.Pattern(pattern),
		Seed:             seed,
	}

	generated, err := datagen.Generate(params)
	if err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}

	switch datasetType {
	case "shopify":
		if err := writeFile(output, func(f *os.File) error {
			return datagen.WriteSuccessCSV(f, generated)
		}); err != nil {
			return err
		}
		slog.Info("Success dataset written", "path", output, "sessions", sessions)

	case "aws":
		if err := writeFile(output, func(f *os.File) error {
			return datagen.WriteDurationCSV(f, generated)
		}); err != nil {
			return err
		}
		slog.Info("Duration dataset written", "path", output, "sessions", sessions)

	case "both":
		successPath := derivePath(output, "success")
		durationPath := derivePath(output, "duration")

		if err := writeFile(successPath, func(f *os.File) error {
			return datagen.WriteSuccessCSV(f, generated)
		}); err != nil {
			return err
		}
		if err := writeFile(durationPath, func(f *os.File) error {
			return datagen.WriteDurationCSV(f, generated)
		}); err != nil {
			return err
		}
		slog.Info("Dataset pair written",
			"success", successPath,
			"duration", durationPath,
			"sessions", sessions)

	default:
		return fmt.Errorf("unknown type %q: must be shopify, aws, or both", datasetType)
	}

	return nil
}

// derivePath builds "<base>_<suffix>.csv" from the output flag, so
// -type both -output sessions.csv yields sessions_success.csv and
// sessions_duration.csv.
func derivePath(output, suffix string) string {
	ext := filepath.Ext(output)
	base := strings.TrimSuffix(output, ext)
	if ext == "" {
		ext = ".csv"
	}
	return base + "_" + suffix + ext
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Sync()
}
