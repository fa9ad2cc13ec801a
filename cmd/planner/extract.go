package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/course-planner/cmd/api"
	"github.com/FACorreiaa/course-planner/internal/domain/transcript/extraction"
	transcriptservice "github.com/FACorreiaa/course-planner/internal/domain/transcript/service"
)

var extractFormat string

var extractCmd = &cobra.Command{
	Use:   "extract <transcript.pdf>",
	Short: "Extract courses from a transcript without touching the database",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractFormat, "format", "f", "json", "output format (json, csv, xlsx)")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	switch extractFormat {
	case "json", "csv", "xlsx":
	default:
		return fmt.Errorf("unknown format %q", extractFormat)
	}

	data, err := readDocument(args[0])
	if err != nil {
		return err
	}

	deps := api.NewExtractionDependencies(cfg, logger)
	stop := startMetrics(deps)
	defer stop()

	result, err := deps.Extractor.Extract(cmd.Context(), data)
	if err != nil {
		return fmt.Errorf("failed to extract courses: %w", err)
	}

	return writeResult(cmd.OutOrStdout(), result, extractFormat)
}

func writeResult(w io.Writer, result *extraction.Result, format string) error {
	switch format {
	case "csv":
		return transcriptservice.ExportCSV(w, result.Courses)
	case "xlsx":
		return transcriptservice.ExportXLSX(w, result.Courses)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Strategy string `json:"strategy"`
		Courses  any    `json:"courses"`
	}{
		Strategy: string(result.Strategy),
		Courses:  result.Courses,
	})
}
