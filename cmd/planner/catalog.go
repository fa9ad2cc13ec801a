package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/course-planner/cmd/api"
	"github.com/FACorreiaa/course-planner/internal/domain/catalog"
	catalogrepo "github.com/FACorreiaa/course-planner/internal/domain/catalog/repository"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the course catalog",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <catalog.csv>",
	Short: "Seed the catalog from a subject,number,title,units CSV",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogImport,
}

func init() {
	catalogCmd.AddCommand(catalogImportCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer f.Close()

	database, err := api.OpenDatabase(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	result, err := catalog.ImportCSV(cmd.Context(), catalogrepo.NewPostgresCatalogRepository(database.Pool), f)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "rows: %d imported: %d failed: %d\n", result.RowsTotal, result.RowsImported, result.RowsFailed)
	for _, e := range result.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
	return nil
}
