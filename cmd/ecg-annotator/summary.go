package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ecg-annotator/internal/services"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print label counts for a data directory",
	Long: `Summary scans the data directory, merges the result with the label store the
same way the annotator does on startup, and prints how many images were seen
and labeled along with a count per tag. The store is not modified.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("no data directory configured, pass --data-dir")
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	scanned, err := services.ScanImages(cfg.DataDir, cfg.Scan.Extensions)
	if err != nil {
		return err
	}
	store, err := services.NewStore(cfg.StorePath(), cfg.Store.Format, log.With("store"))
	if err != nil {
		return err
	}
	table, existed, err := store.Load(scanned)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !existed {
		fmt.Fprintf(out, "No label store at %s yet\n\n", store.Path())
	} else {
		fmt.Fprintf(out, "Label store: %s\n\n", store.Path())
	}
	return services.WriteSummary(out, table.Stats())
}

