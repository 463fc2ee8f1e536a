package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ecg-annotator/internal/services"
)

var pruneDryRun bool

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove store rows whose images no longer exist",
	Long: `Prune deletes rows from the label store for images that are no longer found
under the data directory. Use --dry-run to list them without changing the store.`,
	Args: cobra.NoArgs,
	RunE: runPrune,
}

func init() {
	pruneCmd.Flags().BoolVarP(&pruneDryRun, "dry-run", "n", false, "list rows that would be removed")
	rootCmd.AddCommand(pruneCmd)
}

func runPrune(cmd *cobra.Command, _ []string) error {
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

	store, err := services.NewStore(cfg.StorePath(), cfg.Store.Format, log.With("store"))
	if err != nil {
		return err
	}
	if !store.Exists() {
		return fmt.Errorf("no label store at %s", store.Path())
	}

	scanned, err := services.ScanImages(cfg.DataDir, cfg.Scan.Extensions)
	if err != nil {
		return err
	}
	table, _, err := store.Load(scanned)
	if err != nil {
		return err
	}

	removed := services.PruneMissing(table, scanned)
	out := cmd.OutOrStdout()
	for _, key := range removed {
		fmt.Fprintln(out, key)
	}
	if len(removed) == 0 {
		fmt.Fprintln(out, "Nothing to prune")
		return nil
	}
	if pruneDryRun {
		fmt.Fprintf(out, "%d rows would be removed\n", len(removed))
		return nil
	}

	if err := store.Overwrite(table); err != nil {
		return err
	}
	log.Info("Label store pruned", map[string]interface{}{
		"path":    store.Path(),
		"removed": len(removed),
		"rows":    table.Len(),
	})
	fmt.Fprintf(out, "%d rows removed\n", len(removed))
	return nil
}
