package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/davrins/sigdrift/internal/storage"
)

// newHistoryCmd creates the history command
func newHistoryCmd() *cobra.Command {
	var (
		limit   int
		useJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the play history",
		Long: `Show recent play records: when each tick happened, which file was
selected, and where playback was positioned.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.NewBoltStorage(storage.StorageConfig{
				DBPath:      cfg.Storage.DBPath,
				KeepRecords: cfg.Storage.KeepRecords,
				InstanceID:  cfg.InstanceID,
				Logger:      logger,
			})
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.RecentRecords(limit)
			if err != nil {
				return err
			}

			if useJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}

			if len(records) == 0 {
				fmt.Println("No plays recorded yet.")
				return nil
			}
			for _, rec := range records {
				fmt.Printf("%s  #%-4d %5.1f%%  %s\n",
					rec.Time.Local().Format("2006-01-02 15:04:05"),
					rec.Index,
					rec.SeekPct,
					rec.Path)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum records to show (0 = all)")
	cmd.Flags().BoolVar(&useJSON, "json", false, "output in JSON format")

	return cmd
}
