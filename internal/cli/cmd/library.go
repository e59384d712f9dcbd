package cmd

import (
	"context"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/davrins/sigdrift/internal/playlist"
)

// newLibraryCmd creates the library command
func newLibraryCmd() *cobra.Command {
	var (
		watch bool
		seed  int64
	)

	cmd := &cobra.Command{
		Use:   "library",
		Short: "Inspect the music library",
		Long: `Scan the configured music library and print the shuffled order the
daemon would use. With --watch, keep reporting file additions and
removals; the running daemon's set is fixed until restart.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if seed != 0 {
				cfg.Library.ShuffleSeed = seed
			}

			files, err := playlist.Scan(cfg.Library.Dir, cfg.Library.Extensions, cfg.Library.ShuffleSeed, logger)
			if err != nil {
				return err
			}
			for i := 0; i < files.Len(); i++ {
				fmt.Printf("%4d  %s\n", i, files.At(i))
			}

			if !watch {
				return nil
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			sigCh := make(chan os.Signal, 1)
			ossignal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				cancel()
			}()

			return playlist.Watch(ctx, cfg.Library.Dir, logger)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "keep watching for library changes")
	cmd.Flags().Int64Var(&seed, "seed", 0, "shuffle seed (0 = random)")

	return cmd
}
