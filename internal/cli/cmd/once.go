package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/davrins/sigdrift/internal/conductor"
	"github.com/davrins/sigdrift/internal/lineio"
	"github.com/davrins/sigdrift/internal/player"
	"github.com/davrins/sigdrift/internal/playlist"
	"github.com/davrins/sigdrift/internal/signal"
)

// newOnceCmd creates the once command
func newOnceCmd() *cobra.Command {
	var (
		wait    bool
		timeout time.Duration
		seed    int64
	)

	cmd := &cobra.Command{
		Use:   "once",
		Short: "Run a single drift tick and exit",
		Long: `Run a single tick against a live player and signal bridge:
sample, select, load, wait for the loaded event, seek, play. Useful for
checking a setup before starting the daemon.

By default the current sample is probed immediately; --wait blocks for
the next periodic tick instead. The daemon itself never uses a timeout,
but --timeout bounds this one-shot so a dead peer cannot hang it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if seed != 0 {
				cfg.Library.ShuffleSeed = seed
			}

			files, err := playlist.Scan(cfg.Library.Dir, cfg.Library.Extensions, cfg.Library.ShuffleSeed, logger)
			if err != nil {
				return err
			}

			playerConn, err := lineio.Dial(cfg.Player.SocketPath)
			if err != nil {
				return err
			}
			signalConn, err := lineio.Dial(cfg.Signal.SocketPath)
			if err != nil {
				playerConn.Close()
				return err
			}

			if timeout > 0 {
				deadline := time.Now().Add(timeout)
				playerConn.SetReadDeadline(deadline)
				signalConn.SetReadDeadline(deadline)
			}

			token := cfg.Signal.ProbeToken
			if wait {
				token = cfg.Signal.TickToken
			}

			playerClient := player.NewClient(playerConn, logger)
			signalClient := signal.NewClient(signalConn)
			defer playerClient.Shutdown()
			defer signalClient.Shutdown()

			cond := &conductor.Conductor{
				Files:        files,
				Player:       playerClient,
				Signal:       signalClient,
				TickToken:    token,
				LoadedMarker: cfg.Player.LoadedMarker,
				InstanceID:   cfg.InstanceID,
				Logger:       logger,
			}
			return cond.Tick()
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "block for the next periodic tick instead of probing")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "bound peer reads (0 = block forever)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "shuffle seed (0 = random)")

	return cmd
}
