package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	ossignal "os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/davrins/sigdrift/internal/conductor"
	"github.com/davrins/sigdrift/internal/lineio"
	"github.com/davrins/sigdrift/internal/player"
	"github.com/davrins/sigdrift/internal/playlist"
	"github.com/davrins/sigdrift/internal/signal"
	"github.com/davrins/sigdrift/internal/storage"
)

// newRunCmd creates the run command
func newRunCmd() *cobra.Command {
	var (
		detach bool
		seed   int64
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the drift daemon",
		Long: `Run the drift daemon: connect to the player and signal sockets,
scan and shuffle the music library once, then drift on every signal tick
until interrupted.

Both peers must already be running; sigdrift only connects as a client
and never retries a failed or lost connection.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if detach {
				return daemonize()
			}
			if seed != 0 {
				cfg.Library.ShuffleSeed = seed
			}
			return runDaemon()
		},
	}

	cmd.Flags().BoolVar(&detach, "detach", false, "run in the background")
	cmd.Flags().Int64Var(&seed, "seed", 0, "shuffle seed (0 = random each start)")

	return cmd
}

func runDaemon() error {
	logger.Info("Starting sigdrift daemon",
		zap.String("player_socket", cfg.Player.SocketPath),
		zap.String("signal_socket", cfg.Signal.SocketPath),
		zap.String("library", cfg.Library.Dir))

	files, err := playlist.Scan(cfg.Library.Dir, cfg.Library.Extensions, cfg.Library.ShuffleSeed, logger)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DBPath), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
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

	playerConn, err := lineio.Dial(cfg.Player.SocketPath)
	if err != nil {
		return err
	}
	signalConn, err := lineio.Dial(cfg.Signal.SocketPath)
	if err != nil {
		playerConn.Close()
		return err
	}

	playerClient := player.NewClient(playerConn, logger)
	signalClient := signal.NewClient(signalConn)

	cond := &conductor.Conductor{
		Files:        files,
		Player:       playerClient,
		Signal:       signalClient,
		Store:        store,
		TickToken:    cfg.Signal.TickToken,
		LoadedMarker: cfg.Player.LoadedMarker,
		InstanceID:   cfg.InstanceID,
		Logger:       logger,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	ossignal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigCh
		logger.Info("Shutting down", zap.String("signal", s.String()))
		cancel()
		// Half-close then close both connections; this also unblocks a
		// tick waiting on a peer read.
		playerClient.Shutdown()
		signalClient.Shutdown()
	}()

	err = cond.Run(ctx)
	if ctx.Err() != nil {
		// Interrupted: read errors caused by our own shutdown are expected.
		logger.Info("Daemon stopped")
		return nil
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		playerClient.Shutdown()
		signalClient.Shutdown()
		return err
	}
	return nil
}
