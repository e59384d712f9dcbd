// Package conductor runs the drift loop: wait for a signal tick, pick a
// track from the shuffled library, load it, wait for the player to finish
// opening it, seek to a sample-derived position, and play.
package conductor

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davrins/sigdrift/internal/player"
	"github.com/davrins/sigdrift/internal/playlist"
	"github.com/davrins/sigdrift/internal/signal"
	"github.com/davrins/sigdrift/internal/storage"
)

// Conductor owns both protocol clients for the duration of the loop.
// Operations on the player connection are strictly sequential; every step
// blocks until its frame arrives. There is no timeout anywhere in the
// loop: a peer that stops responding stalls the loop indefinitely. That
// is an accepted tradeoff of this design, not an oversight.
type Conductor struct {
	Files  *playlist.FileSet
	Player *player.Client
	Signal *signal.Client

	// Store is optional; a nil store disables play history.
	Store *storage.BoltStorage

	// TickToken is the signal request that blocks until the next
	// periodic tick. LoadedMarker identifies the player's
	// file-finished-loading event.
	TickToken    string
	LoadedMarker string

	InstanceID string
	Logger     *zap.Logger
}

// Run executes ticks until ctx is cancelled or a fatal protocol error
// occurs. Cancellation is only observed between ticks; a tick blocked on
// a peer read is unblocked by closing the connections.
func (c *Conductor) Run(ctx context.Context) error {
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := c.Tick(); err != nil {
			return fmt.Errorf("drift tick failed: %w", err)
		}
	}
}

// Tick performs one full cycle. A malformed sample is logged and skipped;
// any connection error is fatal and returned.
func (c *Conductor) Tick() error {
	sample, err := c.Signal.Sample(c.TickToken)
	if err != nil {
		if errors.Is(err, signal.ErrBadSample) {
			c.Logger.Warn("Skipping tick on malformed sample", zap.Error(err))
			return nil
		}
		return err
	}

	idx := c.Files.IndexFor(sample.W1)
	path := c.Files.At(idx)
	seekPct := 100 * sample.W2

	c.Logger.Info("Drifting",
		zap.Int("index", idx),
		zap.String("path", path),
		zap.Float64("seek_pct", seekPct))

	if _, err := c.Player.Send(player.Load{Path: path}); err != nil {
		return err
	}

	// The load acknowledgment arrives before the file is open; the
	// player rejects seeks against a file it has not finished opening,
	// so the loaded event must be consumed before the seek goes out.
	if _, err := c.Player.WaitForEvent(c.LoadedMarker); err != nil {
		return err
	}

	if _, err := c.Player.Send(player.Seek{Mode: player.AbsolutePercent(seekPct)}); err != nil {
		return err
	}

	if _, err := c.Player.Send(player.Play{}); err != nil {
		return err
	}

	if c.Store != nil {
		rec := &storage.PlayRecord{
			ID:         uuid.New().String(),
			InstanceID: c.InstanceID,
			Path:       path,
			Index:      idx,
			Sample:     [4]float64{sample.W0, sample.W1, sample.W2, sample.W3},
			SeekPct:    seekPct,
		}
		if err := c.Store.SaveRecord(rec); err != nil {
			// History is best-effort; a failed write never stops playback.
			c.Logger.Warn("Failed to record play", zap.Error(err))
		}
	}

	return nil
}
