// Package player drives an mpv-style media player over its JSON IPC
// socket. The player interleaves unsolicited event notifications with
// command replies on the same stream and offers no per-command
// correlation usable without parsing the envelope, so replies are
// recognized by substring containment against a known marker. An event
// whose payload happens to contain the marker text as data would be
// mistaken for the awaited frame; this is a documented risk of the
// protocol, not something the client tries to eliminate.
package player

import (
	"strings"

	"go.uber.org/zap"

	"github.com/davrins/sigdrift/internal/lineio"
)

// ackMarker identifies a command acknowledgment frame. Every reply the
// player sends to a command echoes a request_id field; asynchronous
// events do not.
const ackMarker = "request_id"

// Client is the player protocol client. It is strictly request-then-wait:
// one command in flight at a time, on a connection it exclusively owns.
type Client struct {
	conn   *lineio.Conn
	logger *zap.Logger
}

// NewClient wraps an established connection to the player socket.
func NewClient(conn *lineio.Conn, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{conn: conn, logger: logger}
}

// Send serializes and writes one command, then reads frames until the
// command acknowledgment arrives, discarding interleaved events. The
// read loop is unbounded: a peer that never acknowledges blocks forever.
func (c *Client) Send(cmd Command) (string, error) {
	line, err := Serialize(cmd)
	if err != nil {
		return "", err
	}
	if err := c.conn.WriteLine(line); err != nil {
		return "", err
	}
	return c.await(ackMarker)
}

// WaitForEvent reads frames until one contains marker, discarding the
// rest. An empty marker matches any frame. Used to synchronize on a
// specific asynchronous notification, such as the file-loaded event that
// must precede any seek.
func (c *Client) WaitForEvent(marker string) (string, error) {
	return c.await(marker)
}

func (c *Client) await(marker string) (string, error) {
	for {
		frame, err := c.conn.ReadLine()
		if err != nil {
			return "", err
		}
		if strings.Contains(frame, marker) {
			return frame, nil
		}
		c.logger.Debug("Discarding unrelated event",
			zap.String("marker", marker),
			zap.String("frame", frame))
	}
}

// Shutdown half-closes the write direction, then closes the connection.
func (c *Client) Shutdown() error {
	if err := c.conn.CloseWrite(); err != nil {
		c.conn.Close()
		return err
	}
	return c.conn.Close()
}
