// Package signal queries the periodic signal bridge: a one-token request
// line is answered with a single line of exactly four space-separated
// floating-point fields. The bridge emits no unrelated events, so the
// first line read is the reply.
package signal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/davrins/sigdrift/internal/lineio"
)

// Request tokens understood by the bridge.
const (
	// TokenGet asks for the current sample immediately.
	TokenGet = "get"
	// TokenNext blocks until the next periodic tick, then answers.
	TokenNext = "next"
)

// ErrBadSample reports a reply that is not exactly four numeric fields.
var ErrBadSample = errors.New("malformed signal sample")

// Sample is one 4-tuple reading from the signal source.
type Sample struct {
	W0 float64
	W1 float64
	W2 float64
	W3 float64
}

// Client is the signal protocol client.
type Client struct {
	conn *lineio.Conn
}

// NewClient wraps an established connection to the bridge socket.
func NewClient(conn *lineio.Conn) *Client {
	return &Client{conn: conn}
}

// Sample writes the request token and parses the one-line reply. A reply
// with a field count other than four, or any non-numeric field, is a
// parse failure; the caller decides whether to skip the tick or abort,
// but must never substitute a default sample.
func (c *Client) Sample(token string) (Sample, error) {
	if err := c.conn.WriteLine(token); err != nil {
		return Sample{}, err
	}
	line, err := c.conn.ReadLine()
	if err != nil {
		return Sample{}, err
	}
	return Parse(line)
}

// Parse decodes a reply line into a Sample.
func Parse(line string) (Sample, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return Sample{}, fmt.Errorf("%w: got %d fields in %q, want 4", ErrBadSample, len(fields), line)
	}
	var w [4]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Sample{}, fmt.Errorf("%w: field %d of %q is not a number", ErrBadSample, i, line)
		}
		w[i] = v
	}
	return Sample{W0: w[0], W1: w[1], W2: w[2], W3: w[3]}, nil
}

// Shutdown half-closes the write direction, then closes the connection.
func (c *Client) Shutdown() error {
	if err := c.conn.CloseWrite(); err != nil {
		c.conn.Close()
		return err
	}
	return c.conn.Close()
}
