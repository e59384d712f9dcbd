// Package lineio provides the line-oriented channel used to talk to the
// player and signal peers over Unix-domain stream sockets. A Conn carries
// exactly one request/response sequence at a time; callers enforce the
// one-in-flight discipline, so no internal locking is needed.
package lineio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

var (
	// ErrClosed is returned when the peer has closed the connection with
	// no frame pending (clean EOF, or a zero-byte write result).
	ErrClosed = errors.New("connection closed")

	// ErrTruncatedFrame is returned when the stream ended in the middle
	// of a frame. The wrapping error carries the partial bytes for
	// diagnostics; callers must not treat them as a usable frame.
	ErrTruncatedFrame = errors.New("stream ended mid-frame")
)

// Conn is a line channel over a connected stream socket.
type Conn struct {
	conn net.Conn
	r    *bufio.Reader
	path string
}

// Dial connects to the Unix-domain stream socket at path. There is no
// retry: an absent or refusing endpoint is a fatal startup condition.
func Dial(path string) (*Conn, error) {
	conn, err := net.Dial("unix", path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", path, err)
	}
	return New(conn, path), nil
}

// New wraps an already-connected stream. Used by Dial and by tests that
// substitute an in-process fake peer.
func New(conn net.Conn, path string) *Conn {
	return &Conn{
		conn: conn,
		r:    bufio.NewReader(conn),
		path: path,
	}
}

// WriteLine appends the line terminator and writes the whole buffer,
// retrying on short writes. A zero-byte write result means the socket is
// closed and is reported as ErrClosed.
func (c *Conn) WriteLine(s string) error {
	buf := []byte(s + "\n")
	for len(buf) > 0 {
		n, err := c.conn.Write(buf)
		if err != nil {
			return fmt.Errorf("write to %s: %w", c.path, err)
		}
		if n == 0 {
			return fmt.Errorf("write to %s: %w", c.path, ErrClosed)
		}
		buf = buf[n:]
	}
	return nil
}

// ReadLine blocks until a full newline-terminated line is available and
// returns it without the terminator. It never returns a partial line: a
// stream that ends mid-frame yields ErrTruncatedFrame, a stream that ends
// with nothing pending yields ErrClosed. A stream that ends exactly at a
// terminator yields that complete line.
func (c *Conn) ReadLine() (string, error) {
	line, err := c.r.ReadString('\n')
	if err == nil {
		return strings.TrimSuffix(line, "\n"), nil
	}
	if errors.Is(err, io.EOF) {
		if line == "" {
			return "", fmt.Errorf("read from %s: %w", c.path, ErrClosed)
		}
		return "", fmt.Errorf("read from %s: partial frame %q: %w", c.path, line, ErrTruncatedFrame)
	}
	return "", fmt.Errorf("read from %s: %w", c.path, err)
}

// SetReadDeadline sets the deadline for future ReadLine calls. The daemon
// loop never sets one; it exists for tests and one-shot debugging.
func (c *Conn) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

type closeWriter interface {
	CloseWrite() error
}

// CloseWrite half-closes the write direction, signaling the peer that no
// more commands will arrive while leaving the read side open to drain.
// Streams without a half-close notion (test pipes) treat it as a no-op.
func (c *Conn) CloseWrite() error {
	if cw, ok := c.conn.(closeWriter); ok {
		if err := cw.CloseWrite(); err != nil {
			return fmt.Errorf("half-close %s: %w", c.path, err)
		}
	}
	return nil
}

// Close closes the connection.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// Path returns the endpoint path the connection was dialed with.
func (c *Conn) Path() string {
	return c.path
}
