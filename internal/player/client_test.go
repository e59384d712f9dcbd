package player

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davrins/sigdrift/internal/lineio"
)

// fakePeer runs script against the far end of an in-process pipe and
// returns the near end wrapped as a line channel.
func fakePeer(t *testing.T, script func(r *bufio.Reader, w net.Conn)) *lineio.Conn {
	t.Helper()
	client, peer := net.Pipe()
	t.Cleanup(func() {
		client.Close()
		peer.Close()
	})
	go script(bufio.NewReader(peer), peer)
	return lineio.New(client, "fake-player")
}

func TestSend(t *testing.T) {
	t.Run("DiscardsInterleavedEvents", func(t *testing.T) {
		var received string
		conn := fakePeer(t, func(r *bufio.Reader, w net.Conn) {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			received = line
			// Three unrelated events before the acknowledgment.
			w.Write([]byte(`{"event":"audio-reconfig"}` + "\n"))
			w.Write([]byte(`{"event":"tracks-changed"}` + "\n"))
			w.Write([]byte(`{"event":"metadata-update"}` + "\n"))
			w.Write([]byte(`{"error":"success","request_id":0}` + "\n"))
			w.Write([]byte(`{"event":"trailing"}` + "\n"))
		})

		client := NewClient(conn, zap.NewNop())
		frame, err := client.Send(Load{Path: "/x.mp3"})
		require.NoError(t, err)
		assert.Equal(t, `{"error":"success","request_id":0}`, frame)
		assert.Equal(t, `{"command":["loadfile","/x.mp3"]}`+"\n", received)

		// Exactly the events before the ack were consumed; the stream
		// resumes at the frame after it.
		next, err := conn.ReadLine()
		require.NoError(t, err)
		assert.Equal(t, `{"event":"trailing"}`, next)
	})

	t.Run("ImmediateAck", func(t *testing.T) {
		conn := fakePeer(t, func(r *bufio.Reader, w net.Conn) {
			if _, err := r.ReadString('\n'); err != nil {
				return
			}
			w.Write([]byte(`{"error":"success","request_id":0}` + "\n"))
		})

		client := NewClient(conn, zap.NewNop())
		frame, err := client.Send(Stop{})
		require.NoError(t, err)
		assert.Contains(t, frame, "request_id")
	})

	t.Run("PeerClosesBeforeAck", func(t *testing.T) {
		conn := fakePeer(t, func(r *bufio.Reader, w net.Conn) {
			if _, err := r.ReadString('\n'); err != nil {
				return
			}
			w.Write([]byte(`{"event":"tracks-changed"}` + "\n"))
			w.Close()
		})

		client := NewClient(conn, zap.NewNop())
		_, err := client.Send(Play{})
		require.Error(t, err)
		assert.ErrorIs(t, err, lineio.ErrClosed)
	})
}

func TestWaitForEvent(t *testing.T) {
	t.Run("SkipsToMarker", func(t *testing.T) {
		conn := fakePeer(t, func(r *bufio.Reader, w net.Conn) {
			w.Write([]byte(`{"event":"audio-reconfig"}` + "\n"))
			w.Write([]byte(`{"event":"file-loaded"}` + "\n"))
		})

		client := NewClient(conn, zap.NewNop())
		frame, err := client.WaitForEvent("file-loaded")
		require.NoError(t, err)
		assert.Equal(t, `{"event":"file-loaded"}`, frame)
	})

	t.Run("EmptyMarkerMatchesAnything", func(t *testing.T) {
		conn := fakePeer(t, func(r *bufio.Reader, w net.Conn) {
			w.Write([]byte(`{"event":"whatever"}` + "\n"))
		})

		client := NewClient(conn, zap.NewNop())
		frame, err := client.WaitForEvent("")
		require.NoError(t, err)
		assert.Equal(t, `{"event":"whatever"}`, frame)
	})

	t.Run("NoMatchBlocksUntilDeadline", func(t *testing.T) {
		conn := fakePeer(t, func(r *bufio.Reader, w net.Conn) {
			w.Write([]byte(`{"event":"not-it"}` + "\n"))
			// Then silence: the client keeps waiting.
		})
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(100*time.Millisecond)))

		client := NewClient(conn, zap.NewNop())
		start := time.Now()
		_, err := client.WaitForEvent("file-loaded")
		require.Error(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
	})
}
