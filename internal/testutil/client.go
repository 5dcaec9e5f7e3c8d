package testutil

import (
	"bufio"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/cableclub/internal/wire"
)

// ReadTimeout bounds every blocking read of a LineClient.
const ReadTimeout = 5 * time.Second

// LineClient speaks the line protocol over a real TCP connection.
type LineClient struct {
	t    testing.TB
	conn net.Conn
	r    *bufio.Reader
}

// Dial connects to addr and closes the connection at test cleanup.
func Dial(t testing.TB, addr string) *LineClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, ReadTimeout)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &LineClient{t: t, conn: conn, r: bufio.NewReader(conn)}
}

// Send encodes and writes one message.
func (c *LineClient) Send(fields ...string) {
	c.t.Helper()
	_, err := wire.NewWriter(fields...).SendNow(c.conn)
	require.NoError(c.t, err)
}

// SendRaw writes bytes unchanged.
func (c *LineClient) SendRaw(b []byte) {
	c.t.Helper()
	_, err := c.conn.Write(b)
	require.NoError(c.t, err)
}

// ReadLine returns the next line without its newline.
func (c *LineClient) ReadLine() (string, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(ReadTimeout)); err != nil {
		return "", err
	}
	line, err := c.r.ReadString('\n')
	return strings.TrimSuffix(line, "\n"), err
}

// Expect reads the next line and decodes it into fields.
func (c *LineClient) Expect() []string {
	c.t.Helper()
	line, err := c.ReadLine()
	require.NoError(c.t, err)
	r, ok := wire.NewReader([]byte(line))
	require.True(c.t, ok, "server sent invalid UTF-8")
	return r.Remaining()
}

// ExpectClosed reads until the server closes the connection and returns any
// lines received first.
func (c *LineClient) ExpectClosed() []string {
	c.t.Helper()
	var lines []string
	for {
		line, err := c.ReadLine()
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				c.t.Fatalf("connection still open after %s", ReadTimeout)
			}
			if line != "" {
				lines = append(lines, line)
			}
			return lines
		}
		lines = append(lines, line)
	}
}

// Close closes the client side.
func (c *LineClient) Close() {
	c.conn.Close()
}

