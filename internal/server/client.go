package server

import (
	"fmt"
	"net"
)

// ConnID identifies a connection for its whole life. IDs are never reused.
type ConnID uint64

// Client is one live connection. Only the loop goroutine touches it.
type Client struct {
	ID      ConnID
	Addr    string
	Session string
	State   State

	inbound  []byte
	outbound []byte

	conn    net.Conn
	writes  chan []byte
	writing bool
}

func newClient(id ConnID, conn net.Conn, session string) *Client {
	return &Client{
		ID:      id,
		Addr:    conn.RemoteAddr().String(),
		Session: session,
		State:   Connecting{},
		conn:    conn,
		writes:  make(chan []byte, 1),
	}
}

// Queue appends an encoded message to the outbound buffer.
func (c *Client) Queue(b []byte) {
	c.outbound = append(c.outbound, b...)
}

// Pending returns the number of bytes not yet handed to the writer.
func (c *Client) Pending() int {
	return len(c.outbound)
}

func (c *Client) String() string {
	return fmt.Sprintf("%s/%s", c.Addr, c.State.Name())
}

// connTable owns every client, keyed by ID, and remembers accept order for
// matchmaking.
type connTable struct {
	byID  map[ConnID]*Client
	order []ConnID
}

func newConnTable() *connTable {
	return &connTable{byID: make(map[ConnID]*Client)}
}

func (t *connTable) add(c *Client) {
	t.byID[c.ID] = c
	t.order = append(t.order, c.ID)
}

func (t *connTable) get(id ConnID) (*Client, bool) {
	c, ok := t.byID[id]
	return c, ok
}

// remove deletes id and reports whether it was present.
func (t *connTable) remove(id ConnID) (*Client, bool) {
	c, ok := t.byID[id]
	if !ok {
		return nil, false
	}
	delete(t.byID, id)
	for i, other := range t.order {
		if other == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return c, true
}

// each visits clients in accept order until fn returns false.
func (t *connTable) each(fn func(*Client) bool) {
	for _, id := range t.order {
		if !fn(t.byID[id]) {
			return
		}
	}
}

func (t *connTable) len() int {
	return len(t.byID)
}
