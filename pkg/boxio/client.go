package boxio

import (
	"net"

	"github.com/boxmux/boxmux/pkg/logging"
)

// Client is the initiating side of a multiplexed connection: it dials a
// remote listener and may open any number of streams over the resulting
// carrier.
type Client struct {
	connection *connection
}

// Connect dials addr over TCP and returns a Client multiplexing streams over
// the resulting connection. configuration may be nil to accept the default
// queue capacities. logger may be nil to disable logging.
func Connect(addr string, configuration *Configuration, logger *logging.Logger) (*Client, error) {
	carrier, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, newIoFailure("dial", err)
	}
	return &Client{connection: newConnection(carrier, configuration, logger)}, nil
}

// NewClient wraps an already-established Carrier (for example, the result
// of net.Pipe, or a net.Conn obtained some other way) as a Client, without
// performing a dial of its own. This is primarily useful for testing against
// in-memory carriers.
func NewClient(carrier Carrier, configuration *Configuration, logger *logging.Logger) *Client {
	return &Client{connection: newConnection(carrier, configuration, logger)}
}

// Open opens a new, locally-initiated stream over the connection.
func (c *Client) Open() (*BoxIo, error) {
	return c.connection.openLocal()
}

// Close enqueues the connection-wide Close command, shutting down the
// muxer. See BoxIo.Close for the coarse-grained semantics this implies.
func (c *Client) Close() error {
	return c.connection.enqueueClose()
}

// Shutdown closes the underlying carrier unconditionally, immediately
// terminating both the demuxer and the muxer. Unlike Close, this does not
// wait for the peer to observe end-of-stream; it is appropriate for forceful
// teardown (for example, in response to a termination signal).
func (c *Client) Shutdown() error {
	return c.connection.Close()
}

// LocalAddr returns a diagnostic net.Addr for the connection.
func (c *Client) LocalAddr() net.Addr {
	return connectionAddress{}
}
