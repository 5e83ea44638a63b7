package boxio

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/boxmux/boxmux/pkg/logging"
)

// streamEntry is the routing table's value type: the inbound queue that the
// demux loop feeds and a BoxIo drains, plus a signal closed when the stream
// is locally closed. done is distinct from the data channel itself so that
// closing a stream can never race with the demuxer sending on inbound (which
// would otherwise risk a send on a closed channel); the demuxer always
// selects on both.
type streamEntry struct {
	// inbound carries payloads from the demuxer to the stream's reader.
	inbound chan []byte
	// done is closed when the stream's entry is removed from the routing
	// table, signaling both the demuxer (stop trying to deliver to this
	// stream) and the stream's own Read/Write calls (report ErrClosed).
	done chan struct{}
}

// pendingStream is a new-stream rendezvous event: a previously-unseen
// identifier together with the routing table entry the demuxer installed for
// it, whose inbound queue already holds the payload of the introducing frame.
type pendingStream struct {
	id    StreamID
	entry *streamEntry
}

// outboundCommand is a unit of work for the mux loop, per spec.md §4.4.
type outboundCommand struct {
	// close, if true, tells the muxer to terminate. This is the connection's
	// sole close primitive: there is no per-stream close frame on the wire
	// (see DESIGN.md's note on the coarse-grained close).
	close bool
	// frame is the already-tagged (id+payload) frame body to transmit. It is
	// only meaningful when close is false.
	frame []byte
}

// connection holds the state shared by a Client and a Session: both are a
// thin façade over one of these. It owns exactly one demux (reader) task and
// one mux (writer) task, per spec.md invariant 2.
type connection struct {
	configuration *Configuration
	logger        *logging.Logger

	carrier Carrier

	closeOnce sync.Once
	closed    chan struct{}

	internalErrorLock sync.Mutex
	internalError     error

	streamLock sync.Mutex
	streams    map[StreamID]*streamEntry

	pending  chan pendingStream
	outbound chan outboundCommand
}

// newConnection takes ownership of carrier, starts its demux and mux tasks,
// and returns the shared connection state.
func newConnection(carrier Carrier, configuration *Configuration, logger *logging.Logger) *connection {
	if configuration == nil {
		configuration = DefaultConfiguration()
	} else {
		configuration.normalize()
	}

	c := &connection{
		configuration: configuration,
		logger:        logger,
		carrier:       carrier,
		closed:        make(chan struct{}),
		streams:       make(map[StreamID]*streamEntry),
		pending:       make(chan pendingStream, configuration.RendezvousQueueCapacity),
		outbound:      make(chan outboundCommand, configuration.OutboundQueueCapacity),
	}

	go c.demuxLoop(newFrameReader(carrier))
	go c.muxLoop(newFrameWriter(carrier))

	return c
}

// terminate closes the connection once, recording internalError (which may
// be nil if this is a clean shutdown) and closing c.closed so that every
// blocked BoxIo.Read/Write and connection-level operation unblocks, per
// spec.md invariant 5.
func (c *connection) terminate(internalError error) {
	c.closeOnce.Do(func() {
		if internalError != nil {
			c.internalErrorLock.Lock()
			c.internalError = internalError
			c.internalErrorLock.Unlock()
			c.logger.Debugf("connection terminating: %v", internalError)
		}
		_ = c.carrier.Close()
		close(c.closed)
	})
}

// Close tears down the connection unconditionally, closing the underlying
// carrier. It is used by Client.Shutdown and Session.Shutdown, distinct from
// the softer BoxIo.Close / Client.Close muxer-only shutdown.
func (c *connection) Close() error {
	c.terminate(nil)
	return nil
}

// demuxLoop is the entry point for the demux (reader) task. It has sole
// ownership of reader, per spec.md invariant 2.
func (c *connection) demuxLoop(reader *FrameReader) {
	defer c.terminate(nil)
	for {
		body, err := reader.read()
		if err != nil {
			if errors.Is(err, io.EOF) || isClosed(c.closed) {
				return
			}
			// Per-frame I/O failures are swallowed: the demux loop only
			// terminates on end-of-stream or once the connection has been
			// closed locally, never on a transient read error (spec.md §7).
			// This can mask corruption on carriers that return errors
			// without cleanly ending the stream; see DESIGN.md.
			c.logger.Debugf("demux: ignoring frame read error: %v", err)
			continue
		}

		id, payload, err := untag(body)
		if err != nil {
			c.logger.Debugf("demux: ignoring malformed frame: %v", err)
			continue
		}

		c.streamLock.Lock()
		entry, routed := c.streams[id]
		if !routed {
			// Install the entry for a previously-unseen identifier under the
			// same lock hold as the lookup, so that later frames for it are
			// routed to it rather than announced again. The inbound channel
			// is freshly created with capacity >= 1 (normalize replaces
			// non-positive capacities), so queuing the first payload cannot
			// block.
			entry = &streamEntry{
				inbound: make(chan []byte, c.configuration.InboundQueueCapacity),
				done:    make(chan struct{}),
			}
			entry.inbound <- payload
			c.streams[id] = entry
		}
		c.streamLock.Unlock()

		if routed {
			// The routing decision above is atomic with respect to
			// concurrent table inserts (spec.md §4.3 design note); the
			// blocking send itself is not, and must not be performed while
			// holding streamLock, since a slow stream reader is allowed to
			// (and, per spec.md §9, by design does) stall the demuxer
			// without stalling unrelated table operations such as a local
			// Open.
			select {
			case entry.inbound <- payload:
			case <-entry.done:
				// The stream was closed locally; the frame is discarded
				// without re-inserting or otherwise disturbing the table.
			case <-c.closed:
				return
			}
		} else {
			select {
			case c.pending <- pendingStream{id: id, entry: entry}:
			case <-c.closed:
				return
			}
		}
	}
}

// muxLoop is the entry point for the mux (writer) task. It has sole
// ownership of writer, per spec.md invariant 2.
func (c *connection) muxLoop(writer *FrameWriter) {
	for {
		select {
		case cmd := <-c.outbound:
			if cmd.close {
				// Half-close the write side so the peer's demuxer
				// eventually observes end-of-stream. On carriers that
				// support a half-close this leaves our own read side open
				// (spec.md §4.7: Open -> WriterClosed is a purely local
				// transition); other carriers are closed outright (see
				// FrameWriter.close).
				_ = writer.close()
				return
			}
			if err := writer.write(cmd.frame); err != nil {
				c.terminate(fmt.Errorf("write error: %w", err))
				return
			}
		case <-c.closed:
			return
		}
	}
}

// InternalError returns the error that caused the connection to terminate
// due to a transport failure, or nil if it has not terminated or terminated
// cleanly (peer EOF or local Close).
func (c *connection) InternalError() error {
	c.internalErrorLock.Lock()
	defer c.internalErrorLock.Unlock()
	return c.internalError
}

// enqueueClose enqueues the connection-wide Close command, per spec.md
// §4.4/§4.6. This is deliberately coarse-grained: it shuts down the shared
// muxer for every stream on the connection, not just one (see DESIGN.md).
func (c *connection) enqueueClose() error {
	select {
	case c.outbound <- outboundCommand{close: true}:
		return nil
	case <-c.closed:
		return ErrClosed
	}
}

// openLocal creates and registers the local end of a new, locally-initiated
// stream, per spec.md §4.6 step 3.
func (c *connection) openLocal() (*BoxIo, error) {
	if isClosed(c.closed) {
		return nil, ErrClosed
	}

	id, err := newStreamID()
	if err != nil {
		return nil, fmt.Errorf("unable to generate stream identifier: %w", err)
	}

	entry := &streamEntry{
		inbound: make(chan []byte, c.configuration.InboundQueueCapacity),
		done:    make(chan struct{}),
	}

	c.streamLock.Lock()
	c.streams[id] = entry
	c.streamLock.Unlock()

	return newBoxIo(c, id, entry), nil
}

// next awaits the next remotely-initiated stream, per spec.md §4.6
// (Session.next). Its routing table entry, holding the introducing frame's
// payload, has already been installed by the demux loop.
func (c *connection) next() (*BoxIo, error) {
	select {
	case p := <-c.pending:
		return newBoxIo(c, p.id, p.entry), nil
	case <-c.closed:
		return nil, ErrClosed
	}
}

// closeStream removes id's routing table entry and signals entry.done,
// unblocking any pending Read/Write on the corresponding BoxIo and any
// demuxer delivery attempt in flight for id.
func (c *connection) closeStream(id StreamID, entry *streamEntry) {
	c.streamLock.Lock()
	delete(c.streams, id)
	c.streamLock.Unlock()
	close(entry.done)
}
