package boxio

import (
	"fmt"
	"net"

	"github.com/boxmux/boxmux/pkg/logging"
)

// Listener accepts incoming TCP connections and wraps each as a Session
// multiplexing streams over it.
type Listener struct {
	listener      net.Listener
	configuration *Configuration
	logger        *logging.Logger
}

// Listen binds to the given TCP port on all interfaces and returns a
// Listener. configuration may be nil to accept the default queue
// capacities, and is applied to every Session produced by Accept. logger may
// be nil to disable logging.
func Listen(port uint16, configuration *Configuration, logger *logging.Logger) (*Listener, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, newIoFailure("listen", err)
	}
	return &Listener{
		listener:      listener,
		configuration: configuration,
		logger:        logger,
	}, nil
}

// Accept blocks until an incoming connection arrives, returning a Session
// wrapping it along with the connecting peer's address.
func (l *Listener) Accept() (*Session, net.Addr, error) {
	carrier, err := l.listener.Accept()
	if err != nil {
		return nil, nil, newIoFailure("accept", err)
	}
	session := &Session{connection: newConnection(carrier, l.configuration, l.logger)}
	return session, carrier.RemoteAddr(), nil
}

// Close stops accepting new connections. It does not affect sessions
// already produced by Accept.
func (l *Listener) Close() error {
	return l.listener.Close()
}

// Addr returns the listener's bound address.
func (l *Listener) Addr() net.Addr {
	return l.listener.Addr()
}
