package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/boxmux/boxmux/cmd"
	"github.com/boxmux/boxmux/pkg/boxio"
	"github.com/boxmux/boxmux/pkg/logging"
	"github.com/boxmux/boxmux/pkg/must"
)

// serveMain accepts connections on the configured port and, for each
// multiplexed session, echoes every stream's first message back to its
// sender.
func serveMain(command *cobra.Command, arguments []string) error {
	logger := logging.RootLogger.Sublogger("serve")

	listener, err := boxio.Listen(serveConfiguration.port, boxio.DefaultConfiguration(), logger)
	if err != nil {
		return errors.Wrap(err, "unable to listen")
	}
	defer must.Close(listener, logger)

	logger.Printf("listening on %s", listener.Addr())

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, cmd.TerminationSignals...)

	accepted := make(chan struct{})
	go func() {
		for {
			session, remote, err := listener.Accept()
			if err != nil {
				logger.Warn(errors.Wrap(err, "accept failed"))
				close(accepted)
				return
			}
			logger.Printf("accepted session from %s", remote)
			go serveSession(logger.Sublogger(remote.String()), session)
		}
	}()

	select {
	case <-signals:
		logger.Println("received termination signal, shutting down")
	case <-accepted:
	}

	return nil
}

// serveSession services every stream opened by the peer on session, one at
// a time per stream, until the session ends.
func serveSession(logger *logging.Logger, session *boxio.Session) {
	for {
		stream, err := session.Next()
		if err != nil {
			logger.Debugf("session ended: %v", err)
			return
		}
		go serveStream(logger, stream)
	}
}

// serveStream reads exactly one message from stream and echoes it back. It
// deliberately never closes stream itself: closing any one stream tears down
// the shared muxer for its entire session (see BoxIo.Close), which would cut
// off every other stream a peer has open concurrently on the same
// connection. Streams are left for the session's own teardown to reclaim.
func serveStream(logger *logging.Logger, stream *boxio.BoxIo) {
	payload, err := stream.Read()
	if err != nil {
		logger.Debugf("stream %s: read failed: %v", stream.ID(), err)
		return
	}

	logger.Printf("stream %s: echoing %s", stream.ID(), humanize.Bytes(uint64(len(payload))))

	must.Succeed(stream.Write(payload), fmt.Sprintf("echo reply on stream %s", stream.ID()), logger)
}

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Accept multiplexed connections and echo each stream's first message",
	Args:  cmd.DisallowArguments,
	Run:   cmd.Mainify(serveMain),
}

var serveConfiguration struct {
	help bool
	port uint16
}

func init() {
	flags := serveCommand.Flags()
	flags.SortFlags = false
	flags.BoolVarP(&serveConfiguration.help, "help", "h", false, "Show help information")
	flags.Uint16Var(&serveConfiguration.port, "port", 0, "Port to listen on (0 selects an available port)")
}
