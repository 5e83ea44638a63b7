package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/boxmux/boxmux/cmd"
	"github.com/boxmux/boxmux/pkg/boxio"
	"github.com/boxmux/boxmux/pkg/logging"
	"github.com/boxmux/boxmux/pkg/must"
)

// dialMain opens a single stream to the configured address, sends one
// message, waits for the echoed reply, and prints it.
func dialMain(command *cobra.Command, arguments []string) error {
	logger := logging.RootLogger.Sublogger("dial")

	if dialConfiguration.address == "" {
		return errors.New("an address must be specified with --address")
	}

	client, err := boxio.Connect(dialConfiguration.address, boxio.DefaultConfiguration(), logger)
	if err != nil {
		return errors.Wrap(err, "unable to connect")
	}
	defer must.Close(client, logger)

	stream, err := client.Open()
	if err != nil {
		return errors.Wrap(err, "unable to open stream")
	}
	defer must.Close(stream, logger)

	if err := stream.Write([]byte(dialConfiguration.message)); err != nil {
		return errors.Wrap(err, "unable to send message")
	}

	reply, err := stream.Read()
	if err != nil {
		return errors.Wrap(err, "unable to read reply")
	}

	must.Fprint(os.Stdout, logger, string(reply), "\n")

	return nil
}

var dialCommand = &cobra.Command{
	Use:   "dial",
	Short: "Open a stream, send a message, and print the echoed reply",
	Args:  cmd.DisallowArguments,
	Run:   cmd.Mainify(dialMain),
}

var dialConfiguration struct {
	help    bool
	address string
	message string
}

func init() {
	flags := dialCommand.Flags()
	flags.SortFlags = false
	flags.BoolVarP(&dialConfiguration.help, "help", "h", false, "Show help information")
	flags.StringVar(&dialConfiguration.address, "address", "", "Address to connect to (host:port)")
	flags.StringVar(&dialConfiguration.message, "message", "", "Message to send")
}
