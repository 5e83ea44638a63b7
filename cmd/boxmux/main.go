package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/boxmux/boxmux/cmd"
	"github.com/boxmux/boxmux/pkg/info"
	"github.com/boxmux/boxmux/pkg/logging"
)

// applyLogLevel parses the --log-level flag and enables debug-level logging
// when it names level debug or higher. Finer-grained control (per-level
// filtering rather than a single debug on/off switch) isn't needed by
// anything in this CLI, so Level values above LevelDebug all just enable it.
func applyLogLevel(command *cobra.Command, arguments []string) {
	// Shell completion requests shouldn't have their output polluted by debug
	// logging side effects, regardless of the configured level.
	if cmd.PerformingShellCompletion || rootConfiguration.logLevel == "" {
		return
	}
	level, ok := logging.NameToLevel(rootConfiguration.logLevel)
	if !ok {
		cmd.Fatal(errors.Errorf("invalid log level: %s", rootConfiguration.logLevel))
	}
	if level >= logging.LevelDebug {
		info.DebugEnabled = true
	}
}

func rootMain(command *cobra.Command, arguments []string) {
	// Print version information, if requested.
	if rootConfiguration.version {
		os.Stdout.WriteString(info.Version + "\n")
		return
	}

	// Generate a bash completion script, if requested.
	if rootConfiguration.bashCompletionScript != "" {
		if err := command.GenBashCompletionFile(rootConfiguration.bashCompletionScript); err != nil {
			cmd.Fatal(errors.Wrap(err, "unable to generate bash completion script"))
		}
		return
	}

	// With no flags or subcommand, just show help.
	command.Help()
}

var rootCommand = &cobra.Command{
	Use:              "boxmux",
	Short:            "boxmux multiplexes independent byte streams over a single TCP connection",
	Run:              rootMain,
	PersistentPreRun: applyLogLevel,
}

var rootConfiguration struct {
	help                 bool
	version              bool
	bashCompletionScript string
	logLevel             string
}

func init() {
	flags := rootCommand.PersistentFlags()
	flags.StringVar(&rootConfiguration.logLevel, "log-level", "info", "Log level (disabled|error|warn|info|debug|trace)")

	flags = rootCommand.Flags()
	flags.BoolVarP(&rootConfiguration.help, "help", "h", false, "Show help information")
	flags.BoolVarP(&rootConfiguration.version, "version", "V", false, "Show version information")
	flags.StringVar(&rootConfiguration.bashCompletionScript, "generate-bash-completion", "", "Generate bash completion script")
	flags.MarkHidden("generate-bash-completion")

	cobra.EnableCommandSorting = false
	cobra.MousetrapHelpText = ""

	rootCommand.AddCommand(
		serveCommand,
		dialCommand,
		versionCommand,
	)
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}
