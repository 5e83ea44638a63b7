package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boxmux/boxmux/cmd"
	"github.com/boxmux/boxmux/pkg/info"
)

func versionMain(command *cobra.Command, arguments []string) error {
	fmt.Println(info.Version)
	return nil
}

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cmd.DisallowArguments,
	Run:   cmd.Mainify(versionMain),
}

var versionConfiguration struct {
	help bool
}

func init() {
	flags := versionCommand.Flags()
	flags.SortFlags = false
	flags.BoolVarP(&versionConfiguration.help, "help", "h", false, "Show help information")
}
