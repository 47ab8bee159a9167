package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "navbake",
	Short: "bake volumetric navigation data",
	Long: `navbake is the command-line companion to the volnav bake pipeline:
	- bake a volume's navigation data from input geometry (OBJ),
	- save it to a binary file loadable by navquery/pathfind at runtime,
	- generate a prefilled build settings file (YAML),
	- print diagnostic information about a baked file.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
