package cmd

import (
	"fmt"
	"os"

	"github.com/arl/volnav/bake"
	"github.com/spf13/cobra"
)

// infoCmd represents the info command.
var infoCmd = &cobra.Command{
	Use:   "info NAVDATA",
	Short: "show infos about a baked navigation data file",
	Long: `Read volumetric navigation data from a binary file, then print
information on standard output.`,
	Args: cobra.ExactArgs(1),
	Run:  doInfo,
}

func init() {
	RootCmd.AddCommand(infoCmd)
}

func doInfo(cmd *cobra.Command, args []string) {
	f, err := os.Open(args[0])
	check(err)
	defer f.Close()

	data, err := bake.Decode(f)
	check(err)

	var blockingTris int
	if len(data.BlockingTriangleIndices) > 0 {
		blockingTris = len(data.BlockingTriangleIndices) / 3
	}

	fmt.Printf("vertices          : %d\n", len(data.Vertices))
	fmt.Printf("regions           : %d\n", len(data.Regions))
	fmt.Printf("blocking triangles: %d\n", blockingTris)
	fmt.Printf("external links local space: %v\n", data.ExternalLinksAreLocalSpace)

	var internal, external int
	for _, r := range data.Regions {
		internal += len(r.Internal)
		external += len(r.External)
	}
	fmt.Printf("internal links    : %d\n", internal)
	fmt.Printf("external links     : %d\n", external)
}
