package cmd

import (
	"fmt"
	"os"

	"github.com/arl/volnav/bake"
	"github.com/arl/volnav/internal/geomenv"
	"github.com/spf13/cobra"
)

var (
	cfgVal       string
	inputVal     string
	verboseBuild bool
)

// buildCmd represents the bake command.
var buildCmd = &cobra.Command{
	Use:   "bake OUTFILE",
	Short: "bake a volume's navigation data from input geometry",
	Long: `Bake a volume's navigation data from input geometry in OBJ.

The bake process is controlled by the provided build settings (--config).
The resulting VolumeData is written to OUTFILE in binary format, readable
by navquery and pathfind at runtime.`,
	Args: cobra.ExactArgs(1),
	Run:  doBake,
}

func init() {
	RootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVar(&cfgVal, "config", "", "build settings (defaults to bake.DefaultConfig when unset)")
	buildCmd.Flags().StringVar(&inputVal, "input", "", "input geometry OBJ file (required)")
	buildCmd.Flags().BoolVar(&verboseBuild, "verbose", false, "print bake progress and timings")
}

func doBake(cmd *cobra.Command, args []string) {
	outfile := args[0]
	if inputVal == "" {
		fmt.Println("error: --input is required")
		os.Exit(-1)
	}

	cfg := bake.DefaultConfig()
	if cfgVal != "" {
		check(unmarshalYAMLFile(cfgVal, &cfg))
	}

	mesh, err := geomenv.Load(inputVal)
	check(err)

	if len(cfg.BoundsMin) == 0 && len(cfg.BoundsMax) == 0 {
		cfg.BoundsMin, cfg.BoundsMax = mesh.Bounds()
	}

	ctx := bake.NewContext(verboseBuild)
	data := bake.Bake(ctx, cfg, mesh)

	if verboseBuild {
		for _, msg := range ctx.Messages() {
			fmt.Println(msg)
		}
	}

	f, err := os.Create(outfile)
	check(err)
	defer f.Close()
	check(bake.Encode(f, data))

	fmt.Printf("navigation data written to '%s': %d region(s), %d vert(s)\n",
		outfile, len(data.Regions), len(data.Vertices))
}
