package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/arl/gogeo/f32/d3"
	"github.com/arl/volnav/bake"
	"github.com/arl/volnav/navquery"
	"github.com/arl/volnav/pathfind"
	"github.com/arl/volnav/registry"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve NAVDATA",
	Short: "load baked navigation data and answer queries interactively",
	Long: `Load a baked VolumeData, register it at the identity transform, and
drive "sample x y z" / "path x1 y1 z1 x2 y2 z2" queries typed on
standard input, one per line. Type "quit" to exit.`,
	Args: cobra.ExactArgs(1),
	Run:  doServe,
}

func init() {
	RootCmd.AddCommand(serveCmd)
}

func doServe(cmd *cobra.Command, args []string) {
	f, err := os.Open(args[0])
	check(err)
	data, err := bake.Decode(f)
	f.Close()
	check(err)

	reg := registry.New()
	reg.Enter(bake.VolumeID(1), data, registry.Identity())

	ctx := bake.NewContext(false)
	finder := pathfind.NewFinder(reg, ctx)

	fmt.Println("navbake serve: ready (commands: sample x y z | path x1 y1 z1 x2 y2 z2 | quit)")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "quit", "exit":
			return
		case "sample":
			runSample(reg, fields[1:])
		case "path":
			runPath(reg, finder, fields[1:])
		default:
			fmt.Println("unknown command:", fields[0])
		}
	}
}

func parseVec3(fields []string) (d3.Vec3, bool) {
	if len(fields) != 3 {
		return nil, false
	}
	var v d3.Vec3
	for _, s := range fields {
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, false
		}
		v = append(v, float32(f))
	}
	return v, true
}

func runSample(reg *registry.Registry, fields []string) {
	p, ok := parseVec3(fields)
	if !ok {
		fmt.Println("usage: sample x y z")
		return
	}
	hit, ok := navquery.SamplePosition(reg, p, 5)
	if !ok {
		fmt.Println("no volume within range")
		return
	}
	fmt.Printf("volume=%d region=%d position=%v\n", hit.Volume.ID, hit.Region.ID, hit.Position)
}

func runPath(reg *registry.Registry, finder *pathfind.Finder, fields []string) {
	if len(fields) != 6 {
		fmt.Println("usage: path x1 y1 z1 x2 y2 z2")
		return
	}
	start, ok1 := parseVec3(fields[:3])
	end, ok2 := parseVec3(fields[3:])
	if !ok1 || !ok2 {
		fmt.Println("usage: path x1 y1 z1 x2 y2 z2")
		return
	}

	startHit, ok := navquery.SamplePosition(reg, start, 5)
	if !ok {
		fmt.Println("start not on any volume")
		return
	}
	endHit, ok := navquery.SamplePosition(reg, end, 5)
	if !ok {
		fmt.Println("end not on any volume")
		return
	}

	id := finder.FindPath(startHit, endHit, start, end, func(p *pathfind.Path, st pathfind.Status) {
		defer p.Release()
		fmt.Printf("status=%v waypoints=%d\n", st, len(p.Waypoints))
		for _, wp := range p.Waypoints {
			fmt.Printf("  %s %v\n", wp.Type, wp.Position)
		}
	})
	finder.RunToCompletion(id)
}
