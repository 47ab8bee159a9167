package navquery

import (
	"github.com/arl/gogeo/f32/d3"
	"github.com/arl/volnav/internal/mathutil"
	"github.com/arl/volnav/registry"
)

// Raycast implements spec §4.4: tests segment [start,end] (world space)
// against a volume's blocking triangles and returns the minimum hit
// parameter t in [0,1], or -1 if no triangle is crossed. Both endpoints
// are transformed into the volume's local space before testing, mirroring
// detour/polyquery.go's raycast which always walks the mesh in its own
// coordinate frame.
func Raycast(vol *registry.Volume, start, end d3.Vec3) float32 {
	return raycast(vol, start, end, false)
}

// RaycastEarly is the early-return variant of Raycast (spec §4.4): it
// returns on the first hit found rather than the minimum t across all
// triangles, used where only "is anything in the way" matters.
func RaycastEarly(vol *registry.Volume, start, end d3.Vec3) float32 {
	return raycast(vol, start, end, true)
}

func raycast(vol *registry.Volume, start, end d3.Vec3, early bool) float32 {
	localStart := vol.Transform.ToLocal(start)
	localEnd := vol.Transform.ToLocal(end)
	dir := localEnd.Sub(localStart)

	best := float32(-1)
	flat := vol.Data.BlockingTriangleIndices
	for i := 0; i+2 < len(flat); i += 3 {
		a := vol.Data.Vertices[flat[i]]
		b := vol.Data.Vertices[flat[i+1]]
		c := vol.Data.Vertices[flat[i+2]]

		if mathutil.SegmentSameSideOfAxis(localStart, localEnd, a, b, c) {
			continue
		}
		t, hit := mathutil.RayTriangleIntersect(localStart, dir, a, b, c, 0.01, 1)
		if !hit {
			continue
		}
		if early {
			return t
		}
		if best < 0 || t < best {
			best = t
		}
	}
	return best
}
