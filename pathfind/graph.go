package pathfind

import "github.com/arl/volnav/bake"

// regionByID returns the region with the given id, relying on
// bake/serialize.go's id-compaction invariant (ids are 1..len(Regions),
// Region.ID == index+1) with a defensive linear fallback should that
// ever not hold (e.g. a hand-built VolumeData in tests).
func regionByID(data *bake.VolumeData, id int32) *bake.Region {
	if i := int(id) - 1; i >= 0 && i < len(data.Regions) && data.Regions[i].ID == id {
		return data.Regions[i]
	}
	for _, r := range data.Regions {
		if r.ID == id {
			return r
		}
	}
	return nil
}
