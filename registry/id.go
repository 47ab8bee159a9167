package registry

import (
	"hash/fnv"

	"github.com/arl/volnav/bake"
	"github.com/google/uuid"
)

// DeriveVolumeID computes the stable 64-bit id for a volume from a
// stable source key (its authored name/GUID), following
// detour/node.go's hashRef convention but over a string key rather than
// a native pointer, since spec §6 requires the id to survive reloads.
// The derivation is a pure function so the migration path described in
// spec §6 ("old→new ids by replaying the ID derivation") can be
// replayed offline against a historical key.
func DeriveVolumeID(sourceKey string) bake.VolumeID {
	h := fnv.New64a()
	h.Write([]byte(sourceKey))
	// Clear the sign bit: VolumeID is defined non-negative (spec §6).
	return bake.VolumeID(h.Sum64() &^ (1 << 63))
}

// NewVolumeID allocates a fresh stable id for a volume authored without
// a prior source key, following Gekko3D-gekko's use of google/uuid for
// entity identity: the id is derived from a freshly generated UUID
// rather than a caller-supplied name.
func NewVolumeID() bake.VolumeID {
	return DeriveVolumeID(uuid.NewString())
}
