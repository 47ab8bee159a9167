package bake

import (
	"encoding/gob"
	"io"
)

// Encode writes data in the binary format consumed by navquery/pathfind
// at runtime and by "navbake info". Plain encoding/gob: VolumeData's
// shape is already generic Go composite types (no fixed-width layout or
// cross-language contract to uphold, unlike go-detour's C++-mirroring
// navmesh binary format), so gob's self-describing streaming codec needs
// no maintained schema of its own.
func Encode(w io.Writer, data *VolumeData) error {
	return gob.NewEncoder(w).Encode(data)
}

// Decode reads a VolumeData previously written by Encode.
func Decode(r io.Reader) (*VolumeData, error) {
	var data VolumeData
	if err := gob.NewDecoder(r).Decode(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
