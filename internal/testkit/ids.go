// Package testkit holds helpers shared by tests of several packages.
package testkit

import "assetyaml/internal/itemid"

// ItemID returns a deterministic id derived from index: the little-endian
// bytes of index repeated four times.
func ItemID(index int) itemid.ID {
	var id itemid.ID
	for i := range 4 {
		id[4*i] = byte(index)
		id[4*i+1] = byte(index >> 8)
		id[4*i+2] = byte(index >> 16)
		id[4*i+3] = byte(index >> 24)
	}

	return id
}

// Match reports whether id was produced by ItemID(index).
func Match(id itemid.ID, index int) bool {
	return id == ItemID(index)
}
