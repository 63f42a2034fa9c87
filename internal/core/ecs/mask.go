package ecs

// kindMask is a set of up to 256 component kinds. Each bit corresponds to a
// kind value. Being a comparable array it doubles as the query cache key:
// the mask of a kind list is canonical regardless of argument order or
// duplicates, so no string key needs to be built.
type kindMask [4]uint64

// maskOf builds the mask covering every kind in the list.
func maskOf(kinds []Kind) kindMask {
	var m kindMask
	for _, k := range kinds {
		m.set(k)
	}
	return m
}

func (m *kindMask) set(k Kind) {
	m[k>>6] |= uint64(1) << (k & 63)
}

func (m *kindMask) unset(k Kind) {
	m[k>>6] &^= uint64(1) << (k & 63)
}

// contains reports whether every bit of sub is set in m.
func (m kindMask) contains(sub kindMask) bool {
	return m[0]&sub[0] == sub[0] &&
		m[1]&sub[1] == sub[1] &&
		m[2]&sub[2] == sub[2] &&
		m[3]&sub[3] == sub[3]
}

func (m kindMask) isZero() bool {
	return m[0]|m[1]|m[2]|m[3] == 0
}
