package server

import (
	"bytes"
	"encoding/json"

	"github.com/b99631944-eng/Bennett-lab/internal/core/components"
	"github.com/b99631944-eng/Bennett-lab/pkg/generic"
)

// entityState is the wire form of one positioned entity.
type entityState struct {
	ID      uint64  `json:"id"`
	Name    string  `json:"name,omitempty"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Z       float64 `json:"z"`
	Mesh    string  `json:"mesh,omitempty"`
	Visible bool    `json:"visible"`
}

// worldSnapshot is the payload streamed to websocket clients. It carries
// only state that changes when the world changes, so an unchanged world
// encodes to identical bytes and the broadcast can be suppressed by hash.
type worldSnapshot struct {
	Entities []entityState `json:"entities"`
}

var encodeBuffers = generic.NewPool(func() *bytes.Buffer { return new(bytes.Buffer) })

// encodeSnapshot serializes every active entity that has a position,
// serialized against in-flight frames so component reads are consistent.
func (s *Server) encodeSnapshot() ([]byte, error) {
	snap := worldSnapshot{Entities: make([]entityState, 0, 16)}

	world := s.eng.World
	world.RunSafe(func() {
		for _, id := range world.Query(components.KindPosition) {
			st := entityState{ID: uint64(id)}
			if name, ok := world.EntityName(id); ok {
				st.Name = name
			}
			if c, ok := world.GetComponent(id, components.KindPosition); ok {
				pos := c.(*components.Position)
				st.X, st.Y, st.Z = pos.X, pos.Y, pos.Z
			}
			if c, ok := world.GetComponent(id, components.KindMesh); ok {
				mesh := c.(*components.Mesh)
				st.Mesh = mesh.Resource
				st.Visible = mesh.Visible
			}
			snap.Entities = append(snap.Entities, st)
		}
	})

	buf := encodeBuffers.Get()
	buf.Reset()
	defer encodeBuffers.Put(buf)

	if err := json.NewEncoder(buf).Encode(snap); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}
