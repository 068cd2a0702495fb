// models/mesh.go
package models

// MaxSignals caps the activity feed kept in the shared mesh document.
const MaxSignals = 20

// Commander is one player's snapshot inside the shared mesh. Rank is recomputed
// on every push and carries no meaning of its own.
type Commander struct {
	Rank       int    `json:"rank"`
	Username   string `json:"username"`
	XP         int64  `json:"xp"`
	Avatar     string `json:"avatar"`
	ID         string `json:"id"`
	LastActive int64  `json:"lastActive"` // epoch ms

	// Synthetic marks ambient competitors merged into local views. Never serialized remotely.
	Synthetic bool `json:"synthetic,omitempty"`
}

// Signal is one entry of the activity feed.
type Signal struct {
	ID        string `json:"id"`
	Commander string `json:"commander"`
	Action    string `json:"action"`
	Timestamp int64  `json:"timestamp"` // epoch ms

	Synthetic bool `json:"synthetic,omitempty"`
}

// Mesh is the whole shared document, read and written wholesale.
type Mesh struct {
	Commanders []Commander `json:"commanders"`
	Signals    []Signal    `json:"signals"`
}

// EmptyMesh is the fallback used whenever the remote document cannot be obtained.
func EmptyMesh() *Mesh {
	return &Mesh{Commanders: []Commander{}, Signals: []Signal{}}
}

// Clone deep-copies the document so callers can mutate it freely.
func (m *Mesh) Clone() *Mesh {
	if m == nil {
		return EmptyMesh()
	}
	out := &Mesh{
		Commanders: make([]Commander, len(m.Commanders)),
		Signals:    make([]Signal, len(m.Signals)),
	}
	copy(out.Commanders, m.Commanders)
	copy(out.Signals, m.Signals)
	return out
}

// FindCommander returns the index of the commander with the given id, or -1.
func (m *Mesh) FindCommander(id string) int {
	for i, c := range m.Commanders {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Normalize replaces nil slices so the document always serializes as arrays.
func (m *Mesh) Normalize() {
	if m.Commanders == nil {
		m.Commanders = []Commander{}
	}
	if m.Signals == nil {
		m.Signals = []Signal{}
	}
}
