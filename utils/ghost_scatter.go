package utils

import (
	"fmt"
)

// GhostScatter holds pick and place indices moving ghost values between the owners and the
// holders of ghost copies, for a set of process-local index maps living in one address space.
// It stands in for the caller-side reverse scatter that follows local assembly; the assembly
// packages never call it.
type GhostScatter struct {
	NumRanks int
	Bs       int // block size of the arrays being scattered

	// PickIndices[p][q] are local positions on rank p holding ghosts owned by rank q
	PickIndices [][]PickBuffer
	// PlaceIndices[q][p] are local positions on owner q matching PickIndices[p][q]
	PlaceIndices [][]PlaceBuffer

	maps []*IndexMap
}

// PickBuffer contains ghost positions gathered on a holder
type PickBuffer struct {
	Indices   []int32
	OwnerRank int
}

// PlaceBuffer contains owned positions receiving contributions on an owner
type PlaceBuffer struct {
	Indices    []int32
	HolderRank int
}

// NewGhostScatter builds the scatter for maps, where maps[r] is the index map of rank r
func NewGhostScatter(maps []*IndexMap, bs int) (*GhostScatter, error) {
	if len(maps) == 0 {
		return nil, fmt.Errorf("no index maps")
	}
	if bs < 1 {
		return nil, fmt.Errorf("invalid block size %d", bs)
	}
	for r, m := range maps {
		if m.Rank() != r {
			return nil, fmt.Errorf("index map %d reports rank %d", r, m.Rank())
		}
	}

	gs := &GhostScatter{
		NumRanks: len(maps),
		Bs:       bs,
		maps:     maps,
	}
	gs.initializeBuffers()
	if err := gs.BuildIndices(); err != nil {
		return nil, err
	}
	return gs, nil
}

// initializeBuffers creates empty pick and place buffer structures
func (gs *GhostScatter) initializeBuffers() {
	gs.PickIndices = make([][]PickBuffer, gs.NumRanks)
	gs.PlaceIndices = make([][]PlaceBuffer, gs.NumRanks)
	for p := 0; p < gs.NumRanks; p++ {
		gs.PickIndices[p] = make([]PickBuffer, gs.NumRanks)
		gs.PlaceIndices[p] = make([]PlaceBuffer, gs.NumRanks)
		for q := 0; q < gs.NumRanks; q++ {
			gs.PickIndices[p][q] = PickBuffer{OwnerRank: q}
			gs.PlaceIndices[p][q] = PlaceBuffer{HolderRank: q}
		}
	}
}

// BuildIndices constructs pick and place indices for all ranks
func (gs *GhostScatter) BuildIndices() error {
	for p, m := range gs.maps {
		size := int32(m.SizeLocal())
		for i, g := range m.Ghosts() {
			q := m.Owners()[i]
			if q < 0 || q >= gs.NumRanks {
				return fmt.Errorf("rank %d ghost %d has owner %d outside [0, %d)", p, g, q, gs.NumRanks)
			}
			owned := gs.maps[q].GlobalToLocal(g)
			if !gs.maps[q].IsOwned(owned) {
				return fmt.Errorf("rank %d ghost %d is not owned by rank %d", p, g, q)
			}
			gs.PickIndices[p][q].Indices = append(gs.PickIndices[p][q].Indices, size+int32(i))
			gs.PlaceIndices[q][p].Indices = append(gs.PlaceIndices[q][p].Indices, owned)
		}
	}
	return nil
}

// Verify checks that every pick has a matching place and that all indices are in range
func (gs *GhostScatter) Verify() error {
	for p := 0; p < gs.NumRanks; p++ {
		extent := int32(gs.maps[p].SizeLocal() + gs.maps[p].NumGhosts())
		for q := 0; q < gs.NumRanks; q++ {
			pick := gs.PickIndices[p][q].Indices
			place := gs.PlaceIndices[q][p].Indices
			if len(pick) != len(place) {
				return fmt.Errorf("length mismatch: pick[%d][%d]=%d, place[%d][%d]=%d",
					p, q, len(pick), q, p, len(place))
			}
			for _, idx := range pick {
				if idx < int32(gs.maps[p].SizeLocal()) || idx >= extent {
					return fmt.Errorf("pick index %d on rank %d is not a ghost position", idx, p)
				}
			}
		}
	}
	return nil
}

func (gs *GhostScatter) checkArrays(n int) error {
	if n != gs.NumRanks {
		return fmt.Errorf("expected %d arrays, got %d", gs.NumRanks, n)
	}
	return nil
}

// ScatterReverseAdd adds every ghost entry into its owner's entry. arrays[r] is the local
// array of rank r with extent Bs*(SizeLocal+NumGhosts). Ghost entries are left unchanged.
func ScatterReverseAdd[T Scalar](gs *GhostScatter, arrays [][]T) error {
	if err := gs.checkArrays(len(arrays)); err != nil {
		return err
	}
	bs := int32(gs.Bs)
	for p := 0; p < gs.NumRanks; p++ {
		for q := 0; q < gs.NumRanks; q++ {
			pick := gs.PickIndices[p][q].Indices
			place := gs.PlaceIndices[q][p].Indices
			for i := range pick {
				for k := int32(0); k < bs; k++ {
					arrays[q][bs*place[i]+k] += arrays[p][bs*pick[i]+k]
				}
			}
		}
	}
	return nil
}

// ScatterForward copies owned values into the ghost entries of every holder
func ScatterForward[T Scalar](gs *GhostScatter, arrays [][]T) error {
	if err := gs.checkArrays(len(arrays)); err != nil {
		return err
	}
	bs := int32(gs.Bs)
	for p := 0; p < gs.NumRanks; p++ {
		for q := 0; q < gs.NumRanks; q++ {
			pick := gs.PickIndices[p][q].Indices
			place := gs.PlaceIndices[q][p].Indices
			for i := range pick {
				for k := int32(0); k < bs; k++ {
					arrays[p][bs*pick[i]+k] = arrays[q][bs*place[i]+k]
				}
			}
		}
	}
	return nil
}
