package utils

import (
	"fmt"
	"sort"
)

// IndexMap describes the distribution of a contiguous index range across processes.
// Local indices [0, SizeLocal) are owned, local indices [SizeLocal, SizeLocal+NumGhosts)
// are ghosts owned by other processes. Global indices are block indices; callers multiply
// by their block size.
type IndexMap struct {
	rank       int
	localRange [2]int64 // owned global range [start, end)
	ghosts     []int64  // global index of each ghost
	owners     []int    // owning rank of each ghost
	globalSize int64
	ghostIndex map[int64]int32 // global -> local ghost position
}

// NewIndexMap creates an index map for process rank owning [start, end) with the given ghosts.
// globalSize is the total number of indices across all processes.
func NewIndexMap(rank int, start, end, globalSize int64, ghosts []int64, owners []int) (*IndexMap, error) {
	if start < 0 || end < start || end > globalSize {
		return nil, fmt.Errorf("invalid owned range [%d, %d) for global size %d", start, end, globalSize)
	}
	if len(ghosts) != len(owners) {
		return nil, fmt.Errorf("ghost count %d does not match owner count %d", len(ghosts), len(owners))
	}

	im := &IndexMap{
		rank:       rank,
		localRange: [2]int64{start, end},
		ghosts:     append([]int64(nil), ghosts...),
		owners:     append([]int(nil), owners...),
		globalSize: globalSize,
		ghostIndex: make(map[int64]int32, len(ghosts)),
	}
	size := int32(end - start)
	for i, g := range ghosts {
		if g >= start && g < end {
			return nil, fmt.Errorf("ghost %d (global %d) lies in the owned range [%d, %d)", i, g, start, end)
		}
		if g < 0 || g >= globalSize {
			return nil, fmt.Errorf("ghost %d (global %d) outside global size %d", i, g, globalSize)
		}
		if owners[i] == rank {
			return nil, fmt.Errorf("ghost %d (global %d) is owned by this rank %d", i, g, rank)
		}
		if _, dup := im.ghostIndex[g]; dup {
			return nil, fmt.Errorf("duplicate ghost global index %d", g)
		}
		im.ghostIndex[g] = size + int32(i)
	}
	return im, nil
}

// NewSerialIndexMap creates an index map with size owned indices and no ghosts
func NewSerialIndexMap(size int) *IndexMap {
	im, err := NewIndexMap(0, 0, int64(size), int64(size), nil, nil)
	if err != nil {
		panic(err)
	}
	return im
}

// Rank returns the process rank this map describes
func (im *IndexMap) Rank() int { return im.rank }

// SizeLocal returns the number of owned indices
func (im *IndexMap) SizeLocal() int { return int(im.localRange[1] - im.localRange[0]) }

// NumGhosts returns the number of ghost indices
func (im *IndexMap) NumGhosts() int { return len(im.ghosts) }

// SizeGlobal returns the total number of indices across all processes
func (im *IndexMap) SizeGlobal() int64 { return im.globalSize }

// LocalRange returns the owned global range [start, end)
func (im *IndexMap) LocalRange() (start, end int64) { return im.localRange[0], im.localRange[1] }

// Ghosts returns the global indices of the ghosts
func (im *IndexMap) Ghosts() []int64 { return im.ghosts }

// Owners returns the owning rank of each ghost
func (im *IndexMap) Owners() []int { return im.owners }

// IsOwned reports whether local index i is owned by this process
func (im *IndexMap) IsOwned(i int32) bool { return i >= 0 && int(i) < im.SizeLocal() }

// LocalToGlobal maps local indices to global indices
func (im *IndexMap) LocalToGlobal(local []int32, global []int64) error {
	if len(global) != len(local) {
		return fmt.Errorf("output length %d does not match input length %d", len(global), len(local))
	}
	size := int32(im.SizeLocal())
	for i, l := range local {
		switch {
		case l >= 0 && l < size:
			global[i] = im.localRange[0] + int64(l)
		case l >= size && int(l-size) < len(im.ghosts):
			global[i] = im.ghosts[l-size]
		default:
			return fmt.Errorf("local index %d out of range [0, %d)", l, int(size)+len(im.ghosts))
		}
	}
	return nil
}

// GlobalToLocal returns the local index of global index g, or -1 if g is neither owned nor a ghost
func (im *IndexMap) GlobalToLocal(g int64) int32 {
	if g >= im.localRange[0] && g < im.localRange[1] {
		return int32(g - im.localRange[0])
	}
	if l, ok := im.ghostIndex[g]; ok {
		return l
	}
	return -1
}

// GhostOwnerRanks returns the sorted set of ranks owning at least one ghost
func (im *IndexMap) GhostOwnerRanks() []int {
	seen := make(map[int]bool)
	var ranks []int
	for _, o := range im.owners {
		if !seen[o] {
			seen[o] = true
			ranks = append(ranks, o)
		}
	}
	sort.Ints(ranks)
	return ranks
}
