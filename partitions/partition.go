package partitions

import (
	"fmt"

	"github.com/notargets/FEMAssembly/utils"
)

// Partition is a set of entity positions assembled together by one worker
type Partition struct {
	// Unique identifier for this partition, also its merge order
	ID int

	// Entity membership, ascending
	Entities    []int // Positions in the integral's entity list
	NumEntities int   // Number of entities
	MaxEntities int   // Largest partition size of the layout
}

// PartitionLayout manages the decomposition of one entity list
type PartitionLayout struct {
	// All partitions
	Partitions []Partition

	// Global sizing information
	KpartMax      int // max(NumEntities) across all partitions
	TotalEntities int // Sum of all entities across partitions
	NumPartitions int // Total number of partitions

	// Entity to partition mapping
	EToP []int // Length TotalEntities: entity k belongs to partition EToP[k]
}

// PartitionedArray holds one private block of Stride values per partition
type PartitionedArray[T utils.Scalar] struct {
	// Contiguous storage for all partitions
	// Layout: [Partition 0 Data][Partition 1 Data]...[Partition N-1 Data]
	GlobalData []T

	// Partition p's data starts at GlobalData[Offsets[p]]
	Offsets []int

	// Number of values per partition
	Stride int
}

// Methods for PartitionLayout

// GetPartition returns the partition containing entity k
func (pl *PartitionLayout) GetPartition(entity int) int {
	if entity < 0 || entity >= len(pl.EToP) {
		return -1
	}
	return pl.EToP[entity]
}

// ValidateLayout checks partition consistency: sizes, the KpartMax bound and that every
// entity belongs to exactly the partition EToP names, in ascending order
func (pl *PartitionLayout) ValidateLayout() error {
	if len(pl.Partitions) != pl.NumPartitions {
		return fmt.Errorf("layout has %d partitions, NumPartitions is %d", len(pl.Partitions), pl.NumPartitions)
	}
	if len(pl.EToP) != pl.TotalEntities {
		return fmt.Errorf("EToP has length %d, TotalEntities is %d", len(pl.EToP), pl.TotalEntities)
	}
	actualMax, total := 0, 0
	for i, p := range pl.Partitions {
		if p.ID != i {
			return fmt.Errorf("partition %d reports ID %d", i, p.ID)
		}
		if p.NumEntities != len(p.Entities) {
			return fmt.Errorf("partition %d: NumEntities %d != %d entities", p.ID, p.NumEntities, len(p.Entities))
		}
		if p.NumEntities > actualMax {
			actualMax = p.NumEntities
		}
		if p.MaxEntities != pl.KpartMax {
			return fmt.Errorf("partition %d: MaxEntities %d != KpartMax %d",
				p.ID, p.MaxEntities, pl.KpartMax)
		}
		for j, e := range p.Entities {
			if pl.GetPartition(e) != p.ID {
				return fmt.Errorf("partition %d holds entity %d mapped to partition %d", p.ID, e, pl.GetPartition(e))
			}
			if j > 0 && p.Entities[j-1] >= e {
				return fmt.Errorf("partition %d entities are not ascending at %d", p.ID, j)
			}
		}
		total += p.NumEntities
	}
	if actualMax != pl.KpartMax {
		return fmt.Errorf("computed KpartMax %d != stored KpartMax %d",
			actualMax, pl.KpartMax)
	}
	if total != pl.TotalEntities {
		return fmt.Errorf("partitions hold %d entities, TotalEntities is %d", total, pl.TotalEntities)
	}
	return nil
}

// Methods for PartitionedArray

// NewPartitionedArray allocates zeroed storage of stride values for each of numPartitions
func NewPartitionedArray[T utils.Scalar](numPartitions, stride int) *PartitionedArray[T] {
	offsets := make([]int, numPartitions+1)
	for p := range offsets {
		offsets[p] = p * stride
	}
	return &PartitionedArray[T]{
		GlobalData: make([]T, numPartitions*stride),
		Offsets:    offsets,
		Stride:     stride,
	}
}

// GetPartitionData returns a slice for partition p's data
func (pa *PartitionedArray[T]) GetPartitionData(partitionID int) []T {
	if partitionID < 0 || partitionID >= len(pa.Offsets)-1 {
		return nil
	}
	start := pa.Offsets[partitionID]
	end := pa.Offsets[partitionID+1]
	return pa.GlobalData[start:end]
}

// ReduceInto adds every partition's data into dst in partition order
func (pa *PartitionedArray[T]) ReduceInto(dst []T) error {
	if len(dst) != pa.Stride {
		return fmt.Errorf("destination length %d does not match stride %d", len(dst), pa.Stride)
	}
	for p := 0; p < len(pa.Offsets)-1; p++ {
		for i, v := range pa.GetPartitionData(p) {
			dst[i] += v
		}
	}
	return nil
}
