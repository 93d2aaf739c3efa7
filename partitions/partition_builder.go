package partitions

import (
	"fmt"
	"math"
)

// PartitionBuilder splits an entity list into partitions for parallel assembly. The split
// depends only on the entity count, the partition count and the strategy.
type PartitionBuilder struct {
	NumEntities int

	// Partitioning parameters
	NumPartitions       int // Desired partition count, typically the worker count
	TargetPartitionSize int // Minimum entities per partition, 0 for no minimum
	Strategy            PartitionStrategy
}

// PartitionStrategy defines how entities are grouped
type PartitionStrategy int

const (
	BlockPartition PartitionStrategy = iota // Consecutive entities
	RoundRobin                              // Distribute cyclically
)

func (s PartitionStrategy) String() string {
	switch s {
	case BlockPartition:
		return "block"
	case RoundRobin:
		return "roundrobin"
	default:
		return fmt.Sprintf("PartitionStrategy(%d)", int(s))
	}
}

// ParseStrategy converts "block" or "roundrobin" to a strategy
func ParseStrategy(name string) (PartitionStrategy, error) {
	switch name {
	case "block", "":
		return BlockPartition, nil
	case "roundrobin", "round-robin":
		return RoundRobin, nil
	default:
		return BlockPartition, fmt.Errorf("unknown partition strategy %q", name)
	}
}

// BuildPartitions creates the partition layout
func (pb *PartitionBuilder) BuildPartitions() (*PartitionLayout, error) {
	if pb.NumEntities < 0 {
		return nil, fmt.Errorf("invalid entity count %d", pb.NumEntities)
	}
	if pb.Strategy != BlockPartition && pb.Strategy != RoundRobin {
		return nil, fmt.Errorf("unsupported strategy %s", pb.Strategy)
	}

	// Determine number of partitions needed
	numPartitions := pb.calculateNumPartitions()

	// Partition the entities
	eToP := pb.partitionEntities(numPartitions)

	// Create partition structures
	partitions := pb.createPartitions(eToP, numPartitions)

	kpartMax := pb.calculateKpartMax(partitions)
	for i := range partitions {
		partitions[i].MaxEntities = kpartMax
	}

	layout := &PartitionLayout{
		Partitions:    partitions,
		KpartMax:      kpartMax,
		TotalEntities: pb.NumEntities,
		NumPartitions: numPartitions,
		EToP:          eToP,
	}

	if err := layout.ValidateLayout(); err != nil {
		return nil, fmt.Errorf("invalid partition layout: %w", err)
	}

	return layout, nil
}

// calculateNumPartitions caps the requested count so no partition is empty or smaller than
// the target size
func (pb *PartitionBuilder) calculateNumPartitions() int {
	numPartitions := pb.NumPartitions
	if pb.TargetPartitionSize > 0 {
		bySize := int(math.Ceil(float64(pb.NumEntities) / float64(pb.TargetPartitionSize)))
		if bySize < numPartitions {
			numPartitions = bySize
		}
	}
	if numPartitions > pb.NumEntities {
		numPartitions = pb.NumEntities
	}

	// Ensure at least one partition
	if numPartitions < 1 {
		numPartitions = 1
	}

	return numPartitions
}

// partitionEntities assigns entities to partitions
func (pb *PartitionBuilder) partitionEntities(numPartitions int) []int {
	eToP := make([]int, pb.NumEntities)

	switch pb.Strategy {
	case RoundRobin:
		for i := 0; i < pb.NumEntities; i++ {
			eToP[i] = i % numPartitions
		}

	default:
		// Balanced blocks: the first NumEntities%numPartitions partitions get one extra
		base, extra := pb.NumEntities/numPartitions, pb.NumEntities%numPartitions
		i := 0
		for p := 0; p < numPartitions; p++ {
			size := base
			if p < extra {
				size++
			}
			for k := 0; k < size; k++ {
				eToP[i] = p
				i++
			}
		}
	}

	return eToP
}

// createPartitions builds partition structures from entity assignments
func (pb *PartitionBuilder) createPartitions(eToP []int, numPartitions int) []Partition {
	partitions := make([]Partition, numPartitions)

	for i := range partitions {
		partitions[i] = Partition{
			ID:       i,
			Entities: make([]int, 0, pb.NumEntities/numPartitions+1),
		}
	}

	for entity, part := range eToP {
		partitions[part].Entities = append(partitions[part].Entities, entity)
		partitions[part].NumEntities++
	}

	return partitions
}

// calculateKpartMax finds maximum entities across all partitions
func (pb *PartitionBuilder) calculateKpartMax(partitions []Partition) int {
	kpartMax := 0
	for _, p := range partitions {
		if p.NumEntities > kpartMax {
			kpartMax = p.NumEntities
		}
	}
	return kpartMax
}
