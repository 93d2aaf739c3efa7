package runner

import (
	"fmt"
	"runtime"

	"github.com/notargets/FEMAssembly/partitions"
	"go.uber.org/zap"
)

// Config holds the execution parameters of a Runner. Zero values select defaults.
type Config struct {
	Workers             int                          // Worker goroutines, runtime.NumCPU() when 0
	Strategy            partitions.PartitionStrategy // Entity sharding, BlockPartition when 0
	TargetPartitionSize int                          // Minimum entities per shard, 0 for no minimum
	Logger              *zap.Logger                  // Nop logger when nil
}

// withDefaults fills unset fields
func (c Config) withDefaults() (Config, error) {
	if c.Workers < 0 {
		return c, fmt.Errorf("invalid worker count %d", c.Workers)
	}
	if c.TargetPartitionSize < 0 {
		return c, fmt.Errorf("invalid target partition size %d", c.TargetPartitionSize)
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c, nil
}
