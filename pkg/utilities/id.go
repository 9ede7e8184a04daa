package utilities

import (
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

// NewKSUID generates a new globally unique KSUID string.
func NewKSUID() string {
	return ksuid.New().String()
}

// IDGenerator hands out request IDs. It keeps one snowflake node for the
// life of the process; a fresh node per call would restart the sequence
// and repeat IDs within the same millisecond.
type IDGenerator struct {
	node *snowflake.Node
}

// NewIDGenerator uses the node ID from SNOWFLAKE_NODE, defaulting to 1.
func NewIDGenerator() *IDGenerator {
	nodeID, err := strconv.ParseInt(os.Getenv("SNOWFLAKE_NODE"), 10, 64)
	if err != nil {
		nodeID = 1
	}
	return NewIDGeneratorWithNode(nodeID)
}

// NewIDGeneratorWithNode builds a generator for the given node. If the node
// cannot be initialized (out of range) the generator falls back to KSUIDs.
func NewIDGeneratorWithNode(nodeID int64) *IDGenerator {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return &IDGenerator{}
	}
	return &IDGenerator{node: node}
}

// Next returns a new unique ID string.
func (g *IDGenerator) Next() string {
	if g == nil || g.node == nil {
		return NewKSUID()
	}
	return g.node.Generate().String()
}
