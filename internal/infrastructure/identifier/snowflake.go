package identifier

import (
	"fmt"

	paymentapp "github.com/agriconnect/backend/internal/application/payment"
	"github.com/bwmarrin/snowflake"
)

// SnowflakeReferenceGenerator issues transaction references that are
// unique across nodes without coordination. Each node gets a distinct
// node ID at deploy time.
type SnowflakeReferenceGenerator struct {
	node   *snowflake.Node
	prefix string
}

// NewSnowflakeReferenceGenerator creates a generator for the given node ID
func NewSnowflakeReferenceGenerator(nodeID int64, prefix string) (*SnowflakeReferenceGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %w", err)
	}
	if prefix == "" {
		prefix = "TXN"
	}

	return &SnowflakeReferenceGenerator{node: node, prefix: prefix}, nil
}

// Next returns a new unique reference
func (g *SnowflakeReferenceGenerator) Next() string {
	return g.prefix + "-" + g.node.Generate().String()
}

// Ensure SnowflakeReferenceGenerator implements ReferenceGenerator
var _ paymentapp.ReferenceGenerator = (*SnowflakeReferenceGenerator)(nil)
