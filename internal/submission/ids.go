package submission

import (
	"hash/fnv"
	"os"

	"github.com/bwmarrin/snowflake"
)

// NewIDNode returns the snowflake node used for local fallback ids. A node
// of 0 or less is derived from the hostname.
func NewIDNode(node int64) (*snowflake.Node, error) {
	if node <= 0 {
		host, _ := os.Hostname()
		h := fnv.New32a()
		_, _ = h.Write([]byte(host))
		node = int64(h.Sum32()) & 0x3FF
	}
	return snowflake.NewNode(node & 0x3FF)
}
