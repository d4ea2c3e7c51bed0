package export

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

const keyTimeLayout = "20060102T150405.000000Z"

// KeyGenerator issues snapshot keys of the form
// <report ident prefix>-<UTC microsecond time>-<sequence>-<node>.
// Keys issued within the same microsecond tick differ by sequence; the
// tick never moves backwards even if the wall clock does.
type KeyGenerator struct {
	node string
	now  func() time.Time

	mu   sync.Mutex
	tick int64
	seq  int
}

// NewKeyGenerator creates a generator for one process. An empty node gets
// a random id.
func NewKeyGenerator(node string) *KeyGenerator {
	if node == "" {
		node = uuid.NewString()[:8]
	}
	return &KeyGenerator{node: node, now: time.Now}
}

// Node returns the process node id embedded in every key.
func (g *KeyGenerator) Node() string { return g.node }

// Next returns a new key for the report with the given ident.
func (g *KeyGenerator) Next(report uuid.UUID) string {
	g.mu.Lock()
	tick := g.now().UnixMicro()
	if tick <= g.tick {
		tick = g.tick
		g.seq++
	} else {
		g.tick = tick
		g.seq = 0
	}
	seq := g.seq
	g.mu.Unlock()

	ts := time.UnixMicro(tick).UTC().Format(keyTimeLayout)
	return fmt.Sprintf("%s-%s-%04d-%s", report.String()[:8], ts, seq, g.node)
}
