package order

import (
	"fmt"
	"sync"
	"time"
)

// NumberPrefix starts every order number.
const NumberPrefix = "CAT"

const maxSeqPerSecond = 100

// NumberGenerator issues human-readable order numbers of the form
// CAT + YYMMDDHHmmss + two-digit sequence, e.g. CAT23122514353000.
//
// Numbers are strictly increasing within one generator. When more than 100
// numbers are needed in one second the generator runs ahead of the wall
// clock. Uniqueness across processes is left to the store's unique index.
type NumberGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
	seq  int
}

// NewNumberGenerator returns a generator reading the given clock. A nil clock
// means time.Now.
func NewNumberGenerator(now func() time.Time) *NumberGenerator {
	if now == nil {
		now = time.Now
	}
	return &NumberGenerator{now: now}
}

// Next returns the next order number.
func (g *NumberGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	sec := now.Truncate(time.Second)
	if sec.After(g.last) {
		g.last = sec
		g.seq = 0
	} else {
		g.seq++
		if g.seq >= maxSeqPerSecond {
			g.last = g.last.Add(time.Second)
			g.seq = 0
		}
	}

	return fmt.Sprintf("%s%s%02d", NumberPrefix, g.last.In(now.Location()).Format("060102150405"), g.seq)
}
