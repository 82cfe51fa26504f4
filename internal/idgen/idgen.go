// Package idgen generates record identifiers from a high-resolution timestamp and a random suffix.
//
// Uniqueness is probabilistic: there is no global counter and no check against stored records.
package idgen

import (
	"crypto/rand"
	"encoding/hex"
	"io"
	"strconv"
	"sync"
	"time"
)

// Well-known prefixes.
const (
	ProductPrefix = "prod_"
	SalePrefix    = "sale_"
)

const randomBytes = 4

// Generator produces identifiers of the form <prefix><unix micros>_<8 hex chars>.
// Timestamps never go backwards within one Generator.
type Generator struct {
	mu      sync.Mutex
	now     func() time.Time
	entropy io.Reader
	last    int64
}

// NewGenerator creates a Generator using the wall clock and crypto/rand.
func NewGenerator() *Generator {
	return &Generator{now: time.Now, entropy: rand.Reader}
}

var defaultGenerator = NewGenerator()

// New returns a fresh identifier from the package generator.
func New(prefix string) string {
	return defaultGenerator.New(prefix)
}

// New returns a fresh identifier with the given prefix.
func (g *Generator) New(prefix string) string {
	ts := g.tick()

	suffix := make([]byte, randomBytes)
	if _, err := io.ReadFull(g.entropy, suffix); err != nil {
		// crypto/rand does not fail on supported platforms; fall back to the clock.
		n := uint32(g.now().UnixNano())
		suffix = []byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}
	}
	return prefix + strconv.FormatInt(ts, 10) + "_" + hex.EncodeToString(suffix)
}

func (g *Generator) tick() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	ts := g.now().UnixMicro()
	if ts <= g.last {
		ts = g.last + 1
	}
	g.last = ts
	return ts
}
