package testfixtures

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// idNamespace seeds the name-based UUIDs handed out by IDGenerator.
var idNamespace = uuid.MustParse("6f1c2a8e-4b7d-4c52-9d0e-3a5f8b1c7e24")

// IDGenerator produces deterministic, well-formed UUID strings for tests.
// The n-th identifier of a prefix is always the same.
type IDGenerator struct {
	mu      sync.Mutex
	prefix  string
	counter uint64
	issued  []string
}

// NewIDGenerator constructs a generator whose identifiers are derived from the
// given prefix. When prefix is empty, "id" is used.
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &IDGenerator{prefix: prefix}
}

// Next returns the next identifier in the sequence.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	id := IDFor(g.prefix, g.counter)
	g.issued = append(g.issued, id)
	return id
}

// NextFunc exposes Next as a function suitable for dependency injection.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return uuid.NewString
	}
	return g.Next
}

// Issued returns a copy of every identifier handed out so far.
func (g *IDGenerator) Issued() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.issued...)
}

// SetPrefix updates the generator prefix.
func (g *IDGenerator) SetPrefix(prefix string) {
	g.mu.Lock()
	g.prefix = prefix
	g.mu.Unlock()
}

// SetCounter overrides the internal counter, enabling deterministic resets.
func (g *IDGenerator) SetCounter(counter uint64) {
	g.mu.Lock()
	g.counter = counter
	g.mu.Unlock()
}

// IDFor returns the identifier a generator with the given prefix yields on
// its n-th call.
func IDFor(prefix string, n uint64) string {
	return uuid.NewSHA1(idNamespace, []byte(fmt.Sprintf("%s-%d", prefix, n))).String()
}
