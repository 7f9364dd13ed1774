// Package uuid hands out draft identifiers behind an interface so tests can pin them.
package uuid

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator produces unique string identifiers
type Generator interface {
	New() string
}

type randomGenerator struct{}

func (randomGenerator) New() string {
	return uuid.NewString()
}

// NewRandom returns a Generator backed by random (v4) UUIDs
func NewRandom() Generator {
	return randomGenerator{}
}

// Sequential yields prefix-1, prefix-2, ... and is safe for concurrent use.
type Sequential struct {
	prefix string
	next   atomic.Uint64
}

// NewSequential creates a deterministic generator for tests and debug tools
func NewSequential(prefix string) *Sequential {
	return &Sequential{prefix: prefix}
}

func (s *Sequential) New() string {
	return fmt.Sprintf("%s-%d", s.prefix, s.next.Add(1))
}
