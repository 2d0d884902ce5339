package id

import (
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator creates opaque document IDs for stored records.
type Generator interface {
	NewID() string
}

type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// Sequence yields deterministic ids (prefix-1, prefix-2, ...) for tests and seeds.
type Sequence struct {
	prefix string
	next   atomic.Int64
}

func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: strings.TrimSpace(prefix)}
}

func (s *Sequence) NewID() string {
	return s.prefix + "-" + strconv.FormatInt(s.next.Add(1), 10)
}
