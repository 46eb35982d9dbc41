package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync/atomic"
)

// Generator creates opaque identifiers for sessions and history rows.
type Generator interface {
	New() string
}

type RandomHex struct{}

func (RandomHex) New() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// Sequential hands out "ui1", "ui2", ... and keeps test output stable.
type Sequential struct {
	counter atomic.Int64
}

func (s *Sequential) New() string {
	return fmt.Sprintf("ui%d", s.counter.Add(1))
}
