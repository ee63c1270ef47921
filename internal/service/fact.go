package service

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

const (
	factMin = 1
	factMax = 100
)

// Fact is one random addition or subtraction.
type Fact struct {
	A      int
	B      int
	Op     string
	Result int
}

func (f Fact) String() string {
	return fmt.Sprintf("%d %s %d = %d", f.A, f.Op, f.B, f.Result)
}

// FactService produces random arithmetic facts.
type FactService interface {
	RandomFact() Fact
}

type factService struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewFactService builds a FactService over src; a nil src is seeded from the clock.
func NewFactService(src rand.Source) FactService {
	if src == nil {
		now := uint64(time.Now().UnixNano())
		src = rand.NewPCG(now, now>>1|1)
	}
	return &factService{rng: rand.New(src)}
}

func (s *factService) RandomFact() Fact {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.rng.IntN(factMax-factMin+1) + factMin
	b := s.rng.IntN(factMax-factMin+1) + factMin
	if s.rng.IntN(2) == 0 {
		return Fact{A: a, B: b, Op: "+", Result: a + b}
	}
	return Fact{A: a, B: b, Op: "-", Result: a - b}
}
