// Package dice implements the roll engine: a uniform draw from [1, sides].
package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"
)

// MaxSides is the largest die the roll store can hold.
const MaxSides = math.MaxInt32

// ErrInvalidDieSize is returned for a die outside [1, MaxSides].
var ErrInvalidDieSize = errors.New("invalid die size")

//go:generate mockgen -package=mocks -destination=mocks/mock_roller.go dicebot/internal/game/dice Roller

// Roller produces die results.
type Roller interface {
	// Roll returns a value uniformly distributed over [1, sides].
	Roll(sides int) (int, error)
}

// Config holds configuration for the roll engine.
type Config struct {
	// Seed fixes the random sequence. Zero draws a seed from crypto/rand.
	Seed int64
}

// RandRoller is a Roller backed by math/rand. It is safe for concurrent use.
type RandRoller struct {
	mu     sync.Mutex
	random *rand.Rand
}

// New creates a new RandRoller with the given configuration.
func New(cfg *Config) *RandRoller {
	var seed int64
	if cfg != nil && cfg.Seed != 0 {
		seed = cfg.Seed
	} else {
		seed = NewSeed()
	}

	return &RandRoller{
		random: rand.New(rand.NewSource(seed)),
	}
}

// Roll returns a value uniformly distributed over [1, sides].
func (r *RandRoller) Roll(sides int) (int, error) {
	if err := ValidateSides(sides); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.random.Intn(sides) + 1, nil
}

// ValidateSides reports whether sides describes a rollable die.
func ValidateSides(sides int) error {
	if sides < 1 || sides > MaxSides {
		return fmt.Errorf("%w: got %d, want 1 to %d", ErrInvalidDieSize, sides, MaxSides)
	}
	return nil
}

// NewSeed returns a seed read from crypto/rand, falling back to the clock.
func NewSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}
