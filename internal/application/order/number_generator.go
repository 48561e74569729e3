package order

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/marketplace/backend/internal/domain/order"
	"github.com/marketplace/backend/internal/domain/shared"
)

// maxNumberAttempts bounds regeneration after a collision
const maxNumberAttempts = 5

// SequenceSource hands out the daily order sequence. Values start at 1 for
// every day and grow monotonically.
type SequenceSource interface {
	Next(ctx context.Context, day time.Time) (int, error)
}

// NumberExistence checks whether an order number is taken
type NumberExistence interface {
	ExistsByNumber(ctx context.Context, number string) (bool, error)
}

// NumberGenerator builds order numbers from a prefix, the current day, the
// daily sequence and a random base-36 suffix
type NumberGenerator struct {
	sequence SequenceSource
	now      func() time.Time
	random   func(n int) (string, error)
}

// NewNumberGenerator creates a NumberGenerator
func NewNumberGenerator(sequence SequenceSource) *NumberGenerator {
	return &NumberGenerator{
		sequence: sequence,
		now:      time.Now,
		random:   randomBase36,
	}
}

// Generate returns a fresh order number not yet known to existing.
// A collision draws a new sequence value and suffix; after
// maxNumberAttempts collisions it gives up.
func (g *NumberGenerator) Generate(ctx context.Context, prefix string, existing NumberExistence) (string, error) {
	if !order.ValidPrefix(prefix) {
		return "", shared.NewDomainError("INVALID_ORDER_PREFIX", fmt.Sprintf("Order number prefix %q must be 3 upper-case letters", prefix))
	}

	day := g.now()
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		seq, err := g.sequence.Next(ctx, day)
		if err != nil {
			return "", fmt.Errorf("failed to get order sequence: %w", err)
		}
		if seq > order.MaxDailySequence {
			seq = (seq-1)%order.MaxDailySequence + 1
		}

		suffix, err := g.random(order.SuffixLength)
		if err != nil {
			return "", fmt.Errorf("failed to generate order suffix: %w", err)
		}

		number, err := order.FormatNumber(prefix, day, seq, suffix)
		if err != nil {
			return "", err
		}

		taken, err := existing.ExistsByNumber(ctx, number)
		if err != nil {
			return "", fmt.Errorf("failed to check order number: %w", err)
		}
		if !taken {
			return number, nil
		}
	}
	return "", shared.ErrSequenceExhausted.WithMessage("Could not generate a unique order number")
}

func randomBase36(n int) (string, error) {
	alphabet := order.Base36Alphabet()
	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out), nil
}
