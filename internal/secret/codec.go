// Package secret hashes and verifies user secrets with bcrypt.
//
// bcrypt at production cost takes hundreds of milliseconds of CPU. Every call
// is handed to a dispatched goroutine and the number of concurrent
// computations is capped, so a burst of signups queues here instead of
// competing with request handling for every available core.
package secret

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultCost = 12

	// bcrypt ignores input past 72 bytes and x/crypto refuses it outright.
	maxBcryptInput = 72
)

var (
	ErrDispatch        = errors.New("secret: hashing worker unavailable")
	ErrMalformedDigest = errors.New("secret: malformed digest")
)

type Codec struct {
	cost     int
	slots    *semaphore.Weighted
	duration metric.Float64Histogram
}

// NewCodec returns a Codec hashing at cost with at most workers concurrent
// bcrypt computations. workers <= 0 means GOMAXPROCS.
func NewCodec(cost, workers int) *Codec {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	duration, err := otel.Meter("github.com/incognito-chat/backend/internal/secret").Float64Histogram(
		"secret.bcrypt.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Time spent in bcrypt hash and compare."),
	)
	if err != nil {
		otel.Handle(err)
	}
	return &Codec{
		cost:     cost,
		slots:    semaphore.NewWeighted(int64(workers)),
		duration: duration,
	}
}

// Hash returns a salted bcrypt digest of secret. Two calls with the same
// secret return different digests.
func (c *Codec) Hash(ctx context.Context, secret string) (string, error) {
	var digest []byte
	err := c.dispatch(ctx, "hash", func() error {
		var err error
		digest, err = bcrypt.GenerateFromPassword(prepare(secret), c.cost)
		if err != nil {
			return fmt.Errorf("secret: hash: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether secret matches digest. A well-formed digest that does
// not match yields false with a nil error; ErrMalformedDigest is returned when
// digest cannot be parsed.
func (c *Codec) Verify(ctx context.Context, secret, digest string) (bool, error) {
	var match bool
	err := c.dispatch(ctx, "verify", func() error {
		err := bcrypt.CompareHashAndPassword([]byte(digest), prepare(secret))
		switch {
		case err == nil:
			match = true
			return nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return nil
		default:
			return fmt.Errorf("%w: %v", ErrMalformedDigest, err)
		}
	})
	if err != nil {
		return false, err
	}
	return match, nil
}

func (c *Codec) dispatch(ctx context.Context, op string, fn func() error) error {
	if err := c.slots.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("%w: %v", ErrDispatch, err)
	}

	done := make(chan error, 1)
	go func() {
		defer c.slots.Release(1)
		start := time.Now()
		err := fn()
		if c.duration != nil {
			c.duration.Record(context.Background(), time.Since(start).Seconds(),
				metric.WithAttributes(attribute.String("op", op)))
		}
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrDispatch, ctx.Err())
	}
}

func prepare(secret string) []byte {
	if len(secret) <= maxBcryptInput {
		return []byte(secret)
	}
	sum := sha256.Sum256([]byte(secret))
	return []byte(base64.RawStdEncoding.EncodeToString(sum[:]))
}
