package auth

import (
	"context"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// ErrPasswordTooLong is returned by Hash for passwords bcrypt cannot take.
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// CredentialHasher hashes and verifies passwords with bcrypt. Each hash
// carries its own random salt. The number of hashes computed at once is
// capped so a burst of logins cannot starve other requests of CPU.
type CredentialHasher struct {
	cost int
	sem  *semaphore.Weighted
}

// NewCredentialHasher returns a hasher using cost; at most maxConcurrent
// hashes run at the same time (GOMAXPROCS when maxConcurrent <= 0).
func NewCredentialHasher(cost int, maxConcurrent int) *CredentialHasher {
	if maxConcurrent <= 0 {
		maxConcurrent = runtime.GOMAXPROCS(0)
	}
	return &CredentialHasher{cost: cost, sem: semaphore.NewWeighted(int64(maxConcurrent))}
}

// Hash returns the bcrypt hash of password. It blocks while the hashing
// slots are busy and gives up when ctx is done.
func (h *CredentialHasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether password matches hashed. A malformed hash is a
// mismatch, not an error; the error is non-nil only when ctx ends first.
func (h *CredentialHasher) Verify(ctx context.Context, password, hashed string) (bool, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.sem.Release(1)

	// mismatch and malformed hashes (too short, bad prefix, bad cost) alike
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil, nil
}

// Cost returns the configured cost factor.
func (h *CredentialHasher) Cost() int { return h.cost }
