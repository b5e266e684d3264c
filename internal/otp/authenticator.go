// Package otp issues and verifies the short-lived numeric codes gating
// two-factor login, 2FA setup, and password reset.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"
)

// DefaultMaxAttempts caps verification attempts per issued code.
const DefaultMaxAttempts = 5

// Keys names every identity token a code's owner is known by. The code is
// filed under all of them so verification works with whichever hint the
// verifying request happens to carry.
type Keys struct {
	ID      uint
	AuthUID string
	Email   string
}

func (k Keys) aliases() []string {
	var out []string
	if k.ID != 0 {
		out = append(out, fmt.Sprintf("%d", k.ID))
	}
	if k.AuthUID != "" {
		out = append(out, k.AuthUID)
	}
	if k.Email != "" {
		out = append(out, strings.ToLower(strings.TrimSpace(k.Email)))
	}
	return out
}

// Issued is a freshly generated code and its expiry.
type Issued struct {
	Code      string
	ExpiresAt time.Time
}

// entry is shared across every alias of one owner, so a code consumed under
// one alias is consumed under all of them.
type entry struct {
	code      string
	expiresAt time.Time
	used      bool
	attempts  int
}

// Authenticator stores pending codes in memory with expiry. Codes are
// single-purpose and single-use.
type Authenticator struct {
	mu          sync.Mutex
	codes       map[string]*entry
	maxAttempts int
	now         func() time.Time
}

// NewAuthenticator creates an Authenticator. A non-positive maxAttempts
// selects DefaultMaxAttempts.
func NewAuthenticator(maxAttempts int) *Authenticator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Authenticator{
		codes:       make(map[string]*entry),
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// Issue generates a 6-digit decimal code valid for ttl and files it under
// every known key of the owner. Re-issuing replaces any pending code for the
// same owner.
func (a *Authenticator) Issue(owner Keys, ttl time.Duration) (Issued, error) {
	aliases := owner.aliases()
	if len(aliases) == 0 {
		return Issued{}, fmt.Errorf("otp: owner has no keys")
	}
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return Issued{}, fmt.Errorf("otp: generate code: %w", err)
	}
	issued := Issued{
		Code:      fmt.Sprintf("%06d", n.Int64()),
		ExpiresAt: a.now().Add(ttl),
	}
	e := &entry{code: issued.Code, expiresAt: issued.ExpiresAt}
	a.mu.Lock()
	for _, alias := range aliases {
		a.codes[alias] = e
	}
	a.mu.Unlock()
	return issued, nil
}

// Verify checks the supplied code against the one filed under key and
// consumes it on success. It rejects on expiry before ever comparing values,
// on reuse, and past the attempt cap. The result is deliberately a bare
// boolean: a wrong code and an unknown owner are indistinguishable to the
// caller.
func (a *Authenticator) Verify(key, supplied string) bool {
	supplied = strings.TrimSpace(supplied)
	if supplied == "" {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	e := a.lookup(key)
	if e == nil {
		return false
	}
	if a.now().After(e.expiresAt) {
		return false
	}
	if e.used {
		return false
	}
	e.attempts++
	if e.attempts > a.maxAttempts {
		return false
	}
	// Exact string equality after trimming. Leading zeros are significant.
	if e.code != supplied {
		return false
	}
	e.used = true
	return true
}

func (a *Authenticator) lookup(key string) *entry {
	key = strings.TrimSpace(key)
	if e, ok := a.codes[key]; ok {
		return e
	}
	if e, ok := a.codes[strings.ToLower(key)]; ok {
		return e
	}
	return nil
}

// Sweep drops expired entries. A periodic caller keeps memory bounded; the
// verification path does not depend on it.
func (a *Authenticator) Sweep() {
	now := a.now()
	a.mu.Lock()
	defer a.mu.Unlock()
	for alias, e := range a.codes {
		if now.After(e.expiresAt) {
			delete(a.codes, alias)
		}
	}
}
