// Package id generates identifiers for ledger records and users.
package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// referralAlphabet skips characters that are easy to misread (0/O, 1/I).
const referralAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

var (
	mu   sync.Mutex
	mono io.Reader
)

func init() {
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// New returns a ULID string. IDs generated in the same millisecond stay
// lexicographically increasing, so transactions sort by creation order.
func New() string {
	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), mono)
	if err != nil {
		panic(err)
	}
	return id.String()
}

// NewUserID returns a random UUID for a user profile.
func NewUserID() string {
	return uuid.NewString()
}

// NewReferralCode returns an 8 character referral code.
func NewReferralCode() string {
	var b [8]byte
	if _, err := cryptoRand.Read(b[:]); err != nil {
		panic(err)
	}
	out := make([]byte, len(b))
	for i, v := range b {
		out[i] = referralAlphabet[int(v)%len(referralAlphabet)]
	}
	return string(out)
}
