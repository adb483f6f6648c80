package random

import (
	"crypto/rand"
	"encoding/binary"
	"sync"

	"github.com/jaevor/go-nanoid"
)

// Random is the source behind room codes
type Random interface {
	// Intn returns a value in [0, n), or 0 when n <= 0
	Intn(n int) int

	// String returns length symbols drawn uniformly from alphabet
	String(length int, alphabet string) string
}

// Secure draws from crypto/rand
type Secure struct {
	// generators caches nanoid generators by genKey
	generators sync.Map
}

type genKey struct {
	alphabet string
	length   int
}

// New returns a Secure source
func New() *Secure {
	return &Secure{}
}

func (*Secure) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(uniform(uint64(n)))
}

// String uses a nanoid generator built once per alphabet and length.
// Alphabets nanoid refuses fall back to drawing each symbol with Intn.
func (r *Secure) String(length int, alphabet string) string {
	if length <= 0 || alphabet == "" {
		return ""
	}
	if gen := r.generator(length, alphabet); gen != nil {
		return gen()
	}
	out := make([]byte, length)
	for i := range out {
		out[i] = alphabet[r.Intn(len(alphabet))]
	}
	return string(out)
}

// generator returns the cached generator for the pair, or nil when nanoid
// rejects the alphabet. Rejections are cached too.
func (r *Secure) generator(length int, alphabet string) func() string {
	key := genKey{alphabet, length}
	if g, ok := r.generators.Load(key); ok {
		return g.(func() string)
	}
	gen, err := nanoid.CustomASCII(alphabet, length)
	if err != nil {
		gen = nil
	}
	g, _ := r.generators.LoadOrStore(key, gen)
	return g.(func() string)
}

func uniform(n uint64) uint64 {
	limit := ^uint64(0) - (^uint64(0)%n+1)%n
	var buf [8]byte
	for {
		fill(buf[:])
		if v := binary.BigEndian.Uint64(buf[:]); v <= limit {
			return v % n
		}
	}
}

// crypto/rand only fails when the OS entropy source is unusable
func fill(b []byte) {
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
}
