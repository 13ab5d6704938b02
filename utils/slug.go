// utils/slug.go
package utils

import (
	"crypto/rand"
	"math/big"

	"github.com/gosimple/slug"
	"github.com/gosimple/unidecode"
)

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// RandomSuffix returns n random base36 characters for slug uniqueness.
func RandomSuffix(n int) string {
	out := make([]byte, n)
	max := big.NewInt(int64(len(suffixAlphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken
			out[i] = suffixAlphabet[i%len(suffixAlphabet)]
			continue
		}
		out[i] = suffixAlphabet[idx.Int64()]
	}
	return string(out)
}

// TeamSlug builds a shareable team code: slugified name plus a 6-char random
// suffix. Collisions are still possible and handled by the caller's retry on
// the store's unique index.
func TeamSlug(name string) string {
	return slug.Make(unidecode.Unidecode(name)) + "-" + RandomSuffix(6)
}

// EventSlug slugifies an event name without a suffix; event slugs are
// admin-chosen and expected to be stable.
func EventSlug(name string) string {
	return slug.Make(unidecode.Unidecode(name))
}
