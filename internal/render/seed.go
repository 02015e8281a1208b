package render

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand"
	"strconv"
)

// DeriveSeed turns (seed, namespace) into a stable sub-seed: the first 8 hex
// digits of SHA-256("{seed}:{namespace}") as an integer. Every randomized
// effect draws from its own derived stream, so effects are reproducible
// independently of evaluation order, process or platform.
func DeriveSeed(seed int64, namespace string) int64 {
	digest := sha256.Sum256([]byte(fmt.Sprintf("%d:%s", seed, namespace)))
	prefix := hex.EncodeToString(digest[:])[:8]
	sub, err := strconv.ParseInt(prefix, 16, 64)
	if err != nil {
		// Unreachable: the input is always 8 hex digits.
		panic(err)
	}
	return sub
}

// RNGFor returns a pseudorandom stream seeded from (seed, namespace).
func RNGFor(seed int64, namespace string) *rand.Rand {
	return rand.New(rand.NewSource(DeriveSeed(seed, namespace)))
}
