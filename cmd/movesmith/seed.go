package main

import "math/rand"

// seedBytes deterministically expands an integer seed into a byte
// buffer for generator.Generate to consume. The generator's own
// byte-monotonicity guarantee (growing an input never changes a
// prefix's decisions) depends only on the buffer's prefix being
// stable for a given seed, which rand.New(rand.NewSource(seed)) gives
// us: identical seed, identical byte sequence, every time.
func seedBytes(seed int64, size int) []byte {
	r := rand.New(rand.NewSource(seed))
	buf := make([]byte, size)
	r.Read(buf)
	return buf
}
