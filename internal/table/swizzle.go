package table

// Unswizzle reverses the byte order of a stored word. Applying it twice
// returns the original value, so it also converts native words back to
// stored order.
func Unswizzle(word uint32) uint32 {
	return (word>>24)&0x000000FF |
		(word>>8)&0x0000FF00 |
		(word<<8)&0x00FF0000 |
		(word<<24)&0xFF000000
}

// UnswizzleAll returns a new slice with every word unswizzled.
func UnswizzleAll(words []uint32) []uint32 {
	out := make([]uint32, len(words))
	for i, w := range words {
		out[i] = Unswizzle(w)
	}
	return out
}
