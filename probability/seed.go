package probability

// Stream tags the consumer of a base seed so independent simulations drawn from
// one configured seed never share a generator sequence.
type Stream uint32

const (
	StreamEngine Stream = iota + 1
	StreamParallel
	StreamHistory
)

// StreamSeed derives the seed for the index-th generator of a stream. Seeds are
// mixed with splitmix64, so neighbouring bases, streams and indexes land far apart.
func StreamSeed(base uint64, stream Stream, index uint64) uint64 {
	return splitmix64(splitmix64(base^uint64(stream)<<32) + index)
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
