package decode

// Full-scale divisors mapping signed PCM integers to [-1, 1).
const (
	MaxValue16 = 1 << 15
	MaxValue24 = 1 << 23
	MaxValue32 = 1 << 31
)
