package mastermind

import "math/rand/v2"

// Generator produces the secret combination for a new game.
type Generator func(r *rand.Rand) Code

// Generate draws CombinationLength independent uniform digits.
func Generate(r *rand.Rand) Code {
	var c Code
	for i := range c {
		c[i] = randomDigit(r)
	}
	return c
}

// Fixed returns a Generator that always yields c.
func Fixed(c Code) Generator {
	return func(*rand.Rand) Code {
		return c
	}
}

func randomDigit(r *rand.Rand) int {
	return MinDigit + r.IntN(MaxDigit-MinDigit+1)
}

// allCodes enumerates every complete code in lexicographic order,
// 1111 first and 6666 last.
func allCodes() []Code {
	n := 1
	for range CombinationLength {
		n *= MaxDigit - MinDigit + 1
	}
	codes := make([]Code, 0, n)
	var c Code
	var fill func(pos int)
	fill = func(pos int) {
		if pos == CombinationLength {
			codes = append(codes, c)
			return
		}
		for d := MinDigit; d <= MaxDigit; d++ {
			c[pos] = d
			fill(pos + 1)
		}
	}
	fill(0)
	return codes
}
