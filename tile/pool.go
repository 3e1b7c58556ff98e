package tile

import "math/rand"

// Vowel weights: E(29%) A(22%) O(19%) I(19%) U(10%).
var (
	vowels       = []byte{'E', 'A', 'O', 'I', 'U'}
	vowelWeights = []int{29, 22, 19, 19, 10}
)

// Consonant frequency tiers. Fill draws are weighted 9/6/4/2 percent per letter.
var (
	highFreqConsonants      = []byte{'S', 'N', 'R', 'T'}
	mediumFreqConsonants    = []byte{'G', 'L', 'D'}
	lowMediumFreqConsonants = []byte{'Y', 'P', 'F', 'H', 'B', 'C', 'M', 'V', 'W'}
	lowFreqConsonants       = []byte{'Q', 'X', 'K', 'J', 'Z'}
)

const (
	rareLetterCap   = 2  // max Q and max Z per pool
	minUCount       = 2  // pool floor for U
	maxFillAttempts = 50 // bounded re-draw before falling back to the high tier
)

// Consonants returns all 21 consonants in tier order.
func Consonants() []byte {
	all := make([]byte, 0, 21)
	all = append(all, highFreqConsonants...)
	all = append(all, mediumFreqConsonants...)
	all = append(all, lowMediumFreqConsonants...)
	all = append(all, lowFreqConsonants...)
	return all
}

// GeneratePool builds a weighted-random multiset of poolSize tiles, all in
// StatePool, with ids assigned 1..n in insertion order (vowels, one of each
// consonant, weighted consonant fill, U top-up). The U floor may push the
// total slightly past poolSize; that is the intended floor rule. Callers
// shuffle separately if they need randomized order.
func GeneratePool(poolSize int, rng *rand.Rand) []*Tile {
	tray := make([]*Tile, 0, poolSize+minUCount)
	nextID := 1
	counts := make(map[byte]int, 26)

	push := func(letter byte) {
		counts[letter]++
		tray = append(tray, &Tile{ID: nextID, Letter: letter, State: StatePool})
		nextID++
	}

	// 40-45% vowels, chosen uniformly per pool.
	vowelPct := 40 + rng.Float64()*5
	vowelCount := poolSize * int(vowelPct*100) / 10000
	if vowelCount > poolSize {
		vowelCount = poolSize
	}
	consonantCount := poolSize - vowelCount

	for i := 0; i < vowelCount; i++ {
		push(weightedSelect(vowels, vowelWeights, rng))
	}

	// One of each consonant first, so every letter is represented.
	all := Consonants()
	for _, c := range all {
		push(c)
	}

	for i := 0; i < consonantCount-len(all); i++ {
		push(drawFillConsonant(counts, rng))
	}

	// Floor rule: a pool must always carry at least two U tiles.
	for counts['U'] < minUCount {
		push('U')
	}

	return tray
}

// drawFillConsonant picks from the tiered distribution, re-drawing while the
// pick would push Q or Z over the rare-letter cap.
func drawFillConsonant(counts map[byte]int, rng *rand.Rand) byte {
	for attempt := 0; attempt < maxFillAttempts; attempt++ {
		roll := rng.Float64() * 100
		var c byte
		switch {
		case roll < float64(2*len(lowFreqConsonants)):
			c = lowFreqConsonants[rng.Intn(len(lowFreqConsonants))]
		case roll < float64(2*len(lowFreqConsonants)+4*len(lowMediumFreqConsonants)):
			c = lowMediumFreqConsonants[rng.Intn(len(lowMediumFreqConsonants))]
		case roll < float64(2*len(lowFreqConsonants)+4*len(lowMediumFreqConsonants)+6*len(mediumFreqConsonants)):
			c = mediumFreqConsonants[rng.Intn(len(mediumFreqConsonants))]
		default:
			c = highFreqConsonants[rng.Intn(len(highFreqConsonants))]
		}
		if (c == 'Q' || c == 'Z') && counts[c] >= rareLetterCap {
			continue
		}
		return c
	}
	return highFreqConsonants[rng.Intn(len(highFreqConsonants))]
}

func weightedSelect(items []byte, weights []int, rng *rand.Rand) byte {
	total := 0
	for _, w := range weights {
		total += w
	}
	roll := rng.Float64() * float64(total)
	for i, item := range items {
		roll -= float64(weights[i])
		if roll <= 0 {
			return item
		}
	}
	return items[len(items)-1]
}
