package game

import (
	"math"
	"strings"
)

// DefaultSimilarityK is the exponent constant for the answer threshold curve.
// Tuned so that "automate teller machine" still matches "automated teller machine".
const DefaultSimilarityK = 1.2

// Judge decides whether submitted responses satisfy a question's expected
// answers using fuzzy string similarity with a length-adaptive threshold.
type Judge struct {
	// K controls how lenient the threshold is for short answers.
	// Zero means DefaultSimilarityK.
	K float64
}

// Threshold returns the similarity an answer must exceed to count as correct:
// 0.95 * e^(-K/len). Short answers get a low bar (minor formatting noise
// dominates them); long answers approach 0.95 and demand near-exact matches.
func (j Judge) Threshold(answer string) float64 {
	length := len([]rune(answer))
	if length == 0 {
		panic("game: threshold of empty answer")
	}
	k := j.K
	if k <= 0 {
		k = DefaultSimilarityK
	}
	return 0.95 * math.Exp(-k/float64(length))
}

// Correct reports whether the responses satisfy the question. For multi-part
// questions the responses are consumed in order against the pool of
// not-yet-matched answers, so each expected answer matches at most once and
// submission order does not matter. The question's answer list is never
// mutated.
func (j Judge) Correct(answers []string, parts int, responses []string) bool {
	if len(answers) == 0 {
		panic("game: judging a question with no answers")
	}
	if parts < 1 {
		parts = 1
	}

	pool := make([]string, len(answers))
	copy(pool, answers)

	matched := 0
	for _, response := range responses {
		for i, answer := range pool {
			if Similarity(response, answer) > j.Threshold(answer) {
				pool = append(pool[:i], pool[i+1:]...)
				matched++
				break
			}
		}
		if matched == parts {
			return true
		}
	}
	return matched >= parts
}

// Similarity is the Sørensen–Dice coefficient over character bigrams of the
// lowercased, whitespace-collapsed inputs. Symmetric, deterministic, in [0,1].
func Similarity(a, b string) float64 {
	x := normalize(a)
	y := normalize(b)
	if x == y {
		if x == "" {
			return 0
		}
		return 1
	}

	ra := []rune(x)
	rb := []rune(y)
	if len(ra) < 2 || len(rb) < 2 {
		return 0
	}

	bigrams := make(map[string]int, len(ra)-1)
	for i := 0; i < len(ra)-1; i++ {
		bigrams[string(ra[i:i+2])]++
	}

	overlap := 0
	for i := 0; i < len(rb)-1; i++ {
		bg := string(rb[i : i+2])
		if bigrams[bg] > 0 {
			bigrams[bg]--
			overlap++
		}
	}

	return 2 * float64(overlap) / float64(len(ra)-1+len(rb)-1)
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
