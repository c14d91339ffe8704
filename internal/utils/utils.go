package utils

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/scythe504/drawguess-server/internal"
)

// =============================================================================
// WORD HELPERS
// =============================================================================

// GetMaskedWord hides every letter of word behind an underscore. Spaces stay
// visible so players can count the words: "ice cream" -> "_ _ _   _ _ _ _ _".
func GetMaskedWord(word string) string {
	if word == "" {
		return ""
	}
	masked := make([]string, 0, utf8.RuneCountInString(word))
	for _, r := range word {
		if unicode.IsSpace(r) {
			masked = append(masked, " ")
			continue
		}
		masked = append(masked, "_")
	}
	return strings.Join(masked, " ")
}

// NormalizeGuess folds a chat line into the form words are compared in.
func NormalizeGuess(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func IsCorrectGuess(guess, word string) bool {
	return word != "" && NormalizeGuess(guess) == NormalizeGuess(word)
}

// DifficultyFor grades a word by length.
func DifficultyFor(word string) internal.WordDifficulty {
	n := utf8.RuneCountInString(word)
	switch {
	case n <= 5:
		return internal.DifficultyEasy
	case n <= 8:
		return internal.DifficultyMedium
	default:
		return internal.DifficultyHard
	}
}

// GenerateWordChoices picks up to n distinct words, taking one from each
// difficulty in turn so the drawer gets an easy, a medium and a hard option
// when the pool allows it. The result is shuffled.
func GenerateWordChoices(pool []internal.Word, n int, rng *rand.Rand) []string {
	buckets := map[internal.WordDifficulty][]string{}
	for _, w := range pool {
		d := w.Difficulty
		if d == "" {
			d = DifficultyFor(w.Word)
		}
		buckets[d] = append(buckets[d], w.Word)
	}

	order := []internal.WordDifficulty{internal.DifficultyEasy, internal.DifficultyMedium, internal.DifficultyHard}
	seen := make(map[string]bool)
	choices := make([]string, 0, n)

	for len(choices) < n {
		progressed := false
		for _, d := range order {
			if len(choices) == n {
				break
			}
			words := buckets[d]
			if len(words) == 0 {
				continue
			}
			i := rng.IntN(len(words))
			w := words[i]
			// Remove the pick so an exhausted bucket stops being tried.
			words[i] = words[len(words)-1]
			buckets[d] = words[:len(words)-1]
			progressed = true

			key := strings.ToLower(w)
			if seen[key] {
				continue
			}
			seen[key] = true
			choices = append(choices, w)
		}
		if !progressed {
			break
		}
	}

	rng.Shuffle(len(choices), func(i, j int) { choices[i], choices[j] = choices[j], choices[i] })
	return choices
}

// =============================================================================
// WORD SOURCES
// =============================================================================

var ErrNoWords = errors.New("NO_WORDS: word list is empty")

// StaticWords serves choices from an in-memory list. It is shared by all
// rooms.
type StaticWords struct {
	mu    sync.Mutex
	words []internal.Word
	rng   *rand.Rand
}

func NewStaticWords(words []internal.Word, rng *rand.Rand) *StaticWords {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &StaticWords{words: words, rng: rng}
}

// DefaultWords is the built-in fallback list.
func DefaultWords() *StaticWords {
	words := make([]internal.Word, 0, len(defaultNouns))
	for _, w := range defaultNouns {
		words = append(words, internal.Word{Word: w, Difficulty: DifficultyFor(w)})
	}
	return NewStaticWords(words, nil)
}

func (s *StaticWords) RandomWords(_ context.Context, n int) ([]string, error) {
	if len(s.words) == 0 {
		return nil, ErrNoWords
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return GenerateWordChoices(s.words, n, s.rng), nil
}

func (s *StaticWords) Len() int { return len(s.words) }

var defaultNouns = []string{
	"apple", "banana", "bicycle", "bridge", "butterfly", "cactus", "camera", "candle",
	"castle", "cat", "chair", "cloud", "compass", "crown", "dinosaur", "dog",
	"dragon", "drum", "elephant", "envelope", "feather", "fish", "flower", "giraffe",
	"glasses", "guitar", "hammer", "helicopter", "house", "ice cream", "island", "kangaroo",
	"key", "kite", "ladder", "lamp", "lighthouse", "lion", "mountain", "mushroom",
	"octopus", "owl", "parachute", "penguin", "piano", "pizza", "pyramid", "rainbow",
	"robot", "rocket", "scissors", "snowman", "spider", "submarine", "sun", "telescope",
	"tree", "umbrella", "volcano", "waterfall", "whale", "windmill",
}
