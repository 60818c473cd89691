package game

import "math/rand"

// The drawable word list. Every entry is "<emoji> <Label>"; guesses are
// compared against the label only.
var wordsList = []string{
	"🐱 Cat", "🐶 Dog", "🌳 Tree", "🏠 House", "⭐ Star",
	"🌞 Sun", "🌙 Moon", "🚗 Car", "✈️ Plane", "🚂 Train",
	"🍎 Apple", "🍌 Banana", "🌸 Flower", "☁️ Cloud", "🌈 Rainbow",
	"🎈 Balloon", "⚽ Ball", "🎂 Cake", "🎁 Gift", "👑 Crown",
}

type wordSampler struct{}

func NewWordSampler() wordSampler {
	return wordSampler{}
}

// Generate samples count distinct words without replacement. The samples
// live only on the drawer's client; word-choice privacy rests entirely on
// never writing them to the shared document.
func (wordSampler) Generate(count int) []string {
	if count > len(wordsList) {
		count = len(wordsList)
	}
	shuffled := make([]string, len(wordsList))
	copy(shuffled, wordsList)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:count]
}
