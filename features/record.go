package features

import "strings"

// Question identifies one attribute asked of the extraction provider.
type Question string

const (
	Hue        Question = "hue"
	Brightness Question = "brightness"
	Chroma     Question = "chroma"
	Pattern    Question = "pattern"
	Style      Question = "style"
	Material   Question = "material"
	AgeRange   Question = "age_range"
	Gender     Question = "gender"
	Occasion   Question = "occasion"
)

// Questions lists every question in record field order.
var Questions = []Question{Hue, Brightness, Chroma, Pattern, Style, Material, AgeRange, Gender, Occasion}

// Vocabulary holds the recognized values of each attribute.
var Vocabulary = map[Question][]string{
	Hue:        {"red", "orange", "yellow", "green", "blue", "purple", "pink", "brown", "black", "white", "gray", "beige"},
	Brightness: {"light", "medium", "dark"},
	Chroma:     {"vivid", "muted", "neutral"},
	Pattern:    {"solid", "striped", "plaid", "checked", "floral", "polka dot", "graphic", "animal print"},
	Style:      {"casual", "formal", "sporty", "streetwear", "vintage", "minimalist", "bohemian"},
	Material:   {"cotton", "denim", "wool", "leather", "silk", "linen", "polyester", "knit"},
	AgeRange:   {"child", "teen", "young adult", "adult", "senior"},
	Gender:     {"male", "female", "unisex"},
	Occasion:   {"everyday", "work", "party", "sports", "date", "travel", "formal event"},
}

// Record describes a garment image. Each field holds a value from Vocabulary,
// the provider's raw answer when it was not recognized, or "" when no answer was given.
type Record struct {
	Hue        string `json:"hue"`
	Brightness string `json:"brightness"`
	Chroma     string `json:"chroma"`
	Pattern    string `json:"pattern"`
	Style      string `json:"style"`
	Material   string `json:"material"`
	AgeRange   string `json:"ageRange"`
	Gender     string `json:"gender"`
	Occasion   string `json:"occasion"`
}

// Answers maps each question to the provider's raw answer.
type Answers map[Question]string

var recognized = func() map[Question]map[string]struct{} {
	m := make(map[Question]map[string]struct{}, len(Vocabulary))
	for q, values := range Vocabulary {
		set := make(map[string]struct{}, len(values))
		for _, v := range values {
			set[v] = struct{}{}
		}
		m[q] = set
	}
	return m
}()

/*
Normalize turns raw provider answers into a Record.

An answer is matched against its question's vocabulary ignoring case and
surrounding or repeated whitespace. A match is stored in canonical form; an
unrecognized answer is kept exactly as the provider returned it.
*/
func Normalize(raw Answers) Record {
	return Record{
		Hue:        normalize(Hue, raw[Hue]),
		Brightness: normalize(Brightness, raw[Brightness]),
		Chroma:     normalize(Chroma, raw[Chroma]),
		Pattern:    normalize(Pattern, raw[Pattern]),
		Style:      normalize(Style, raw[Style]),
		Material:   normalize(Material, raw[Material]),
		AgeRange:   normalize(AgeRange, raw[AgeRange]),
		Gender:     normalize(Gender, raw[Gender]),
		Occasion:   normalize(Occasion, raw[Occasion]),
	}
}

func normalize(q Question, answer string) string {
	canon := strings.ToLower(strings.Join(strings.Fields(answer), " "))
	if _, ok := recognized[q][canon]; ok {
		return canon
	}
	return answer
}
