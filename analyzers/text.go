package analyzers

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/snow-ghost/validator/core"
)

const maxScore = 10.0

// normalize clamps a raw heuristic score to [0, 10].
func normalize(score float64) float64 {
	return math.Max(0, math.Min(score/maxScore*10, 10))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// rollup returns the weighted sum of details, rounded to two decimals.
func rollup(details, weights map[string]float64) float64 {
	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Strings(names)

	total := 0.0
	for _, name := range names {
		total += details[name] * weights[name]
	}
	return round2(total)
}

var wordRe = regexp.MustCompile(`[\p{L}\p{N}][\p{L}\p{N}'-]*`)

// words splits text into lower-cased word tokens.
func words(text string) []string {
	raw := wordRe.FindAllString(text, -1)
	out := make([]string, len(raw))
	for i, w := range raw {
		out[i] = strings.ToLower(w)
	}
	return out
}

// corpus is a lower-cased text with its word tokens, built once per lookup set.
type corpus struct {
	text  string
	words []string
}

func newCorpus(parts ...string) corpus {
	text := strings.ToLower(strings.Join(parts, " "))
	return corpus{text: text, words: words(text)}
}

// mentions reports whether term occurs in the corpus. Phrases are matched as
// substrings. Single words match any token that starts with them so that
// stems like "adapt" cover "adaptable"; terms of three letters or fewer
// ("ai", "new", "api") must match a whole token.
func (c corpus) mentions(term string) bool {
	if strings.ContainsAny(term, " -:") {
		return strings.Contains(c.text, term)
	}
	for _, w := range c.words {
		if len(term) <= 3 && w == term {
			return true
		}
		if len(term) > 3 && strings.HasPrefix(w, term) {
			return true
		}
	}
	return false
}

// count returns how many of terms are mentioned.
func (c corpus) count(terms ...string) int {
	n := 0
	for _, t := range terms {
		if c.mentions(t) {
			n++
		}
	}
	return n
}

func (c corpus) any(terms ...string) bool {
	return c.count(terms...) > 0
}

// lexicalDiversity is the ratio of distinct to total words.
func lexicalDiversity(text string) float64 {
	ws := words(text)
	if len(ws) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(ws))
	for _, w := range ws {
		seen[w] = struct{}{}
	}
	return float64(len(seen)) / float64(len(ws))
}

// overlap is the Jaccard similarity of the word sets of a and b.
func overlap(a, b string) float64 {
	setA := make(map[string]struct{})
	for _, w := range words(a) {
		setA[w] = struct{}{}
	}
	setB := make(map[string]struct{})
	for _, w := range words(b) {
		setB[w] = struct{}{}
	}
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}
	inter := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			inter++
		}
	}
	return float64(inter) / float64(len(setA)+len(setB)-inter)
}

// hasSpecifics reports whether text carries a number or a capitalised word
// past the first position, standing in for numerals and proper nouns.
func hasSpecifics(text string) bool {
	for i, w := range wordRe.FindAllString(text, -1) {
		r := []rune(w)
		if unicode.IsDigit(r[0]) {
			return true
		}
		if i > 0 && unicode.IsUpper(r[0]) {
			return true
		}
	}
	return false
}

var conditionWords = map[string]struct{}{
	"if": {}, "when": {}, "unless": {}, "while": {}, "because": {}, "although": {},
	"for": {}, "in": {}, "with": {}, "without": {}, "under": {}, "during": {},
	"after": {}, "before": {}, "above": {}, "below": {}, "than": {}, "on": {},
}

// hasConditions reports whether text contains subordinating or prepositional words.
func hasConditions(text string) bool {
	for _, w := range words(text) {
		if _, ok := conditionWords[w]; ok {
			return true
		}
	}
	return false
}

var actionVerbs = map[string]struct{}{
	"add": {}, "analyze": {}, "apply": {}, "assign": {}, "build": {}, "check": {},
	"collect": {}, "configure": {}, "create": {}, "define": {}, "deploy": {},
	"document": {}, "establish": {}, "evaluate": {}, "identify": {}, "implement": {},
	"install": {}, "measure": {}, "monitor": {}, "organize": {}, "plan": {},
	"prepare": {}, "record": {}, "review": {}, "run": {}, "schedule": {}, "select": {},
	"set": {}, "share": {}, "start": {}, "test": {}, "track": {}, "train": {},
	"update": {}, "use": {}, "validate": {}, "verify": {}, "write": {},
}

// hasActionVerb reports whether text contains a known action verb in any
// simple inflection.
func hasActionVerb(text string) bool {
	for _, w := range words(text) {
		for _, suffix := range []string{"", "s", "es", "ed", "d", "ing"} {
			if base, ok := strings.CutSuffix(w, suffix); ok {
				if _, known := actionVerbs[base]; known {
					return true
				}
			}
		}
	}
	return false
}

func stepTexts(p core.Practice) []string {
	out := make([]string, 0, len(p.ImplementationSteps))
	for _, s := range p.ImplementationSteps {
		out = append(out, s.Description)
	}
	return out
}

func joined(items []string) string {
	return strings.Join(items, " ")
}

// explain builds an explanation from banded messages, one per metric.
type band struct {
	metric string
	high   string // >= 8
	medium string // >= 5, empty to fall through to low
	low    string
}

func explain(details map[string]float64, bands []band) string {
	parts := make([]string, 0, len(bands))
	for _, b := range bands {
		v := details[b.metric]
		switch {
		case v >= 8:
			parts = append(parts, b.high)
		case v >= 5 && b.medium != "":
			parts = append(parts, b.medium)
		default:
			parts = append(parts, b.low)
		}
	}
	return strings.Join(parts, ". ")
}
