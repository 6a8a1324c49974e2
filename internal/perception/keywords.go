package perception

import "strings"

type Dictionary int

const (
	DictPreMain Dictionary = iota
	DictNavigation
	DictEvent
	DictLoading
	DictBadEvent

	dictCount
)

var dictNames = [dictCount]string{"premain", "navigation", "event", "loading", "bad"}

func (d Dictionary) String() string {
	if d < 0 || d >= dictCount {
		return "unknown"
	}
	return dictNames[d]
}

const RespawnToken = "respawn"

var dictionaries = [dictCount]map[string]struct{}{
	DictPreMain:    set("press", "any", "button", "start", "continue", "tab)"),
	DictNavigation: set("tab)", "t)", "enter)", RespawnToken, "back"),
	DictEvent:      set("event", "event:"),
	DictLoading:    set("loading", "by...", "loading.", "loading..", "loading..."),
	DictBadEvent:   set("free", "range", "distinguished", "guests"),
}

func set(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// KeywordCounts holds the hits per dictionary. A token matching two
// dictionaries counts once in each, and repeated tokens count every time.
type KeywordCounts [dictCount]int

func (k KeywordCounts) Get(d Dictionary) int { return k[d] }

// Tokenize lowercases text and splits it on whitespace.
func Tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// CountKeywords matches every token exactly against each dictionary.
func CountKeywords(tokens []string) KeywordCounts {
	var counts KeywordCounts
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		for d := Dictionary(0); d < dictCount; d++ {
			if _, ok := dictionaries[d][tok]; ok {
				counts[d]++
			}
		}
	}

	return counts
}

// ContainsToken reports whether tok appears verbatim in tokens.
func ContainsToken(tokens []string, tok string) bool {
	for _, t := range tokens {
		if t == tok {
			return true
		}
	}
	return false
}
