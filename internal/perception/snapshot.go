package perception

import (
	"image"
	"strings"
)

// Detection is the list of centroids for one icon in one poll. Empty means
// not seen this poll, which is not proof of absence.
type Detection []image.Point

func (d Detection) Present() bool { return len(d) > 0 }

// IconVector is the canonical presence tuple in Roles() order.
type IconVector [roleCount]bool

func VectorOf(roles ...IconRole) IconVector {
	var v IconVector
	for _, r := range roles {
		v[r] = true
	}
	return v
}

func (v IconVector) Count() int {
	n := 0
	for _, p := range v {
		if p {
			n++
		}
	}
	return n
}

func (v IconVector) Has(r IconRole) bool { return v[r] }

func (v IconVector) String() string {
	var parts []string
	for r, p := range v {
		if p {
			parts = append(parts, IconRole(r).String())
		}
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// Snapshot is the evidence gathered in one poll. It is never mutated after Observe returns it.
type Snapshot struct {
	Icons    [roleCount]Detection
	Keywords KeywordCounts
	Text     string
	Tokens   []string
}

// NewSnapshot builds a snapshot from raw detections and text.
func NewSnapshot(icons map[IconRole]Detection, text string) Snapshot {
	s := Snapshot{Text: strings.ToLower(text)}
	for r, d := range icons {
		if r >= 0 && r < roleCount {
			s.Icons[r] = d
		}
	}
	s.Tokens = Tokenize(s.Text)
	s.Keywords = CountKeywords(s.Tokens)

	return s
}

func (s Snapshot) Vector() IconVector {
	var v IconVector
	for r, d := range s.Icons {
		v[r] = d.Present()
	}
	return v
}

func (s Snapshot) IconCount() int { return s.Vector().Count() }

func (s Snapshot) Has(r IconRole) bool { return s.Icons[r].Present() }

func (s Snapshot) Detection(r IconRole) Detection { return s.Icons[r] }

func (s Snapshot) Count(d Dictionary) int { return s.Keywords[d] }

func (s Snapshot) HasToken(tok string) bool { return ContainsToken(s.Tokens, tok) }
