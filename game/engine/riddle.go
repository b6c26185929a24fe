package engine

import (
	"strings"

	"github.com/zyedidia/generic/mapset"
)

// Normalize canonicalizes a riddle answer for comparison: lowercase
// with surrounding whitespace trimmed. Interior whitespace and
// punctuation are preserved, matching stays exact beyond this.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// AnswerSet holds the normalized accepted answers for one level.
type AnswerSet struct {
	set mapset.Set[string]
}

// NewAnswerSet builds an AnswerSet from raw configured answers,
// normalizing each once up front.
func NewAnswerSet(answers []string) AnswerSet {
	s := mapset.New[string]()
	for _, a := range answers {
		s.Put(Normalize(a))
	}
	return AnswerSet{set: s}
}

// Matches reports whether the raw guess, after normalization, is one of
// the accepted answers.
func (a AnswerSet) Matches(raw string) bool {
	if a.set.Size() == 0 {
		return false
	}
	return a.set.Has(Normalize(raw))
}

// Size returns the number of distinct normalized answers.
func (a AnswerSet) Size() int {
	return a.set.Size()
}
