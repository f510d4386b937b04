package triage

import "strings"

// SymptomMatcher decides whether a reported symptom counts as a hit for a
// catalog symptom token. Isolated behind an interface so the matching
// heuristic can be swapped (token-set, edit-distance) without touching the
// engine.
type SymptomMatcher interface {
	Matches(reported, token string) bool
}

// SubstringMatcher is the default heuristic: bidirectional substring
// containment. Deliberately loose — short generic tokens like "pain" can
// match unrelated multi-word symptoms — but kept for behavioral
// compatibility with the deployed triage tables.
type SubstringMatcher struct{}

func (SubstringMatcher) Matches(reported, token string) bool {
	return strings.Contains(reported, token) || strings.Contains(token, reported)
}
