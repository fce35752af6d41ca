/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package bracket

import (
	"fmt"
	"strings"
)

const (
	winnerPrefix = "(Winner of "
	loserPrefix  = "(Loser of "
	placeSuffix  = ")"
)

type PlaceholderKind int

const (
	NotPlaceholder PlaceholderKind = iota
	WinnerPlaceholder
	LoserPlaceholder
)

// WinnerOf returns the placeholder standing in for the eventual winner of
// the extension match ext.
func WinnerOf(ext Pairing) string {
	return winnerPrefix + ext.String() + placeSuffix
}

// LoserOf returns the placeholder standing in for the eventual loser of the
// extension match ext.
func LoserOf(ext Pairing) string {
	return loserPrefix + ext.String() + placeSuffix
}

// ParsePlaceholder decodes a placeholder produced by WinnerOf or LoserOf.
func ParsePlaceholder(s string) (PlaceholderKind, Pairing, bool) {
	kind := NotPlaceholder
	var rest string
	switch {
	case strings.HasPrefix(s, winnerPrefix):
		kind, rest = WinnerPlaceholder, strings.TrimPrefix(s, winnerPrefix)
	case strings.HasPrefix(s, loserPrefix):
		kind, rest = LoserPlaceholder, strings.TrimPrefix(s, loserPrefix)
	default:
		return NotPlaceholder, Pairing{}, false
	}
	if !strings.HasSuffix(rest, placeSuffix) {
		return NotPlaceholder, Pairing{}, false
	}
	rest = strings.TrimSuffix(rest, placeSuffix)
	a, b, ok := strings.Cut(rest, " VS ")
	if !ok || a == "" || b == "" {
		return NotPlaceholder, Pairing{}, false
	}

	return kind, Pairing{a, b}, true
}

func IsPlaceholder(s string) bool {
	_, _, ok := ParsePlaceholder(s)
	return ok
}

// Outcome is the decided result of an extension match.
type Outcome struct {
	Winner string `json:"winner"`
	Loser  string `json:"loser"`
}

// Resolves reports whether o is a result for the extension match ext.
func (o Outcome) Resolves(ext Pairing) bool {
	return ext.Equivalent(Pairing{o.Winner, o.Loser})
}

// Substitute returns a copy of pairs with the placeholders of ext replaced
// by the concrete names in o.
func Substitute(pairs []Pairing, ext Pairing, o Outcome) []Pairing {
	return replaceNames(pairs, map[string]string{
		WinnerOf(ext): o.Winner,
		LoserOf(ext):  o.Loser,
	})
}

func replaceNames(pairs []Pairing, repl map[string]string) []Pairing {
	out := make([]Pairing, len(pairs))
	for i, p := range pairs {
		for j, name := range p {
			if to, ok := repl[name]; ok {
				name = to
			}
			out[i][j] = name
		}
	}
	return out
}

func replaceInList(names []string, repl map[string]string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		if to, ok := repl[name]; ok {
			name = to
		}
		out[i] = name
	}
	return out
}

// ResolveExtension records a tentative outcome for one of the extension
// matches in flight. The outcome is visible through CurrentPairings and
// ResolvedHistory and is committed by ApplyRoundResult. Choosing a new
// outcome for the same extension replaces the previous one.
func ResolveExtension(st *State, o Outcome) (*State, error) {
	if st.Phase == PhaseComplete {
		return st, fmt.Errorf("%w: tournament is complete", ErrWrongPhase)
	}
	if o.Winner == Bye {
		return st, fmt.Errorf("%w: a bye cannot win an extension",
			ErrInvalidInput)
	}
	idx := st.extensionIndex(o)
	if idx < 0 {
		return st, fmt.Errorf("%w: %v vs %v is not an extension in flight",
			ErrInvalidInput, o.Winner, o.Loser)
	}

	next := st.Clone()
	next.Tentative = removeOutcomeFor(next.Tentative, st.Extensions[idx])
	next.Tentative = append(next.Tentative, o)

	return next, nil
}

// UnresolveExtension drops the tentative outcome chosen for ext, putting its
// placeholders back into the pending pairings view.
func UnresolveExtension(st *State, ext Pairing) (*State, error) {
	found := false
	for _, e := range st.Extensions {
		if e.Equivalent(ext) {
			found, ext = true, e
			break
		}
	}
	if !found {
		return st, fmt.Errorf("%w: %v is not an extension in flight",
			ErrInvalidInput, ext)
	}

	next := st.Clone()
	next.Tentative = removeOutcomeFor(next.Tentative, ext)

	return next, nil
}

// CurrentPairings returns the main pairings of the round in flight with any
// tentatively resolved extension placeholders replaced by names.
func CurrentPairings(st *State) []Pairing {
	return st.resolveTentative(flatten(st.Pending))
}

// ResolvedHistory is the pairing history with tentative outcomes applied.
func ResolvedHistory(st *State) History {
	return st.resolveTentative(st.History)
}

func removeOutcomeFor(outcomes []Outcome, ext Pairing) []Outcome {
	var out []Outcome
	for _, o := range outcomes {
		if !o.Resolves(ext) {
			out = append(out, o)
		}
	}
	return out
}
