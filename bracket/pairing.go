/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package bracket

import (
	"fmt"
	"math/rand/v2"
)

// Bye is the reserved opponent given to the odd member of a group.
const Bye = "BYE"

// DefaultMaxRetries bounds the number of reshuffles attempted for a group
// before giving up and handing the round back for manual pairing.
const DefaultMaxRetries = 500

// Pairing is a single scheduled match. Equality for rematch purposes is
// unordered; see Equivalent.
type Pairing [2]string

// Equivalent reports whether p and o are the same matchup regardless of
// order.
func (p Pairing) Equivalent(o Pairing) bool {
	return (p[0] == o[0] && p[1] == o[1]) || (p[0] == o[1] && p[1] == o[0])
}

// HasBye reports whether one side of the pairing is the bye sentinel.
func (p Pairing) HasBye() bool {
	return p[0] == Bye || p[1] == Bye
}

func (p Pairing) Contains(name string) bool {
	return p[0] == name || p[1] == name
}

// Opponent returns the other side of the pairing, or "" if name is not in it.
func (p Pairing) Opponent(name string) string {
	switch name {
	case p[0]:
		return p[1]
	case p[1]:
		return p[0]
	}
	return ""
}

func (p Pairing) String() string {
	return fmt.Sprintf("%s VS %s", p[0], p[1])
}

// key returns a canonical orientation usable as a map key.
func (p Pairing) key() Pairing {
	if p[1] < p[0] {
		return Pairing{p[1], p[0]}
	}
	return p
}

// History is the append-only sequence of every main bracket pairing made in
// a tournament.
type History []Pairing

// Contains reports whether an equivalent pairing has already been played.
func (h History) Contains(p Pairing) bool {
	if p[0] == p[1] {
		return false
	}
	for _, old := range h {
		if old.Equivalent(p) {
			return true
		}
	}
	return false
}

// wouldRepeat reports whether p can turn into a rematch once the
// extension placeholders in it are resolved. A placeholder stands for either
// member of its extension.
func (h History) wouldRepeat(p Pairing) bool {
	for _, a := range candidates(p[0]) {
		for _, b := range candidates(p[1]) {
			if h.Contains(Pairing{a, b}) {
				return true
			}
		}
	}
	return false
}

func candidates(name string) []string {
	_, ext, ok := ParsePlaceholder(name)
	if !ok {
		return []string{name}
	}
	var out []string
	for _, n := range ext {
		if n != Bye {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return []string{name}
	}
	return out
}

func (h History) hadBye(name string) bool {
	return h.wouldRepeat(Pairing{name, Bye})
}

// ByePolicy controls what happens when a group has an odd member count.
type ByePolicy int

const (
	// ByeOdd pairs the leftover member with the Bye sentinel.
	ByeOdd ByePolicy = iota
	// ByeNever rejects odd groups.
	ByeNever
)

type PairOptions struct {
	// SkipHistory disables the rematch check. Extension matches are
	// replays by definition and are paired with it set.
	SkipHistory bool
	Byes        ByePolicy
}

// Pairer builds rematch-free pairings by repeated random shuffling.
// Exhaustive matching would be more robust but random retry is good enough
// at the tournament sizes this is used for.
type Pairer struct {
	MaxRetries int
	Rand       *rand.Rand
}

// NewPairer returns a Pairer. A maxRetries below 1 selects
// DefaultMaxRetries and a nil rng selects a randomly seeded source.
func NewPairer(maxRetries int, rng *rand.Rand) *Pairer {
	if maxRetries < 1 {
		maxRetries = DefaultMaxRetries
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &Pairer{MaxRetries: maxRetries, Rand: rng}
}

// Pair covers every member of group with exactly one pairing. Odd groups
// give the last member of the shuffled order a bye. A two member group is
// paired in the order given and, if those two have already met, fails with
// ErrNoPairingsPossible. Otherwise arrangements containing a rematch are
// reshuffled until MaxRetries is reached, at which point an *ExhaustedError
// is returned.
func (p *Pairer) Pair(group []string, history History,
	opts PairOptions) ([]Pairing, error) {

	if len(group) == 0 {
		return nil, fmt.Errorf("%w: empty group", ErrInvalidInput)
	}
	if len(group)%2 == 1 && opts.Byes == ByeNever {
		return nil, fmt.Errorf("%w: odd group %v and byes are disabled",
			ErrInvalidInput, group)
	}
	if HasDuplicates(group) {
		return nil, fmt.Errorf("%w: group %v lists %v more than once",
			ErrInvalidInput, group, FindDuplicates(group))
	}

	members := append([]string(nil), group...)
	if len(members) == 2 {
		pair := Pairing{members[0], members[1]}
		if !opts.SkipHistory && history.wouldRepeat(pair) {
			return nil, fmt.Errorf("%w: %v have already met",
				ErrNoPairingsPossible, pair)
		}
		return []Pairing{pair}, nil
	}

	// a repeated bye is tolerated only when nobody in the group is
	// still owed their first one
	byeRepeatOK := true
	if !opts.SkipHistory {
		for _, m := range members {
			if !history.hadBye(m) {
				byeRepeatOK = false
				break
			}
		}
	}

	tries := p.MaxRetries
	if tries < 1 {
		tries = DefaultMaxRetries
	}
	rng := p.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	for try := 0; try < tries; try++ {
		Shuffle(rng, members)
		if pairs, ok := partition(members, history, opts.SkipHistory,
			byeRepeatOK); ok {
			return pairs, nil
		}
	}

	return nil, &ExhaustedError{
		Group:   append([]string(nil), group...),
		History: append(History(nil), history...),
		Tries:   tries,
	}
}

// partition splits members into consecutive pairs, giving a trailing odd
// member the bye. ok is false if any pair is a forbidden rematch.
func partition(members []string, history History, skipHistory bool,
	byeRepeatOK bool) (pairs []Pairing, ok bool) {

	pairs = make([]Pairing, 0, (len(members)+1)/2)
	for i := 0; i < len(members); i += 2 {
		pair := Pairing{members[i], Bye}
		if i+1 < len(members) {
			pair[1] = members[i+1]
		}
		if !skipHistory && history.wouldRepeat(pair) {
			if !(pair.HasBye() && byeRepeatOK) {
				return nil, false
			}
		}
		pairs = append(pairs, pair)
	}

	return pairs, true
}
