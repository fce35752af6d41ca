/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package bracket

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// MinParticipants is the smallest roster a tournament can be created with.
const MinParticipants = 4

type Phase string

const (
	// PhaseActive rounds are paired and committed with ApplyRoundResult.
	PhaseActive Phase = "active"
	// PhaseFinal means the last round has been paired; only
	// CalcFinalScore may follow.
	PhaseFinal Phase = "final"
	// PhaseComplete is terminal.
	PhaseComplete Phase = "complete"
)

// State is everything needed to continue a tournament between rounds. It is
// passed into and returned from every operation; operations never modify
// the State they are given.
type State struct {
	Participants    []string     `json:"participants"`
	Standings       Standings    `json:"standings"`
	History         History      `json:"pairs"`
	RoundsRemaining int          `json:"roundsRemaining"`
	Quits           []string     `json:"quits"`
	QuitStandings   Standings    `json:"quitStandings"`
	Pending         []RoundGroup `json:"pending,omitempty"`
	Extensions      []Pairing    `json:"extensions,omitempty"`
	Tentative       []Outcome    `json:"tentative,omitempty"`
	InRound         bool         `json:"inRound"`
	Round           int          `json:"round"`
	Phase           Phase        `json:"phase"`
	MaxRetries      int          `json:"maxRetries"`
	Created         time.Time    `json:"created"`
}

// RoundGroup is the set of pairings made for one record group.
type RoundGroup struct {
	Record   Record    `json:"record"`
	Pairings []Pairing `json:"pairings"`
}

// Round is the outcome of GenerateRoundPairings.
type Round struct {
	Number int
	Groups []RoundGroup
	// Extensions are tie-break rematches to be played alongside the main
	// pairings. They are not part of the history.
	Extensions []Pairing
	Final      bool
}

// Pairings flattens the main bracket pairings of every group.
func (r *Round) Pairings() []Pairing {
	return flatten(r.Groups)
}

type Option func(*State)

// WithMaxRetries overrides the reshuffle bound used when pairing groups. A
// value below 1 keeps DefaultMaxRetries.
func WithMaxRetries(n int) Option {
	return func(st *State) {
		if n > 0 {
			st.MaxRetries = n
		}
	}
}

func WithCreated(t time.Time) Option {
	return func(st *State) {
		st.Created = t
	}
}

// CreateTournament validates the roster and round count and returns a fresh
// State with empty standings and history.
func CreateTournament(participants []string, rounds int,
	opts ...Option) (*State, error) {

	var names []string
	for _, p := range participants {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	if len(names) < MinParticipants {
		return nil, fmt.Errorf("%w: tournaments require at least %d participants; got %d",
			ErrInvalidInput, MinParticipants, len(names))
	}
	for _, n := range names {
		if err := validName(n); err != nil {
			return nil, err
		}
	}
	if HasDuplicates(names) {
		return nil, fmt.Errorf("%w: %v", ErrDuplicateParticipant,
			strings.Join(FindDuplicates(names), ", "))
	}
	if maxRounds := len(names) / 2; rounds < 1 || rounds > maxRounds {
		return nil, fmt.Errorf("%w: %d requested; %d participants allow 1 to %d",
			ErrInvalidRounds, rounds, len(names), maxRounds)
	}

	st := &State{
		Participants:    names,
		Standings:       Standings{},
		History:         History{},
		RoundsRemaining: rounds,
		Quits:           []string{},
		QuitStandings:   Standings{},
		Phase:           PhaseActive,
		MaxRetries:      DefaultMaxRetries,
		Created:         time.Now(),
	}
	for _, opt := range opts {
		opt(st)
	}

	return st, nil
}

func validName(n string) error {
	if strings.TrimSpace(n) == "" {
		return fmt.Errorf("%w: blank participant name", ErrInvalidInput)
	}
	if strings.EqualFold(n, Bye) {
		return fmt.Errorf("%w: %q is reserved for byes", ErrInvalidInput, n)
	}
	if strings.HasPrefix(n, winnerPrefix) || strings.HasPrefix(n, loserPrefix) {
		return fmt.Errorf("%w: %q looks like an extension placeholder",
			ErrInvalidInput, n)
	}
	return nil
}

// Clone returns a deep copy of st.
func (st *State) Clone() *State {
	next := *st
	next.Participants = slices.Clone(st.Participants)
	next.Standings = st.Standings.Clone()
	next.History = slices.Clone(st.History)
	next.Quits = slices.Clone(st.Quits)
	next.QuitStandings = st.QuitStandings.Clone()
	next.Pending = cloneGroups(st.Pending)
	next.Extensions = slices.Clone(st.Extensions)
	next.Tentative = slices.Clone(st.Tentative)

	return &next
}

func cloneGroups(groups []RoundGroup) []RoundGroup {
	if groups == nil {
		return nil
	}
	out := make([]RoundGroup, len(groups))
	for i, g := range groups {
		out[i] = RoundGroup{
			Record:   g.Record,
			Pairings: slices.Clone(g.Pairings),
		}
	}
	return out
}

func flatten(groups []RoundGroup) []Pairing {
	var out []Pairing
	for _, g := range groups {
		out = append(out, g.Pairings...)
	}
	return out
}

func mapGroups(groups []RoundGroup, repl map[string]string) []RoundGroup {
	out := make([]RoundGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, RoundGroup{
			Record:   g.Record,
			Pairings: replaceNames(g.Pairings, repl),
		})
	}
	return out
}

func (st *State) hasParticipant(name string) bool {
	return indexOf(st.Participants, name) >= 0
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

func (st *State) extensionIndex(o Outcome) int {
	for i, ext := range st.Extensions {
		if o.Resolves(ext) {
			return i
		}
	}
	return -1
}

func (st *State) tentativeFor(ext Pairing) (Outcome, bool) {
	for _, o := range st.Tentative {
		if o.Resolves(ext) {
			return o, true
		}
	}
	return Outcome{}, false
}

// ExtensionNames lists every participant in an unresolved extension.
func (st *State) ExtensionNames() []string {
	var names []string
	for _, ext := range st.Extensions {
		for _, n := range ext {
			if n != Bye {
				names = append(names, n)
			}
		}
	}
	return names
}

// GenerateRoundPairings groups the active roster by record and pairs each
// group against the history. Extension matches carried over from the
// previous round are scheduled alongside. On success the main pairings are
// appended to the history and a round is left in flight. If any group
// cannot be paired the given state is returned unchanged with the error.
func GenerateRoundPairings(st *State, pr *Pairer) (*State, *Round, error) {
	if st.Phase != PhaseActive || st.RoundsRemaining < 1 {
		return st, nil, fmt.Errorf("%w: no rounds remaining (phase %v)",
			ErrWrongPhase, st.Phase)
	}
	if st.InRound {
		return st, nil, fmt.Errorf("%w: round %d results have not been applied",
			ErrWrongPhase, st.Round)
	}
	if pr == nil {
		pr = NewPairer(st.MaxRetries, nil)
	}

	round := &Round{Number: st.Round + 1}
	for _, ext := range st.Extensions {
		pairs, err := pr.Pair(ext[:], nil,
			PairOptions{SkipHistory: true, Byes: ByeNever})
		if err != nil {
			return st, nil, fmt.Errorf("round %d extension %v: %w",
				round.Number, ext, err)
		}
		round.Extensions = append(round.Extensions, pairs...)
	}

	var made []Pairing
	for _, g := range GroupByRecord(st.Participants, st.Standings,
		st.Extensions) {

		pairs, err := pr.Pair(g.Members, st.History, PairOptions{})
		if err != nil {
			return st, nil, fmt.Errorf("round %d %v bracket: %w",
				round.Number, g.Record, err)
		}
		round.Groups = append(round.Groups,
			RoundGroup{Record: g.Record, Pairings: pairs})
		made = append(made, pairs...)
	}

	next := st.Clone()
	next.History = append(next.History, made...)
	next.Pending = cloneGroups(round.Groups)
	next.InRound = true
	next.Round = round.Number
	next.RoundsRemaining--
	if next.RoundsRemaining == 0 {
		next.Phase = PhaseFinal
		round.Final = true
	}

	return next, round, nil
}

// CurrentRound rebuilds the round in flight from st, with tentatively
// resolved placeholders substituted. It returns nil if no round is in
// flight.
func CurrentRound(st *State) *Round {
	if !st.InRound {
		return nil
	}
	groups := make([]RoundGroup, 0, len(st.Pending))
	for _, g := range st.Pending {
		groups = append(groups, RoundGroup{
			Record:   g.Record,
			Pairings: st.resolveTentative(g.Pairings),
		})
	}
	return &Round{
		Number:     st.Round,
		Groups:     groups,
		Extensions: append([]Pairing(nil), st.Extensions...),
		Final:      st.Phase == PhaseFinal,
	}
}

// resolveTentative substitutes the placeholders of every extension that
// has a tentative outcome.
func (st *State) resolveTentative(pairs []Pairing) []Pairing {
	out := slices.Clone(pairs)
	for _, ext := range st.Extensions {
		if o, ok := st.tentativeFor(ext); ok {
			out = Substitute(out, ext, o)
		}
	}
	return out
}

// ApplyRoundResult commits the results of the round in flight.
//
// Every extension played this round needs an outcome, either in outcomes or
// chosen earlier with ResolveExtension. Winners and losers may name
// participants or the placeholders they stood in for. Within a pairing a
// single listed winner implies the other side lost and vice versa. A bye
// pairing with nothing reported is a win for the participant. A pairing
// with no winner at all becomes an extension: neither record changes and
// the two meet again next round, with the left member provisionally
// advancing as the winner.
func ApplyRoundResult(st *State, winners, losers []string,
	outcomes []Outcome) (*State, error) {

	if st.Phase != PhaseActive {
		return st, fmt.Errorf("%w: phase is %v; use CalcFinalScore for the final round",
			ErrWrongPhase, st.Phase)
	}
	if !st.InRound {
		return st, fmt.Errorf("%w: no round in flight", ErrWrongPhase)
	}

	return commit(st, winners, losers, outcomes, true)
}

// CalcFinalScore commits the final round and returns the final ranking.
// Every final round pairing must have a winner.
func CalcFinalScore(st *State, winners, losers []string,
	outcomes []Outcome) (*State, []Standing, error) {

	if st.Phase != PhaseFinal || !st.InRound {
		return st, nil, fmt.Errorf("%w: phase is %v, not the final round",
			ErrWrongPhase, st.Phase)
	}
	next, err := commit(st, winners, losers, outcomes, false)
	if err != nil {
		return st, nil, err
	}
	next.Phase = PhaseComplete

	return next, FinalRanking(next), nil
}

func commit(st *State, winners, losers []string, outcomes []Outcome,
	allowExtensions bool) (*State, error) {

	decided := append([]Outcome(nil), st.Tentative...)
	for _, o := range outcomes {
		if st.extensionIndex(o) < 0 {
			return st, fmt.Errorf("%w: %v vs %v is not an extension in flight",
				ErrInvalidInput, o.Winner, o.Loser)
		}
		if o.Winner == Bye {
			return st, fmt.Errorf("%w: a bye cannot win an extension",
				ErrInvalidInput)
		}
		decided = append(removeOutcomeFor(decided, Pairing{o.Winner, o.Loser}), o)
	}

	repl := make(map[string]string)
	resolved := make([]Outcome, len(st.Extensions))
	var extW, extL []string
	for i, ext := range st.Extensions {
		var o Outcome
		found := false
		for _, d := range decided {
			if d.Resolves(ext) {
				o, found = d, true
			}
		}
		if !found {
			return st, fmt.Errorf("%w: the winner of extension %v must be decided",
				ErrInvalidInput, ext)
		}
		resolved[i] = o
		repl[WinnerOf(ext)] = o.Winner
		repl[LoserOf(ext)] = o.Loser
		extW = append(extW, o.Winner)
		extL = append(extL, o.Loser)
	}

	winners = replaceInList(winners, repl)
	losers = replaceInList(losers, repl)
	if HasDuplicates(winners) {
		return st, fmt.Errorf("%w: winners listed more than once: %v",
			ErrInvalidInput, FindDuplicates(winners))
	}
	if HasDuplicates(losers) {
		return st, fmt.Errorf("%w: losers listed more than once: %v",
			ErrInvalidInput, FindDuplicates(losers))
	}
	isWinner := make(map[string]bool, len(winners))
	for _, w := range winners {
		isWinner[w] = true
	}
	isLoser := make(map[string]bool, len(losers))
	for _, l := range losers {
		if isWinner[l] {
			return st, fmt.Errorf("%w: %v is listed as both winner and loser",
				ErrInvalidInput, l)
		}
		isLoser[l] = true
	}

	substitute := func(pairs []Pairing) []Pairing {
		out := slices.Clone(pairs)
		for i, ext := range st.Extensions {
			out = Substitute(out, ext, resolved[i])
		}
		return out
	}

	pairs := substitute(flatten(st.Pending))
	seen := make(map[string]bool)
	var roundW, roundL, extended []string
	var newExt []Pairing
	for _, p := range pairs {
		seen[p[0]], seen[p[1]] = true, true
		a, b := p[0], p[1]
		switch {
		case isWinner[a] && isWinner[b]:
			return st, fmt.Errorf("%w: two winners in matchup %v",
				ErrInvalidInput, p)
		case p.HasBye():
			// the paired participant always takes the bye's win
			if isWinner[Bye] {
				return st, fmt.Errorf("%w: a bye cannot win matchup %v",
					ErrInvalidInput, p)
			}
			roundW = append(roundW, p.Opponent(Bye))
		case isLoser[a] && isLoser[b]:
			return st, fmt.Errorf("%w: both sides of matchup %v are listed as losers",
				ErrInvalidInput, p)
		case isWinner[a] || isLoser[b]:
			roundW, roundL = append(roundW, a), append(roundL, b)
		case isWinner[b] || isLoser[a]:
			roundW, roundL = append(roundW, b), append(roundL, a)
		case !allowExtensions:
			return st, fmt.Errorf("%w: matchup %v needs a winner",
				ErrInvalidInput, p)
		default:
			extended = append(extended, a, b)
			newExt = append(newExt, p)
		}
	}
	for _, n := range append(append([]string(nil), winners...), losers...) {
		if !seen[n] {
			return st, fmt.Errorf("%w: %v is not paired this round",
				ErrInvalidInput, n)
		}
	}

	next := st.Clone()
	next.Standings.Apply(extW, extL, nil)
	next.Standings.Apply(roundW, roundL, extended)
	next.History = substitute(st.History)
	next.Pending = nil
	next.Extensions = newExt
	next.Tentative = nil
	next.InRound = false

	return next, nil
}

// RemoveParticipant withdraws name from all future rounds. The participant's
// record is frozen in QuitStandings. In a round in flight the participant is
// replaced by a bye, and an extension they were part of is decided in their
// opponent's favour.
func RemoveParticipant(st *State, name string) (*State, error) {
	if st.Phase == PhaseComplete {
		return st, fmt.Errorf("%w: tournament is complete", ErrWrongPhase)
	}
	idx := indexOf(st.Participants, name)
	if idx < 0 {
		return st, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	next := st.Clone()
	next.Participants = append(next.Participants[:idx:idx],
		next.Participants[idx+1:]...)
	next.Quits = append(next.Quits, name)
	next.QuitStandings[name] = st.Standings[name]
	delete(next.Standings, name)

	repl := map[string]string{name: Bye}
	next.Extensions = nil
	next.Tentative = nil
	for _, ext := range st.Extensions {
		if !ext.Contains(name) {
			next.Extensions = append(next.Extensions, ext)
			if o, ok := st.tentativeFor(ext); ok {
				next.Tentative = append(next.Tentative, o)
			}
			continue
		}
		opp := ext.Opponent(name)
		if opp == Bye {
			// both sides have withdrawn
			repl[WinnerOf(ext)] = Bye
			repl[LoserOf(ext)] = Bye
			continue
		}
		// keep the remaining participant on the provisional winning side
		moved := Pairing{opp, Bye}
		repl[WinnerOf(ext)] = WinnerOf(moved)
		repl[LoserOf(ext)] = LoserOf(moved)
		next.Extensions = append(next.Extensions, moved)
		next.Tentative = append(next.Tentative, Outcome{Winner: opp, Loser: Bye})
	}

	next.History = replaceNames(st.History, withoutKey(repl, name))
	next.Pending = dropByeVsBye(mapGroups(st.Pending, repl))

	return next, nil
}

func withoutKey(m map[string]string, key string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		if k != key {
			out[k] = v
		}
	}
	return out
}

func dropByeVsBye(groups []RoundGroup) []RoundGroup {
	var out []RoundGroup
	for _, g := range groups {
		var keep []Pairing
		for _, p := range g.Pairings {
			if p[0] == Bye && p[1] == Bye {
				continue
			}
			keep = append(keep, p)
		}
		if len(keep) > 0 {
			out = append(out, RoundGroup{Record: g.Record, Pairings: keep})
		}
	}
	return out
}

// SubstituteParticipant renames oldName to newName everywhere it appears,
// including history, the round in flight and extension placeholders.
func SubstituteParticipant(st *State, oldName, newName string) (*State, error) {
	newName = strings.TrimSpace(newName)
	if err := validName(newName); err != nil {
		return st, err
	}
	if !st.hasParticipant(oldName) {
		return st, fmt.Errorf("%w: %q", ErrNotFound, oldName)
	}
	if oldName == newName {
		return st, nil
	}
	if st.hasParticipant(newName) || indexOf(st.Quits, newName) >= 0 {
		return st, fmt.Errorf("%w: %q is already in the tournament",
			ErrDuplicateParticipant, newName)
	}

	repl := map[string]string{oldName: newName}
	next := st.Clone()
	for i, ext := range st.Extensions {
		if !ext.Contains(oldName) {
			continue
		}
		renamed := ext
		for j, n := range ext {
			if n == oldName {
				renamed[j] = newName
			}
		}
		repl[WinnerOf(ext)] = WinnerOf(renamed)
		repl[LoserOf(ext)] = LoserOf(renamed)
		next.Extensions[i] = renamed
	}

	next.Participants = replaceInList(st.Participants, repl)
	if r, ok := next.Standings[oldName]; ok {
		delete(next.Standings, oldName)
		next.Standings[newName] = r
	}
	next.History = replaceNames(st.History, repl)
	next.Pending = mapGroups(st.Pending, repl)
	for i, o := range next.Tentative {
		if o.Winner == oldName {
			next.Tentative[i].Winner = newName
		}
		if o.Loser == oldName {
			next.Tentative[i].Loser = newName
		}
	}
	if len(st.Pending) == 0 {
		next.Pending = nil
	}

	return next, nil
}

// FinalRanking sorts the active roster by win-loss differential.
// Participants mid-extension are flagged as pending.
func FinalRanking(st *State) []Standing {
	return Ranking(st.Participants, st.Standings, st.ExtensionNames())
}

// QuitRanking reports the frozen records of withdrawn participants in the
// order they withdrew.
func QuitRanking(st *State) []Standing {
	return Ranking(st.Quits, st.QuitStandings, nil)
}

// CompareMatchups returns the provided pairings that repeat a matchup
// already in history or that appear more than once in provided.
func CompareMatchups(history History, provided []Pairing) []Pairing {
	var out []Pairing
	add := func(p Pairing) {
		for _, o := range out {
			if o.Equivalent(p) {
				return
			}
		}
		out = append(out, p)
	}
	for _, p := range provided {
		if history.Contains(p) {
			add(p)
		}
	}
	for _, p := range FindDuplicatePairings(provided) {
		add(p)
	}

	return out
}
