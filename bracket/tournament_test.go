/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package bracket

import (
	"encoding/json"
	"errors"
	"math/rand/v2"
	"reflect"
	"strings"
	"testing"
	"time"
)

var testCreated = time.Date(2026, time.March, 14, 19, 0, 0, 0, time.UTC)

func newTestTournament(t *testing.T, names []string, rounds int) *State {
	t.Helper()
	st, err := CreateTournament(names, rounds, WithCreated(testCreated))
	if err != nil {
		t.Fatalf("CreateTournament(%v, %d): %v", names, rounds, err)
	}
	return st
}

func TestCreateTournament(t *testing.T) {
	cases := []struct {
		name    string
		in      []string
		rounds  int
		wantErr error
	}{
		{"ok", []string{"A", "B", "C", "D"}, 2, nil},
		{"blank entries dropped", []string{"A", " ", "B", "C", "", "D"}, 1, nil},
		{"too few", []string{"A", "B", "C"}, 1, ErrInvalidInput},
		{"too few after trim", []string{"A", "B", "C", "  "}, 1, ErrInvalidInput},
		{"duplicate", []string{"A", "B", "C", "A"}, 1, ErrDuplicateParticipant},
		{"zero rounds", []string{"A", "B", "C", "D"}, 0, ErrInvalidRounds},
		{"too many rounds", []string{"A", "B", "C", "D", "E"}, 3, ErrInvalidRounds},
		{"reserved name", []string{"A", "B", "C", "bye"}, 1, ErrInvalidInput},
		{"placeholder name", []string{"A", "B", "C", "(Winner of X VS Y)"}, 1,
			ErrInvalidInput},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			st, err := CreateTournament(c.in, c.rounds)
			if c.wantErr != nil {
				if !errors.Is(err, c.wantErr) {
					t.Errorf("error = %v; want %v", err, c.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(st.Participants) != 4 {
				t.Errorf("participants = %v; want 4 names", st.Participants)
			}
			if st.RoundsRemaining != c.rounds || st.Phase != PhaseActive {
				t.Errorf("rounds=%d phase=%v; want %d active",
					st.RoundsRemaining, st.Phase, c.rounds)
			}
			if len(st.Standings) != 0 || len(st.History) != 0 {
				t.Errorf("new tournament is not empty: %+v", st)
			}
		})
	}
}

// winnersOf returns the left member of every pairing that is not a bye.
func winnersOf(pairs []Pairing) []string {
	var out []string
	for _, p := range pairs {
		if !p.HasBye() {
			out = append(out, p[0])
		}
	}
	return out
}

func TestTwoRoundTournament(t *testing.T) {
	roster := []string{"A", "B", "C", "D"}
	st := newTestTournament(t, roster, 2)
	pr := NewPairer(0, newTestRand())

	st, r1, err := GenerateRoundPairings(st, pr)
	if err != nil {
		t.Fatalf("round 1: %v", err)
	}
	if r1.Number != 1 || r1.Final || len(r1.Groups) != 1 {
		t.Fatalf("round 1 = %+v", r1)
	}
	assertCoverage(t, roster, r1.Pairings())
	if len(st.History) != 2 || st.RoundsRemaining != 1 || !st.InRound {
		t.Errorf("after pairing round 1: %+v", st)
	}

	if _, _, err := GenerateRoundPairings(st, pr); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("pairing twice error = %v; want ErrWrongPhase", err)
	}

	winners := winnersOf(r1.Pairings())
	st, err = ApplyRoundResult(st, winners, nil, nil)
	if err != nil {
		t.Fatalf("round 1 results: %v", err)
	}
	won := map[string]bool{winners[0]: true, winners[1]: true}
	for _, n := range roster {
		want := Record{Losses: 1}
		if won[n] {
			want = Record{Wins: 1}
		}
		if got := st.Standings[n]; got != want {
			t.Errorf("%v = %v; want %v", n, got, want)
		}
	}

	// winners meet winners and losers meet losers, in roster order
	var wantW, wantL Pairing
	var wi, li int
	for _, n := range roster {
		if won[n] {
			wantW[wi] = n
			wi++
		} else {
			wantL[li] = n
			li++
		}
	}
	st, r2, err := GenerateRoundPairings(st, pr)
	if err != nil {
		t.Fatalf("round 2: %v", err)
	}
	if !r2.Final || st.Phase != PhaseFinal {
		t.Errorf("round 2 final=%v phase=%v; want final", r2.Final, st.Phase)
	}
	got := r2.Pairings()
	if len(got) != 2 || !(got[0] == wantW || got[1] == wantW) ||
		!(got[0] == wantL || got[1] == wantL) {
		t.Errorf("round 2 = %v; want %v and %v", got, wantW, wantL)
	}

	if _, err := ApplyRoundResult(st, winnersOf(got), nil, nil); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("ApplyRoundResult in final round error = %v; want ErrWrongPhase", err)
	}

	st, ranking, err := CalcFinalScore(st, winnersOf(got), nil, nil)
	if err != nil {
		t.Fatalf("CalcFinalScore: %v", err)
	}
	if st.Phase != PhaseComplete {
		t.Errorf("phase = %v; want complete", st.Phase)
	}
	if len(ranking) != 4 {
		t.Fatalf("ranking = %v", ranking)
	}
	if ranking[0].Name != wantW[0] || ranking[0].Wins != 2 {
		t.Errorf("first = %+v; want %v at [2,0]", ranking[0], wantW[0])
	}
	if ranking[3].Name != wantL[1] || ranking[3].Losses != 2 {
		t.Errorf("last = %+v; want %v at [0,2]", ranking[3], wantL[1])
	}
	wins, losses := st.Standings.Totals()
	if wins != 4 || losses != 4 {
		t.Errorf("Totals() = %d, %d; want 4, 4", wins, losses)
	}
	if dupes := FindDuplicatePairings(st.History); len(dupes) != 0 {
		t.Errorf("rematches in history: %v", dupes)
	}
}

func TestByeIsAFreeWin(t *testing.T) {
	roster := []string{"A", "B", "C", "D", "E"}
	st := newTestTournament(t, roster, 1)
	st, r, err := GenerateRoundPairings(st, NewPairer(0, newTestRand()))
	if err != nil {
		t.Fatalf("GenerateRoundPairings: %v", err)
	}
	assertCoverage(t, roster, r.Pairings())

	st, _, err = CalcFinalScore(st, winnersOf(r.Pairings()), nil, nil)
	if err != nil {
		t.Fatalf("CalcFinalScore: %v", err)
	}
	wins, losses := st.Standings.Totals()
	if wins != 3 || losses != 2 {
		t.Errorf("Totals() = %d, %d; want 3, 2", wins, losses)
	}
	if _, ok := st.Standings[Bye]; ok {
		t.Errorf("bye has a record")
	}
}

func TestByeHolderListedAsLoser(t *testing.T) {
	roster := []string{"A", "B", "C", "D", "E"}
	st := newTestTournament(t, roster, 2)
	st, r, err := GenerateRoundPairings(st, NewPairer(0, newTestRand()))
	if err != nil {
		t.Fatalf("GenerateRoundPairings: %v", err)
	}
	var holder string
	for _, p := range r.Pairings() {
		if p.HasBye() {
			holder = p.Opponent(Bye)
		}
	}
	if holder == "" {
		t.Fatalf("no bye in %v", r.Pairings())
	}

	st, err = ApplyRoundResult(st, winnersOf(r.Pairings()),
		[]string{holder}, nil)
	if err != nil {
		t.Fatalf("ApplyRoundResult: %v", err)
	}
	if got := st.Standings[holder]; got != (Record{Wins: 1}) {
		t.Errorf("%v = %v; want [1,0]", holder, got)
	}
	wins, losses := st.Standings.Totals()
	if wins != 3 || losses != 2 {
		t.Errorf("Totals() = %d, %d; want 3, 2", wins, losses)
	}
}

func TestResultValidation(t *testing.T) {
	st := newTestTournament(t, []string{"A", "B", "C", "D"}, 2)
	if _, err := ApplyRoundResult(st, nil, nil, nil); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("results with no round error = %v; want ErrWrongPhase", err)
	}
	st, r, err := GenerateRoundPairings(st, NewPairer(0, newTestRand()))
	if err != nil {
		t.Fatalf("GenerateRoundPairings: %v", err)
	}
	p := r.Pairings()

	cases := []struct {
		name    string
		winners []string
		losers  []string
	}{
		{"both sides win", []string{p[0][0], p[0][1]}, nil},
		{"winner and loser", []string{p[0][0]}, []string{p[0][0]}},
		{"listed twice", []string{p[0][0], p[0][0]}, nil},
		{"unknown name", []string{"Zed"}, nil},
		{"both sides lose", nil, []string{p[0][0], p[0][1]}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := ApplyRoundResult(st, c.winners, c.losers, nil)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("error = %v; want ErrInvalidInput", err)
			}
			if got != st {
				t.Errorf("state changed on error")
			}
		})
	}
}

func TestExtensionFlow(t *testing.T) {
	st := newTestTournament(t, []string{"A", "B", "C", "D"}, 2)
	pr := NewPairer(0, newTestRand())
	st, r1, err := GenerateRoundPairings(st, pr)
	if err != nil {
		t.Fatalf("round 1: %v", err)
	}
	p1, ext := r1.Pairings()[0], r1.Pairings()[1]

	// only the first matchup has a result
	st, err = ApplyRoundResult(st, []string{p1[0]}, nil, nil)
	if err != nil {
		t.Fatalf("round 1 results: %v", err)
	}
	if !reflect.DeepEqual(st.Extensions, []Pairing{ext}) {
		t.Fatalf("extensions = %v; want [%v]", st.Extensions, ext)
	}
	for _, n := range ext {
		if got, ok := st.Standings[n]; !ok || got != (Record{}) {
			t.Errorf("%v = %v, %v; want [0,0]", n, got, ok)
		}
	}

	st, r2, err := GenerateRoundPairings(st, pr)
	if err != nil {
		t.Fatalf("round 2: %v", err)
	}
	if !reflect.DeepEqual(r2.Extensions, []Pairing{ext}) {
		t.Errorf("round 2 extensions = %v; want [%v]", r2.Extensions, ext)
	}
	findWith := func(pairs []Pairing, name string) Pairing {
		for _, p := range pairs {
			if p.Contains(name) {
				return p
			}
		}
		t.Fatalf("%v not paired in %v", name, pairs)
		return Pairing{}
	}
	if p := findWith(r2.Pairings(), p1[0]); p.Opponent(p1[0]) != WinnerOf(ext) {
		t.Errorf("%v paired with %v; want %v", p1[0], p.Opponent(p1[0]),
			WinnerOf(ext))
	}
	if p := findWith(r2.Pairings(), p1[1]); p.Opponent(p1[1]) != LoserOf(ext) {
		t.Errorf("%v paired with %v; want %v", p1[1], p.Opponent(p1[1]),
			LoserOf(ext))
	}

	// the final round cannot be scored until the extension is decided
	finalWinners := []string{WinnerOf(ext), p1[1]}
	if _, _, err := CalcFinalScore(st, finalWinners, nil, nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("unresolved extension error = %v; want ErrInvalidInput", err)
	}

	upset := Outcome{Winner: ext[1], Loser: ext[0]}
	st, err = ResolveExtension(st, upset)
	if err != nil {
		t.Fatalf("ResolveExtension: %v", err)
	}
	if p := findWith(CurrentPairings(st), p1[0]); p.Opponent(p1[0]) != ext[1] {
		t.Errorf("resolved opponent = %v; want %v", p.Opponent(p1[0]), ext[1])
	}
	if p := findWith(ResolvedHistory(st), p1[1]); p.Opponent(p1[1]) != p1[0] &&
		p.Opponent(p1[1]) != ext[0] {
		t.Errorf("resolved history pairs %v with %v", p1[1], p.Opponent(p1[1]))
	}

	st, err = UnresolveExtension(st, Pairing{ext[1], ext[0]})
	if err != nil {
		t.Fatalf("UnresolveExtension: %v", err)
	}
	if p := findWith(CurrentPairings(st), p1[0]); p.Opponent(p1[0]) != WinnerOf(ext) {
		t.Errorf("unresolved opponent = %v; want %v", p.Opponent(p1[0]),
			WinnerOf(ext))
	}

	st, ranking, err := CalcFinalScore(st, finalWinners, nil, []Outcome{upset})
	if err != nil {
		t.Fatalf("CalcFinalScore: %v", err)
	}
	want := map[string]Record{
		ext[1]: {Wins: 2},
		p1[0]:  {Wins: 1, Losses: 1},
		p1[1]:  {Wins: 1, Losses: 1},
		ext[0]: {Losses: 2},
	}
	for n, rec := range want {
		if got := st.Standings[n]; got != rec {
			t.Errorf("%v = %v; want %v", n, got, rec)
		}
	}
	if ranking[0].Name != ext[1] || ranking[3].Name != ext[0] {
		t.Errorf("ranking = %v", ranking)
	}
	for _, p := range st.History {
		if IsPlaceholder(p[0]) || IsPlaceholder(p[1]) {
			t.Errorf("placeholder left in history: %v", p)
		}
	}
	if len(st.Extensions) != 0 || len(st.Tentative) != 0 {
		t.Errorf("extensions left after final: %v %v", st.Extensions,
			st.Tentative)
	}
}

func TestExtensionPlaceholderCannotRematch(t *testing.T) {
	// round 1 A-C and B-D, round 2 C beat D and A-B went to an extension
	st := &State{
		Participants: []string{"A", "B", "C", "D"},
		Standings: Standings{
			"A": {Wins: 1}, "B": {Wins: 1},
			"C": {Wins: 1, Losses: 1}, "D": {Losses: 2},
		},
		History:         History{{"A", "C"}, {"B", "D"}, {"A", "B"}, {"C", "D"}},
		RoundsRemaining: 1,
		Quits:           []string{},
		QuitStandings:   Standings{},
		Extensions:      []Pairing{{"A", "B"}},
		Round:           2,
		Phase:           PhaseActive,
		MaxRetries:      DefaultMaxRetries,
		Created:         testCreated,
	}

	// the loser of A VS B would meet C, whom both A and B have played
	got, _, err := GenerateRoundPairings(st, NewPairer(0, newTestRand()))
	if !errors.Is(err, ErrNoPairingsPossible) {
		t.Errorf("GenerateRoundPairings error = %v; want ErrNoPairingsPossible",
			err)
	}
	if got != st {
		t.Errorf("state changed on error")
	}
}

func TestNoRematchThroughExtensions(t *testing.T) {
	roster := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	for seed := uint64(1); seed <= 25; seed++ {
		st := newTestTournament(t, roster, 4)
		pr := NewPairer(0, rand.New(rand.NewPCG(seed, seed)))
		for st.Phase != PhaseComplete {
			next, r, err := GenerateRoundPairings(st, pr)
			if errors.Is(err, ErrNoPairingsPossible) ||
				errors.Is(err, ErrPairingExhausted) {
				break
			}
			if err != nil {
				t.Fatalf("seed %d round %d: %v", seed, st.Round+1, err)
			}
			st = next

			// every extension is an upset and the first matchup of a
			// non-final round is left undecided
			var outcomes []Outcome
			for _, ext := range r.Extensions {
				outcomes = append(outcomes, Outcome{Winner: ext[1], Loser: ext[0]})
			}
			var winners []string
			for i, p := range r.Pairings() {
				if p.HasBye() || (i == 0 && !r.Final) {
					continue
				}
				winners = append(winners, p[0])
			}
			if r.Final {
				st, _, err = CalcFinalScore(st, winners, nil, outcomes)
			} else {
				st, err = ApplyRoundResult(st, winners, nil, outcomes)
			}
			if err != nil {
				t.Fatalf("seed %d round %d results: %v", seed, r.Number, err)
			}

			for _, d := range FindDuplicatePairings(st.History) {
				if !d.HasBye() {
					t.Errorf("seed %d round %d: %v played twice", seed,
						r.Number, d)
				}
			}
			for _, p := range st.History {
				if IsPlaceholder(p[0]) || IsPlaceholder(p[1]) {
					t.Errorf("seed %d round %d: placeholder left in %v",
						seed, r.Number, p)
				}
			}
		}
	}
}

func TestRemoveParticipant(t *testing.T) {
	st := newTestTournament(t, []string{"A", "B", "C", "D"}, 2)
	if _, err := RemoveParticipant(st, "Zed"); !errors.Is(err, ErrNotFound) {
		t.Errorf("remove unknown error = %v; want ErrNotFound", err)
	}

	st, r1, err := GenerateRoundPairings(st, NewPairer(0, newTestRand()))
	if err != nil {
		t.Fatalf("GenerateRoundPairings: %v", err)
	}
	p1, p2 := r1.Pairings()[0], r1.Pairings()[1]

	st, err = RemoveParticipant(st, p1[1])
	if err != nil {
		t.Fatalf("RemoveParticipant: %v", err)
	}
	if len(st.Participants) != 3 || !reflect.DeepEqual(st.Quits, []string{p1[1]}) {
		t.Errorf("participants=%v quits=%v", st.Participants, st.Quits)
	}
	cur := CurrentPairings(st)
	if cur[0] != (Pairing{p1[0], Bye}) {
		t.Errorf("pending = %v; want %v vs BYE first", cur, p1[0])
	}

	st, err = ApplyRoundResult(st, []string{p2[0]}, nil, nil)
	if err != nil {
		t.Fatalf("ApplyRoundResult: %v", err)
	}
	if got := st.Standings[p1[0]]; got != (Record{Wins: 1}) {
		t.Errorf("%v = %v; want free win", p1[0], got)
	}
	if _, ok := st.Standings[p1[1]]; ok {
		t.Errorf("withdrawn participant still in standings")
	}
	if q := QuitRanking(st); len(q) != 1 || q[0].Name != p1[1] {
		t.Errorf("QuitRanking = %v", q)
	}
}

func TestRemoveParticipantInExtension(t *testing.T) {
	st := newTestTournament(t, []string{"A", "B", "C", "D"}, 2)
	pr := NewPairer(0, newTestRand())
	st, r1, err := GenerateRoundPairings(st, pr)
	if err != nil {
		t.Fatalf("round 1: %v", err)
	}
	p1, ext := r1.Pairings()[0], r1.Pairings()[1]
	st, err = ApplyRoundResult(st, []string{p1[0]}, nil, nil)
	if err != nil {
		t.Fatalf("round 1 results: %v", err)
	}

	st, err = RemoveParticipant(st, ext[0])
	if err != nil {
		t.Fatalf("RemoveParticipant: %v", err)
	}
	moved := Pairing{ext[1], Bye}
	if !reflect.DeepEqual(st.Extensions, []Pairing{moved}) {
		t.Errorf("extensions = %v; want [%v]", st.Extensions, moved)
	}

	st, _, err = GenerateRoundPairings(st, pr)
	if err != nil {
		t.Fatalf("round 2: %v", err)
	}
	st, _, err = CalcFinalScore(st, []string{p1[0]}, nil, nil)
	if err != nil {
		t.Fatalf("CalcFinalScore: %v", err)
	}
	want := map[string]Record{
		p1[0]:  {Wins: 2},
		ext[1]: {Wins: 1, Losses: 1},
		p1[1]:  {Wins: 1, Losses: 1},
	}
	if !reflect.DeepEqual(map[string]Record(st.Standings), want) {
		t.Errorf("standings = %v; want %v", st.Standings, want)
	}
}

func TestSubstituteParticipant(t *testing.T) {
	st := newTestTournament(t, []string{"A", "B", "C", "D"}, 2)
	st, r1, err := GenerateRoundPairings(st, NewPairer(0, newTestRand()))
	if err != nil {
		t.Fatalf("GenerateRoundPairings: %v", err)
	}
	p1 := r1.Pairings()[0]
	st, err = ApplyRoundResult(st, winnersOf(r1.Pairings()), nil, nil)
	if err != nil {
		t.Fatalf("ApplyRoundResult: %v", err)
	}

	cases := []struct {
		name     string
		old, new string
		wantErr  error
	}{
		{"unknown", "Zed", "Yan", ErrNotFound},
		{"taken", p1[0], p1[1], ErrDuplicateParticipant},
		{"reserved", p1[0], Bye, ErrInvalidInput},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := SubstituteParticipant(st, c.old, c.new); !errors.Is(err, c.wantErr) {
				t.Errorf("error = %v; want %v", err, c.wantErr)
			}
		})
	}

	next, err := SubstituteParticipant(st, p1[0], "Zed")
	if err != nil {
		t.Fatalf("SubstituteParticipant: %v", err)
	}
	if next.hasParticipant(p1[0]) || !next.hasParticipant("Zed") {
		t.Errorf("participants = %v", next.Participants)
	}
	if got := next.Standings["Zed"]; got != (Record{Wins: 1}) {
		t.Errorf("Zed = %v; want [1,0]", got)
	}
	if _, ok := next.Standings[p1[0]]; ok {
		t.Errorf("%v still has a record", p1[0])
	}
	if !next.History.Contains(Pairing{"Zed", p1[1]}) {
		t.Errorf("history not renamed: %v", next.History)
	}
	if !st.hasParticipant(p1[0]) {
		t.Errorf("input state was modified")
	}
}

func TestCompareMatchups(t *testing.T) {
	history := History{{"A", "B"}, {"C", "D"}}
	provided := []Pairing{{"B", "A"}, {"A", "C"}, {"E", "F"}, {"F", "E"},
		{"D", "C"}}
	got := CompareMatchups(history, provided)
	want := []Pairing{{"B", "A"}, {"D", "C"}, {"E", "F"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CompareMatchups = %v; want %v", got, want)
	}
	if got := CompareMatchups(history, []Pairing{{"A", "D"}}); len(got) != 0 {
		t.Errorf("CompareMatchups of fresh matchup = %v; want none", got)
	}
}

func TestStateJSON(t *testing.T) {
	st := newTestTournament(t, []string{"A", "B", "C", "D", "E"}, 2)
	st, _, err := GenerateRoundPairings(st, NewPairer(0, newTestRand()))
	if err != nil {
		t.Fatalf("GenerateRoundPairings: %v", err)
	}

	b, err := json.Marshal(st)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got State
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(&got, st) {
		t.Errorf("round trip = %+v; want %+v", got, st)
	}
}

func TestStateLayout(t *testing.T) {
	st := newTestTournament(t, []string{"A", "B", "C", "D"}, 2)
	if st.MaxRetries != DefaultMaxRetries {
		t.Errorf("MaxRetries = %d; want %d", st.MaxRetries, DefaultMaxRetries)
	}
	unset, err := CreateTournament([]string{"A", "B", "C", "D"}, 2,
		WithMaxRetries(0))
	if err != nil {
		t.Fatalf("CreateTournament: %v", err)
	}
	if unset.MaxRetries != DefaultMaxRetries {
		t.Errorf("WithMaxRetries(0) MaxRetries = %d; want %d",
			unset.MaxRetries, DefaultMaxRetries)
	}

	st, r, err := GenerateRoundPairings(st, NewPairer(0, newTestRand()))
	if err != nil {
		t.Fatalf("GenerateRoundPairings: %v", err)
	}
	st, err = ApplyRoundResult(st, winnersOf(r.Pairings()), nil, nil)
	if err != nil {
		t.Fatalf("ApplyRoundResult: %v", err)
	}
	b, err := json.Marshal(st)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for _, want := range []string{`"quits":[]`, `"quitStandings":{}`,
		`"maxRetries":500`} {
		if !strings.Contains(string(b), want) {
			t.Errorf("%s does not contain %s", b, want)
		}
	}
}
