/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package bracket

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Record is one participant's running win/loss tally. It is persisted as a
// two element array [wins, losses].
type Record struct {
	Wins   int
	Losses int
}

// Diff is the win-loss differential used for ranking.
func (r Record) Diff() int {
	return r.Wins - r.Losses
}

func (r Record) String() string {
	return fmt.Sprintf("[%d,%d]", r.Wins, r.Losses)
}

func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{r.Wins, r.Losses})
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var wl [2]int
	if err := json.Unmarshal(data, &wl); err != nil {
		return fmt.Errorf("record: %w", err)
	}
	if wl[0] < 0 || wl[1] < 0 {
		return fmt.Errorf("record: negative tally %v", wl)
	}
	r.Wins, r.Losses = wl[0], wl[1]

	return nil
}

// Standings maps each participant to their record. Map iteration order is
// never relied upon; ordering always comes from the roster.
type Standings map[string]Record

func (s Standings) Clone() Standings {
	out := make(Standings, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Apply credits one win to every winner and one loss to every loser. Byes
// never accumulate a record. Names in extended are mid-extension; their
// tallies are left alone but they are entered at (0,0) if new.
func (s Standings) Apply(winners, losers, extended []string) {
	for _, name := range winners {
		if name == Bye {
			continue
		}
		r := s[name]
		r.Wins++
		s[name] = r
	}
	for _, name := range losers {
		if name == Bye {
			continue
		}
		r := s[name]
		r.Losses++
		s[name] = r
	}
	for _, name := range extended {
		if name == Bye {
			continue
		}
		if _, ok := s[name]; !ok {
			s[name] = Record{}
		}
	}
}

// Totals returns the summed wins and losses across all records.
func (s Standings) Totals() (wins, losses int) {
	for _, r := range s {
		wins += r.Wins
		losses += r.Losses
	}
	return wins, losses
}

// Standing is one row of a ranking.
type Standing struct {
	Name   string
	Wins   int
	Losses int
	// Pending marks a participant whose extension match is unresolved.
	Pending bool
}

func (s Standing) Diff() int {
	return s.Wins - s.Losses
}

// Ranking orders roster by wins minus losses, highest first. Ties keep
// roster order; there is deliberately no secondary key.
func Ranking(roster []string, standings Standings, pending []string) []Standing {
	isPending := make(map[string]bool, len(pending))
	for _, p := range pending {
		isPending[p] = true
	}

	out := make([]Standing, 0, len(roster))
	for _, name := range roster {
		if name == Bye {
			continue
		}
		r := standings[name]
		out = append(out, Standing{
			Name:    name,
			Wins:    r.Wins,
			Losses:  r.Losses,
			Pending: isPending[name],
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Diff() > out[j].Diff()
	})

	return out
}
