/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package report

import (
	"fmt"
	"strings"

	"github.com/mikeb26/bracketmaker/bracket"
)

const pendingMarker = "(Pending)"

// BuildStandingsOutput formats a ranking as an aligned table. Tied
// participants share a place, which is only printed for the first of them.
// Withdrawn participants, if any, follow in their own table.
func BuildStandingsOutput(title string, ranking []bracket.Standing,
	quits []bracket.Standing) string {

	var sb strings.Builder

	if title != "" {
		sb.WriteString(title)
		sb.WriteString("\n\n")
	}
	if len(ranking) == 0 {
		sb.WriteString("No standings available\n")
	} else {
		writeStandingsTable(&sb, ranking, true)
	}

	if len(quits) > 0 {
		sb.WriteString("\nWithdrawn\n")
		writeStandingsTable(&sb, quits, false)
	}

	return sb.String()
}

func writeStandingsTable(sb *strings.Builder, ranking []bracket.Standing,
	places bool) {

	type row struct{ place, name, record, diff string }
	var rows []row
	priorDiff := 0
	for idx, s := range ranking {
		var place string
		if places && (idx == 0 || s.Diff() != priorDiff) {
			place = fmt.Sprintf("%v.", idx+1)
			priorDiff = s.Diff()
		}
		name := s.Name
		if s.Pending {
			name = fmt.Sprintf("%v %v", name, pendingMarker)
		}
		rows = append(rows, row{
			place:  place,
			name:   name,
			record: bracket.Record{Wins: s.Wins, Losses: s.Losses}.String(),
			diff:   fmt.Sprintf("%+d", s.Diff()),
		})
	}

	maxP, maxN, maxR, maxD := len("Place"), len("Name"), len("Record"),
		len("Diff")
	for _, r := range rows {
		if l := len(r.place); l > maxP {
			maxP = l
		}
		if l := len(r.name); l > maxN {
			maxN = l
		}
		if l := len(r.record); l > maxR {
			maxR = l
		}
		if l := len(r.diff); l > maxD {
			maxD = l
		}
	}

	sb.WriteString(fmt.Sprintf("%-*s  %-*s  %-*s  %-*s\n", maxP, "Place",
		maxN, "Name", maxR, "Record", maxD, "Diff"))
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%-*s  %-*s  %-*s  %-*s\n", maxP, r.place,
			maxN, r.name, maxR, r.record, maxD, r.diff))
	}
}

// BuildTournamentStandings renders the standings of st with a title
// appropriate to its phase.
func BuildTournamentStandings(st *bracket.State) string {
	var title string
	switch {
	case st.Phase == bracket.PhaseComplete:
		title = "Final Standings:"
	case st.InRound:
		title = fmt.Sprintf("Standings prior to Round %v:", st.Round)
	default:
		title = fmt.Sprintf("Standings after Round %v:", st.Round)
	}

	return BuildStandingsOutput(title, bracket.FinalRanking(st),
		bracket.QuitRanking(st))
}
