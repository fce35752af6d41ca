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

// BuildPairingsOutput formats a round into one aligned table per record
// group, preceded by any extension matches being played alongside it.
func BuildPairingsOutput(r *bracket.Round) string {
	var sb strings.Builder

	if r == nil {
		sb.WriteString("No round in progress\n")
		return sb.String()
	}
	if r.Final {
		sb.WriteString(fmt.Sprintf("Round %v (final) Pairings:\n\n", r.Number))
	} else {
		sb.WriteString(fmt.Sprintf("Round %v Pairings:\n\n", r.Number))
	}

	if len(r.Extensions) > 0 {
		sb.WriteString("Extension matches (play these first):\n")
		writePairingTable(&sb, r.Extensions)
		sb.WriteString("\n")
	}

	for _, g := range r.Groups {
		sb.WriteString(fmt.Sprintf("%v Bracket\n", g.Record))
		writePairingTable(&sb, g.Pairings)
		sb.WriteString("\n")
	}

	return sb.String()
}

func writePairingTable(sb *strings.Builder, pairs []bracket.Pairing) {
	type row struct{ board, left, right string }
	var rows []row
	board := 1
	for _, p := range pairs {
		r := row{left: p[0], right: p[1]}
		if p.HasBye() {
			r.board = "n/a"
			r.left = p.Opponent(bracket.Bye)
			r.right = "BYE(1)"
		} else {
			r.board = fmt.Sprintf("%d.", board)
			board++
		}
		rows = append(rows, r)
	}

	// byes go last
	var ordered []row
	for _, r := range rows {
		if r.board != "n/a" {
			ordered = append(ordered, r)
		}
	}
	for _, r := range rows {
		if r.board == "n/a" {
			ordered = append(ordered, r)
		}
	}

	maxB, maxL, maxR := len("Board"), len("Player"), len("Opponent")
	for _, r := range ordered {
		if l := len(r.board); l > maxB {
			maxB = l
		}
		if l := len(r.left); l > maxL {
			maxL = l
		}
		if l := len(r.right); l > maxR {
			maxR = l
		}
	}

	sb.WriteString(fmt.Sprintf("%-*s  %-*s  %-*s\n", maxB, "Board", maxL,
		"Player", maxR, "Opponent"))
	for _, r := range ordered {
		sb.WriteString(fmt.Sprintf("%-*s  %-*s  %-*s\n", maxB, r.board,
			maxL, r.left, maxR, r.right))
	}
}

// BuildTaggableOutput lists a round as "@A VS @B" lines suitable for
// pasting into a chat channel where @ mentions notify the participants.
// The result can be fed back through roster.ParseMatchups.
func BuildTaggableOutput(r *bracket.Round) string {
	var sb strings.Builder
	if r == nil {
		return ""
	}

	for _, p := range r.Extensions {
		sb.WriteString(fmt.Sprintf("Extension: %v\n", taggable(p)))
	}
	for _, g := range r.Groups {
		sb.WriteString(fmt.Sprintf("%v Bracket\n", g.Record))
		for _, p := range g.Pairings {
			sb.WriteString(taggable(p))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func taggable(p bracket.Pairing) string {
	return fmt.Sprintf("%v VS %v", tag(p[0]), tag(p[1]))
}

// tag prefixes real participants with @. Byes and placeholders are left
// alone since nobody can be notified through them.
func tag(name string) string {
	if name == bracket.Bye || bracket.IsPlaceholder(name) {
		return name
	}
	return "@" + name
}

// BuildRematchOutput reports the result of checking a matchup list against
// a tournament's history.
func BuildRematchOutput(rematches []bracket.Pairing) string {
	if len(rematches) == 0 {
		return "No rematches found\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d rematch(es) found:\n", len(rematches)))
	for _, p := range rematches {
		sb.WriteString(fmt.Sprintf("  %v\n", p))
	}
	return sb.String()
}
