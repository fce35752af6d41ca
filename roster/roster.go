/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package roster reads participant lists and matchup lists from the forms
// organisers tend to have them in: one name per line, comma separated,
// "@A vs @B" lines copied out of a chat channel, or an HTML registration
// table.
package roster

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/mikeb26/bracketmaker/bracket"
	"github.com/mikeb26/bracketmaker/internal"
)

var ErrNoEntries = errors.New("no entries found")

// matchupRe matches "A vs B" with any case of "vs" and optional @ tags.
var matchupRe = regexp.MustCompile(`(?i)^\s*@?(.+?)\s+vs\.?\s+@?(.+?)\s*$`)

// ParseList reads participant names. Names are separated by newlines or
// commas; a leading @ tag is dropped, whitespace is normalised, and blank
// lines and lines starting with # are skipped.
func ParseList(r io.Reader) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, field := range strings.Split(line, ",") {
			if name := cleanName(field); name != "" {
				names = append(names, name)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("roster.parse: %w", err)
	}
	if len(names) == 0 {
		return nil, ErrNoEntries
	}

	return names, nil
}

func cleanName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "@")
	return internal.NormalizeName(s)
}

// ParseMatchups reads "@A vs @B" lines, as produced by
// report.BuildTaggableOutput or typed by hand. Lines that are not matchups,
// such as bracket headers, are ignored, as are matchups still naming an
// extension placeholder. An "Extension:" label is stripped.
func ParseMatchups(r io.Reader) ([]bracket.Pairing, error) {
	var pairs []bracket.Pairing
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		line = strings.TrimSpace(strings.TrimPrefix(line, "Extension:"))
		m := matchupRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		a, b := cleanName(m[1]), cleanName(m[2])
		if a == "" || b == "" {
			continue
		}
		// matchups against an unresolved extension can't be checked yet
		if bracket.IsPlaceholder(a) || bracket.IsPlaceholder(b) {
			continue
		}
		pairs = append(pairs, bracket.Pairing{a, b})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("roster.matchups: %w", err)
	}
	if len(pairs) == 0 {
		return nil, ErrNoEntries
	}

	return pairs, nil
}

// LosersFromMatchups derives the losers of a round from its matchups and a
// list of winners: in every matchup containing a winner the other side
// lost. Matchups without a listed winner contribute nothing.
func LosersFromMatchups(matchups []bracket.Pairing,
	winners []string) ([]string, error) {

	var losers []string
	for _, w := range winners {
		found := false
		for _, p := range matchups {
			if !p.Contains(w) {
				continue
			}
			found = true
			if opp := p.Opponent(w); opp != bracket.Bye {
				losers = append(losers, opp)
			}
			break
		}
		if !found {
			return nil, fmt.Errorf("%w: winner %q is not in any matchup",
				bracket.ErrInvalidInput, w)
		}
	}

	return losers, nil
}
