/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package bracket

// Group is a set of participants (or extension placeholders) sharing the
// same record.
type Group struct {
	Record  Record
	Members []string
}

// GroupByRecord partitions roster into groups of identical record. Groups
// are ordered by the first roster member holding each record and members
// keep roster order. Participants with no record yet count as (0,0).
//
// Each member of an unresolved extension is represented by a placeholder
// placed in the group its provisional record would put it in: the left
// member of the extension is assumed to win and the right member to lose.
// standings is not modified.
func GroupByRecord(roster []string, standings Standings,
	extensions []Pairing) []Group {

	var groups []Group
	index := make(map[Record]int)

	for _, name := range roster {
		if name == Bye {
			continue
		}
		rec := standings[name]
		member := name
		for _, ext := range extensions {
			if ext[0] == name {
				rec.Wins++
				member = WinnerOf(ext)
				break
			}
			if ext[1] == name {
				rec.Losses++
				member = LoserOf(ext)
				break
			}
		}

		i, ok := index[rec]
		if !ok {
			i = len(groups)
			index[rec] = i
			groups = append(groups, Group{Record: rec})
		}
		groups[i].Members = append(groups[i].Members, member)
	}

	return groups
}
