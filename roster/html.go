/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package roster

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// TableSpec locates participant names in an HTML page.
type TableSpec struct {
	// Selector picks the table, e.g. "table#members".
	Selector string
	// Column is the zero based cell index holding the name.
	Column int
}

var DefaultTableSpec = TableSpec{Selector: "table", Column: 0}

// ParseHTMLTable extracts one name per body row of the first table matching
// spec. Rows without enough cells, such as headers, are skipped.
func ParseHTMLTable(r io.Reader, spec TableSpec) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("roster.html: %w", err)
	}

	return parseTable(doc, spec)
}

func parseTable(doc *goquery.Document, spec TableSpec) ([]string, error) {
	if spec.Selector == "" {
		spec = DefaultTableSpec
	}
	table := doc.Find(spec.Selector).First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: no element matches %q", ErrNoEntries,
			spec.Selector)
	}

	var names []string
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() <= spec.Column {
			return
		}
		name := cleanName(cells.Eq(spec.Column).Text())
		if name == "" || strings.HasPrefix(name, "#") {
			return
		}
		names = append(names, name)
	})
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: table %q has no names in column %d",
			ErrNoEntries, spec.Selector, spec.Column)
	}

	return names, nil
}
