/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ParseDateOrZero returns a parsed time or zero if input is empty or "null".
// Any format dateparse recognises is accepted, so "2026-03-14",
// "March 14, 2026" and "3/14/2026" all work.
func ParseDateOrZero(s string) (time.Time, error) {
	if s == "" || s == "null" {
		return time.Time{}, nil
	}
	return dateparse.ParseLocal(s)
}

// NormalizeName collapses internal runs of whitespace and trims the ends
// so that names copied from chat or web pages compare equal.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
