/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package bracket

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput covers malformed or missing participant, round or
	// result data. The caller is expected to re-prompt.
	ErrInvalidInput = errors.New("invalid input")

	ErrDuplicateParticipant = errors.New("duplicate participant")
	ErrInvalidRounds        = errors.New("invalid number of rounds")

	// ErrPairingExhausted means the retry bound was hit without a
	// rematch-free arrangement. Standings and history remain available so
	// the round can be paired by hand.
	ErrPairingExhausted = errors.New("pairing retries exhausted")

	// ErrNoPairingsPossible means a two member group has already met. It
	// is a hard stop for the round and is never retried.
	ErrNoPairingsPossible = errors.New("no pairings possible")

	ErrNotFound = errors.New("participant not found")

	// ErrWrongPhase is returned when an operation is not allowed in the
	// tournament's current phase (e.g. pairing after the final round).
	ErrWrongPhase = errors.New("operation not allowed in current phase")
)

// ExhaustedError reports the group that could not be paired along with a
// copy of the pairing history at the time of the failure.
type ExhaustedError struct {
	Group   []string
	History History
	Tries   int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%v: %d tries for group %v", ErrPairingExhausted,
		e.Tries, e.Group)
}

func (e *ExhaustedError) Unwrap() error {
	return ErrPairingExhausted
}
