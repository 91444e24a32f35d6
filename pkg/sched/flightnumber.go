package sched

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Numbering policy: numbers start at a fixed base and advance in steps of
// ten, and every outbound keeps the next number free for its eventual
// return flight, so outbound/return pairs are always adjacent.
const (
	numberBase    = 100
	numberStep    = 10
	numberCeiling = 9999
)

// ErrNumbersExhausted is returned when no free slot remains below the
// numbering ceiling.
var ErrNumbersExhausted = errors.New("flight numbers exhausted")

var numberFormat = regexp.MustCompile(`^[0-9]{3,4}$`)

// NextNumber finds the lowest numeric slot n at or above the base such that
// neither n nor n+1 is in use. The n+1 slot is reserved for the return
// flight; a candidate is skipped when either half of the pair is taken.
func NextNumber(used map[int]bool) (int, error) {
	for n := numberBase; n <= numberCeiling; n += numberStep {
		if used[n] || used[n+1] {
			continue
		}
		return n, nil
	}
	return 0, ErrNumbersExhausted
}

// FormatNumber renders a numeric slot as an operator-prefixed flight number.
func FormatNumber(operator string, n int) string {
	return fmt.Sprintf("%s%d", strings.ToUpper(operator), n)
}

// IsValidFormat reports whether a flight number is the operator code
// followed by exactly three or four digits.
func IsValidFormat(number, operator string) bool {
	operator = strings.ToUpper(operator)
	if operator == "" || !strings.HasPrefix(number, operator) {
		return false
	}
	return numberFormat.MatchString(number[len(operator):])
}

// ParseNumber extracts the numeric slot from an operator-prefixed flight
// number. It returns false when the number is not in the operator's format.
func ParseNumber(number, operator string) (int, bool) {
	if !IsValidFormat(number, operator) {
		return 0, false
	}
	n, err := strconv.Atoi(number[len(operator):])
	if err != nil {
		return 0, false
	}
	return n, true
}

// UsedNumbers collects the numeric slots of every non-deleted flight of one
// operator, the set NextNumber allocates against.
func UsedNumbers(flights FlightRepository, operator string) (map[int]bool, error) {
	all, err := flights.ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list flights: %w", err)
	}
	used := make(map[int]bool, len(all))
	for _, f := range all {
		if n, ok := ParseNumber(f.Number, operator); ok {
			used[n] = true
		}
	}
	return used, nil
}
