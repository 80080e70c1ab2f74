package profile

import (
	"fmt"
	"strconv"
	"strings"

	"codeberg.org/mutker/coolctl/internal/errors"
)

const msgStructure = "profile must be comma-separated (temperature, duty) tuples"

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
}

// literal is one parsed element: either a bare number or a tuple of numbers.
type literal struct {
	tuple   bool
	number  string
	members []string
}

// Parse converts profile text into a normalized Profile. The text is either
// comma-separated (temperature, duty) tuples, e.g. "(20,30),(40,90)", or a
// single integer duty applied from b.MinTemp to b.MaxTemp-1. Every point must
// lie within b; the profile is terminated at b.MaxTemp with full duty.
func Parse(text string, b Bounds) (Profile, error) {
	items, err := parseLiterals(text)
	if err != nil {
		return Profile{}, err
	}

	if len(items) == 1 && !items[0].tuple {
		d, ok := parseInt(items[0].number)
		switch {
		case ok:
			items = []literal{
				{tuple: true, members: []string{strconv.Itoa(b.MinTemp), strconv.Itoa(d)}},
				{tuple: true, members: []string{strconv.Itoa(b.MaxTemp - 1), strconv.Itoa(d)}},
			}
		case isIntegerLiteral(items[0].number):
			return Profile{}, dutyError(b)
		}
	}

	points := make([]Point, 0, len(items))
	for _, item := range items {
		if !item.tuple || len(item.members) != 2 {
			return Profile{}, structureError()
		}

		temp, ok := parseInt(item.members[0])
		if !ok || temp < b.MinTemp || temp > b.MaxTemp {
			return Profile{}, validationError(
				fmt.Sprintf("temperature must be integer number between %d and %d", b.MinTemp, b.MaxTemp))
		}

		duty, ok := parseInt(item.members[1])
		if !ok || duty < b.MinDuty || duty > b.MaxDuty {
			return Profile{}, dutyError(b)
		}

		points = append(points, Point{Temperature: temp, Duty: duty})
	}

	return Normalize(points, b.MaxTemp), nil
}

// IsValidationError reports whether err was produced by profile validation.
func IsValidationError(err error) bool {
	return errors.HasCode(err, errors.ErrInvalidProfile)
}

func validationError(msg string) error {
	return errors.New().WithMessage(errors.ErrInvalidProfile, msg)
}

func dutyError(b Bounds) error {
	return validationError(fmt.Sprintf("duty must be integer number between %d and %d", b.MinDuty, b.MaxDuty))
}

func structureError() error {
	return validationError(msgStructure)
}

// parseInt accepts only integer literals; floats and out-of-range values
// report false.
func parseInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimPrefix(s, "+"))
	if err != nil {
		return 0, false
	}

	return n, true
}

// isIntegerLiteral reports whether s is a signed run of digits, whatever its
// magnitude.
func isIntegerLiteral(s string) bool {
	if s != "" && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

// parseLiterals implements the grammar
//
//	list   = item { "," item } [ "," ]
//	item   = number | "(" [ number { "," number } [ "," ] ] ")"
func parseLiterals(text string) ([]literal, error) {
	toks, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, structureError()
	}

	var items []literal
	pos := 0
	for pos < len(toks) {
		item, next, err := parseItem(toks, pos)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		pos = next

		if pos == len(toks) {
			break
		}
		if toks[pos].kind != tokComma {
			return nil, structureError()
		}
		pos++
	}

	return items, nil
}

func parseItem(toks []token, pos int) (literal, int, error) {
	switch toks[pos].kind {
	case tokNumber:
		return literal{number: toks[pos].text}, pos + 1, nil
	case tokLParen:
		pos++
	default:
		return literal{}, pos, structureError()
	}

	item := literal{tuple: true}
	for {
		if pos >= len(toks) {
			return literal{}, pos, structureError()
		}
		if toks[pos].kind == tokRParen {
			return item, pos + 1, nil
		}
		if toks[pos].kind != tokNumber {
			return literal{}, pos, structureError()
		}
		item.members = append(item.members, toks[pos].text)
		pos++

		if pos >= len(toks) {
			return literal{}, pos, structureError()
		}
		switch toks[pos].kind {
		case tokComma:
			pos++
		case tokRParen:
		default:
			return literal{}, pos, structureError()
		}
	}
}

func tokenize(text string) ([]token, error) {
	var toks []token
	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen})
			i++
		case c == ',':
			toks = append(toks, token{kind: tokComma})
			i++
		case c == '-' || c == '+' || c == '.' || isDigit(c):
			end := scanNumber(text, i)
			if end == i {
				return nil, structureError()
			}
			toks = append(toks, token{kind: tokNumber, text: text[i:end]})
			i = end
		default:
			return nil, structureError()
		}
	}

	return toks, nil
}

// scanNumber returns the end of a decimal literal starting at i: an optional
// sign, digits, an optional fraction and an optional exponent. It returns i
// when no digits are found.
func scanNumber(s string, i int) int {
	j := i
	if j < len(s) && (s[j] == '-' || s[j] == '+') {
		j++
	}

	digits := 0
	for j < len(s) && isDigit(s[j]) {
		j++
		digits++
	}
	if j < len(s) && s[j] == '.' {
		j++
		for j < len(s) && isDigit(s[j]) {
			j++
			digits++
		}
	}
	if digits == 0 {
		return i
	}

	if j < len(s) && (s[j] == 'e' || s[j] == 'E') {
		k := j + 1
		if k < len(s) && (s[k] == '-' || s[k] == '+') {
			k++
		}
		start := k
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > start {
			j = k
		}
	}

	return j
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
