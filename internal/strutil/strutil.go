// Package strutil classifies raw cell input: single-byte tests for signs,
// digits and operators, and whole-string tests for numbers, cell references,
// formulas and quoted text. Every function is pure.
package strutil

import (
	"regexp"
	"strings"
)

// Character constants used by the classifier and the evaluator.
const (
	charEquals   = '='
	charQuote    = '"'
	charPlus     = '+'
	charMinus    = '-'
	charAsterisk = '*'
	charSlash    = '/'
	charCaret    = '^'
)

// spaceChars is the set stripped by Trim.
const spaceChars = " \t\f\v\n\r"

var (
	numberPattern    = regexp.MustCompile(`^[+-]?[0-9]+(\.[0-9]*)?$`)
	integerPattern   = regexp.MustCompile(`^[+-]?[0-9]+$`)
	referencePattern = regexp.MustCompile(`^R[1-9][0-9]*C[1-9][0-9]*$`)
)

// IsSign reports whether ch is '+' or '-'.
func IsSign(ch byte) bool {
	return ch == charPlus || ch == charMinus
}

// IsDigit reports whether ch is an ASCII decimal digit.
func IsDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// IsMathOperator reports whether ch is one of + - * / ^.
func IsMathOperator(ch byte) bool {
	switch ch {
	case charPlus, charMinus, charAsterisk, charSlash, charCaret:
		return true
	}
	return false
}

// IsNumber reports whether s is an optionally signed decimal number with an
// optional fractional part. Scientific notation and a leading dot are not
// accepted.
func IsNumber(s string) bool {
	return numberPattern.MatchString(s)
}

// IsInteger reports whether s is an optionally signed run of digits.
func IsInteger(s string) bool {
	return integerPattern.MatchString(s)
}

// IsCellReference reports whether s has the form R<row>C<col> with both
// coordinates positive and written without leading zeros.
func IsCellReference(s string) bool {
	return referencePattern.MatchString(s)
}

// IsFormula reports whether s is '=' followed by numbers and cell references
// joined by math operators. Operands may not carry their own sign, so unary
// minus is rejected.
func IsFormula(s string) bool {
	if len(s) < 2 || s[0] != charEquals || !IsDigit(s[len(s)-1]) {
		return false
	}

	pos := 1
	for i := 1; i < len(s); i++ {
		last := i == len(s)-1
		if !IsMathOperator(s[i]) && !last {
			continue
		}

		end := i
		if last && !IsMathOperator(s[i]) {
			end = i + 1
		}
		if !IsOperand(s[pos:end]) {
			return false
		}
		pos = i + 1
	}

	return true
}

// IsOperand reports whether token can stand between two operators of a
// formula: an unsigned number or a cell reference.
func IsOperand(token string) bool {
	if token == "" || IsSign(token[0]) {
		return false
	}
	return IsNumber(token) || IsCellReference(token)
}

// IsQuotedText reports whether s is at least two bytes long and both starts
// and ends with a double quote. Inner quotes are taken verbatim.
func IsQuotedText(s string) bool {
	return len(s) > 1 && s[0] == charQuote && s[len(s)-1] == charQuote
}

// Unquote returns the content between the outer quotes of s, or s unchanged
// when it is not quoted text.
func Unquote(s string) string {
	if !IsQuotedText(s) {
		return s
	}
	return s[1 : len(s)-1]
}

// Trim removes leading and trailing spaces, tabs, form feeds, vertical tabs,
// newlines and carriage returns.
func Trim(s string) string {
	if s == "" {
		return s
	}
	return strings.Trim(s, spaceChars)
}
