package util

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	reLatinDigits = regexp.MustCompile(`[a-z0-9]+`)
	reHeaderJunk  = regexp.MustCompile(`[^\p{L}\p{N}_]+`)
	reSpaces      = regexp.MustCompile(`\s+`)
)

// NormCode folds a part code to the form used for exact lookups:
// lowercase, letter o read as zero, only [a-z0-9] kept.
func NormCode(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = strings.ReplaceAll(s, "o", "0")
	out := strings.Builder{}
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			out.WriteRune(r)
		}
	}
	return out.String()
}

// Squash lowercases and drops everything that is not a letter or digit.
func Squash(input string) string {
	out := strings.Builder{}
	for _, r := range strings.ToLower(input) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			out.WriteRune(r)
		}
	}
	return out.String()
}

func Tokenize(input string) []string {
	return reLatinDigits.FindAllString(strings.ToLower(input), -1)
}

// Words splits on anything that is not a letter or digit, so Cyrillic names
// produce tokens too. Output is lowercased.
func Words(input string) []string {
	return strings.FieldsFunc(strings.ToLower(input), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// SearchKey is the index form of a single word: latin o read as zero, the
// same folding NormCode applies to codes.
func SearchKey(word string) string {
	return strings.ReplaceAll(strings.ToLower(word), "o", "0")
}

// NormalizeText keeps letters, digits and whitespace, lowercased and trimmed.
func NormalizeText(input string) string {
	out := strings.Builder{}
	for _, r := range strings.ToLower(input) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			out.WriteRune(r)
		}
	}
	return strings.TrimSpace(reSpaces.ReplaceAllString(out.String(), " "))
}

func NormalizeHeader(input string, idx int) string {
	h := strings.ToLower(strings.TrimSpace(input))
	h = strings.Trim(reHeaderJunk.ReplaceAllString(h, "_"), "_")
	if h == "" {
		return fmt.Sprintf("col%d", idx+1)
	}
	return h
}

// DedupeHeaders normalizes headers and suffixes repeats with _2, _3 and so on.
func DedupeHeaders(headers []string) []string {
	out := make([]string, 0, len(headers))
	seen := map[string]int{}
	for i, h := range headers {
		base := NormalizeHeader(h, i)
		seen[base]++
		if seen[base] == 1 {
			out = append(out, base)
			continue
		}
		out = append(out, fmt.Sprintf("%s_%d", base, seen[base]))
	}
	return out
}

func Truthy(input string) bool {
	s := strings.ToLower(strings.TrimSpace(input))
	switch s {
	case "1", "true", "yes", "y", "да", "ok", "ок":
		return true
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n > 0
	}
	return false
}

// ParseUserID accepts only positive integers.
func ParseUserID(input string) (int64, bool) {
	v, err := strconv.ParseInt(strings.TrimSpace(input), 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func StringPtr(v string) *string { return &v }

func FloatPtr(v float64) *float64 { return &v }
