// Package matching decides whether an imported name, email or phone number
// refers to an employee already on file. Timecard and commission imports,
// onboarding and the duplicate merger all go through it so that one person
// never ends up with two employee records.
package matching

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName lowercases s, folds accents ("Ávila" → "avila"), drops
// everything except letters, digits, spaces and hyphens, and collapses runs
// of whitespace.
func NormalizeName(s string) string {
	if s == "" {
		return ""
	}
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Levenshtein returns the edit distance between a and b, counted in runes.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				cur[j] = prev[j-1]
				continue
			}
			cur[j] = 1 + min(prev[j], cur[j-1], prev[j-1])
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

// WordsSimilar reports whether two normalized name tokens are the same word
// allowing for truncation ("chris"/"christopher") and small typos: one edit
// for words up to four letters, two for longer ones.
func WordsSimilar(a, b string) bool {
	if a == b {
		return a != ""
	}
	if a == "" || b == "" {
		return false
	}
	if strings.HasPrefix(a, b) || strings.HasPrefix(b, a) {
		return true
	}

	threshold := 2
	if max(len([]rune(a)), len([]rune(b))) <= 4 {
		threshold = 1
	}
	return Levenshtein(a, b) <= threshold
}

// NamesSimilar reports whether two full names plausibly belong to the same
// person. The first names must be similar. After that a single-letter last
// name is treated as an initial, similar last names match, and a name whose
// significant words all appear in the other (middle names) matches too.
func NamesSimilar(a, b string) bool {
	n1, n2 := NormalizeName(a), NormalizeName(b)
	if n1 == "" || n2 == "" {
		return false
	}
	if n1 == n2 {
		return true
	}

	w1, w2 := strings.Split(n1, " "), strings.Split(n2, " ")
	if !WordsSimilar(w1[0], w2[0]) {
		return false
	}
	if len(w1) == 1 && len(w2) == 1 {
		return true
	}

	last1, last2 := w1[len(w1)-1], w2[len(w2)-1]

	// "Brian N" vs "Brian Nguyen"
	if len(last1) == 1 && len(last2) > 1 {
		return last1[0] == last2[0]
	}
	if len(last2) == 1 && len(last1) > 1 {
		return last2[0] == last1[0]
	}

	if WordsSimilar(last1, last2) {
		return true
	}

	if strings.Contains(n1, n2) || strings.Contains(n2, n1) {
		return true
	}

	shorter, longer := w1, w2
	if len(w2) < len(w1) {
		shorter, longer = w2, w1
	}

	significant, matched := 0, 0
	for _, w := range shorter {
		if len(w) <= 1 {
			continue
		}
		significant++
		for _, lw := range longer {
			if WordsSimilar(w, lw) {
				matched++
				break
			}
		}
	}
	return significant > 0 && matched >= significant
}

// SplitFullName splits a display name into first and last name. Both
// "First Middle Last" and "Last, First" are understood. A single word comes
// back as a first name with an empty last name.
func SplitFullName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}

	if before, after, ok := strings.Cut(name, ","); ok {
		last = strings.Join(strings.Fields(before), " ")
		first = strings.Join(strings.Fields(after), " ")
		if first == "" {
			return last, ""
		}
		return first, last
	}

	parts := strings.Fields(name)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// DigitsOnly strips everything but ASCII digits.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
