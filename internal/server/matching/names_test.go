package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := map[string]string{
		"  Brian   NGUYEN ":  "brian nguyen",
		"Alejandro Ávila":    "alejandro avila",
		"O'Brien-Smith, Jr.": "obrien-smith jr",
		"José\tMaría":        "jose maria",
		"":                   "",
		"!!!":                "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeName(in), in)
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"dmitry", "dmytro", 2},
		{"jon", "john", 1},
		{"flaw", "lawn", 2},
		{"ávila", "avila", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b), "%s/%s", tt.a, tt.b)
		assert.Equal(t, tt.want, Levenshtein(tt.b, tt.a), "symmetric %s/%s", tt.a, tt.b)
	}
}

func TestWordsSimilar(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"brian", "brian", true},
		{"chris", "christopher", true},
		{"jon", "john", true}, // short word, one edit
		{"jon", "jan", true},  // short word, one edit
		{"ana", "eva", false}, // short word, two edits
		{"dmitry", "dmytro", true},
		{"steven", "stephen", true},
		{"michael", "miguel", false},
		{"", "brian", false},
		{"", "", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WordsSimilar(tt.a, tt.b), "%s/%s", tt.a, tt.b)
	}
}

func TestNamesSimilar(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"Brian N", "Brian Nguyen", true},
		{"Brian Nguyen", "Brian N", true},
		{"Brian X", "Brian Nguyen", false},
		{"Colin Christian", "Colin Prafullchandra Christian", true},
		{"Alejandro Avila", "Alejandro Ávila", true},
		{"Jamie S", "Jamie Smith", true},
		{"Dmitry Benz", "Dmytro Brovko Benz", true},
		{"Brian", "Brian Nguyen", true},
		{"Chris", "Christopher", true},
		{"Brian Nguyen", "Kevin Nguyen", false},
		{"Maria Lopez Garcia", "Maria Garcia", true},
		{"Anna Kowalski", "Anna Smith", false},
		{"", "Anna Smith", false},
		{"ANNA  SMITH", "anna smith", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NamesSimilar(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestSplitFullName(t *testing.T) {
	tests := []struct {
		in          string
		first, last string
	}{
		{"Brian Nguyen", "Brian", "Nguyen"},
		{"Colin Prafullchandra Christian", "Colin", "Prafullchandra Christian"},
		{"Nguyen, Brian", "Brian", "Nguyen"},
		{" Nguyen ,  Brian  Van ", "Brian Van", "Nguyen"},
		{"Cher", "Cher", ""},
		{"Cher,", "Cher", ""},
		{"   ", "", ""},
	}
	for _, tt := range tests {
		first, last := SplitFullName(tt.in)
		assert.Equal(t, tt.first, first, tt.in)
		assert.Equal(t, tt.last, last, tt.in)
	}
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "6045551234", DigitsOnly("(604) 555-1234"))
	assert.Equal(t, "", DigitsOnly("n/a"))
}
