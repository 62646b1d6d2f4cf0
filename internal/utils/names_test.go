package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamesMatch(t *testing.T) {
	testCases := []struct {
		name     string
		a, b     string
		expected bool
	}{
		{"exact", "Phoebe Bridgers", "Phoebe Bridgers", true},
		{"case insensitive", "phoebe bridgers", "PHOEBE BRIDGERS", true},
		{"leading article", "The Mountain Goats", "Mountain Goats", true},
		{"leading article other side", "Mountain Goats", "the mountain goats", true},
		{"containment", "Goats", "The Mountain Goats", true},
		{"containment reversed", "Japanese Breakfast", "Breakfast", true},
		{"different artists", "Big Thief", "Adrianne Lenker", false},
		{"empty against name", "", "Big Thief", false},
		{"both empty", "", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NamesMatch(tc.a, tc.b))
		})
	}
}

func TestCleanName(t *testing.T) {
	assert.Equal(t, "Car Seat Headrest", CleanName("  Car   Seat\tHeadrest "))
	assert.Equal(t, "Beach House", CleanName("Beach\x00 House"))
}

func TestParseReleaseDate(t *testing.T) {
	day := ParseReleaseDate("2024-03-15", PrecisionDay)
	if assert.NotNil(t, day) {
		assert.Equal(t, "2024-03-15", day.Format("2006-01-02"))
	}

	month := ParseReleaseDate("2024-03", PrecisionMonth)
	if assert.NotNil(t, month) {
		assert.Equal(t, "2024-03-01", month.Format("2006-01-02"))
	}

	year := ParseReleaseDate("1999", "")
	if assert.NotNil(t, year) {
		assert.Equal(t, 1999, year.Year())
	}

	assert.Nil(t, ParseReleaseDate("", PrecisionDay))
	assert.Nil(t, ParseReleaseDate("soon", ""))
}

func TestCleanUTF8(t *testing.T) {
	cleaned, changed := CleanUTF8("Sigur R\xffós")
	assert.True(t, changed)
	assert.Equal(t, "Sigur Rós", cleaned)

	cleaned, changed = CleanUTF8("Björk")
	assert.False(t, changed)
	assert.Equal(t, "Björk", cleaned)
}
