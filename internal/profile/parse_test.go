package profile_test

import (
	"testing"

	"codeberg.org/mutker/coolctl/internal/errors"
	"codeberg.org/mutker/coolctl/internal/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	msgStructure = "profile must be comma-separated (temperature, duty) tuples"
	msgTemp      = "temperature must be integer number between 0 and 60"
	msgDuty      = "duty must be integer number between 25 and 100"
)

var fanBounds = profile.Bounds{MinTemp: 0, MaxTemp: 60, MinDuty: 25, MaxDuty: 100}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []profile.Point
	}{
		{
			name: "fixed duty shorthand",
			text: "35",
			want: []profile.Point{{0, 35}, {59, 35}, {60, 100}},
		},
		{
			name: "tuples",
			text: "(20,30),(30,50),(34,80),(40,90)",
			want: []profile.Point{{20, 30}, {30, 50}, {34, 80}, {40, 90}, {60, 100}},
		},
		{
			name: "unsorted input with whitespace",
			text: " (40, 90), (20,30) ,(30 ,50)",
			want: []profile.Point{{20, 30}, {30, 50}, {40, 90}, {60, 100}},
		},
		{
			name: "trailing commas",
			text: "(20,30,),(40,90),",
			want: []profile.Point{{20, 30}, {40, 90}, {60, 100}},
		},
		{
			name: "user point at critical temperature is forced to full duty",
			text: "(20,30),(60,50)",
			want: []profile.Point{{20, 30}, {60, 100}},
		},
		{
			name: "decreasing duty is kept",
			text: "(20,90),(40,30)",
			want: []profile.Point{{20, 90}, {40, 30}, {60, 100}},
		},
		{
			name: "explicit plus sign",
			text: "(+20,+30)",
			want: []profile.Point{{20, 30}, {60, 100}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := profile.Parse(tt.text, fanBounds)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Points())
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		bounds profile.Bounds
		msg    string
	}{
		{"unterminated tuple", "(20,30),(50,100", fanBounds, msgStructure},
		{"three element tuple", "(20,30),(50,100,2)", fanBounds, msgStructure},
		{"one element tuple", "(20,)", fanBounds, msgStructure},
		{"empty tuple", "()", fanBounds, msgStructure},
		{"empty text", "", fanBounds, msgStructure},
		{"bare numbers", "20,30", fanBounds, msgStructure},
		{"float shorthand", "35.5", fanBounds, msgStructure},
		{"nested tuple", "((20,30),40)", fanBounds, msgStructure},
		{"missing comma between tuples", "(20,30)(40,50)", fanBounds, msgStructure},
		{"expression", "(20,30+1)", fanBounds, msgStructure},
		{"identifier", "(20,duty)", fanBounds, msgStructure},
		{"string literal", `(20,"30")`, fanBounds, msgStructure},
		{"non-integer duty", "(20,30),(50,97.6)", fanBounds, msgDuty},
		{"duty below minimum", "(20,15),(50,100)", fanBounds, msgDuty},
		{"shorthand below minimum", "10", fanBounds, msgDuty},
		{"overflowing shorthand", "99999999999999999999", fanBounds, msgDuty},
		{"overflowing negative shorthand", "-99999999999999999999", fanBounds, msgDuty},
		{"overflowing duty", "(20,99999999999999999999)", fanBounds, msgDuty},
		{"temperature above maximum", "(20,30),(70,100)", fanBounds, msgTemp},
		{"negative temperature", "(-5,30)", fanBounds, msgTemp},
		{"non-integer temperature", "(20.5,30)", fanBounds, msgTemp},
		{"overflowing temperature", "(99999999999999999999,30)", fanBounds, msgTemp},
		{"exponent literal", "(2e1,30)", fanBounds, msgTemp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := profile.Parse(tt.text, tt.bounds)
			require.Error(t, err)
			assert.True(t, profile.IsValidationError(err))
			assert.True(t, errors.HasCode(err, errors.ErrInvalidProfile))
			assert.Equal(t, tt.msg, err.Error())
		})
	}
}

func TestParseFirstViolationWins(t *testing.T) {
	// The temperature of the first point is checked before any duty.
	_, err := profile.Parse("(70,10),(20,10)", fanBounds)
	require.Error(t, err)
	assert.Equal(t, msgTemp, err.Error())

	_, err = profile.Parse("(20,10),(70,30)", fanBounds)
	require.Error(t, err)
	assert.Equal(t, msgDuty, err.Error())
}

func TestParseAlwaysEndsAtCritical(t *testing.T) {
	texts := []string{
		"50",
		"(0,25)",
		"(59,100)",
		"(10,25),(20,30),(30,40),(40,50),(50,60)",
		"(30,100),(10,25)",
	}
	for _, text := range texts {
		p, err := profile.Parse(text, fanBounds)
		require.NoError(t, err, text)

		last, ok := p.Critical()
		require.True(t, ok)
		assert.Equal(t, profile.Point{Temperature: 60, Duty: 100}, last, text)
	}
}

func TestParseCriticalIgnoresMaxDuty(t *testing.T) {
	b := profile.Bounds{MinTemp: 20, MaxTemp: 50, MinDuty: 0, MaxDuty: 25}

	p, err := profile.Parse("(20,10),(40,25)", b)
	require.NoError(t, err)
	assert.Equal(t, []profile.Point{{20, 10}, {40, 25}, {50, 100}}, p.Points())

	_, err = profile.Parse("(20,10),(40,26)", b)
	require.Error(t, err)
	assert.Equal(t, "duty must be integer number between 0 and 25", err.Error())
}

func TestProfileString(t *testing.T) {
	p, err := profile.Parse("(20,30),(40,90)", fanBounds)
	require.NoError(t, err)
	assert.Equal(t, "(20,30),(40,90),(60,100)", p.String())

	again, err := profile.Parse(p.String(), fanBounds)
	require.NoError(t, err)
	assert.Equal(t, p.Points(), again.Points())
}
