package term

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		season Season
		year   string
		order  int
	}{
		{name: "plain", input: "Fall 2023", season: Fall, year: "2023", order: 20233},
		{name: "lowercase", input: "spring 2024", season: Spring, year: "2024", order: 20241},
		{name: "embedded", input: "Term: SUMMER 2022 Session", season: Summer, year: "2022", order: 20222},
		{name: "winter", input: "Winter 2021", season: Winter, year: "2021", order: 20214},
		{name: "first match wins", input: "Fall 2020 / Spring 2021", season: Fall, year: "2020", order: 20203},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.season, got.Season)
			assert.Equal(t, tt.year, got.Year)
			assert.Equal(t, tt.order, got.Order)
		})
	}
}

func TestParse_Unparseable(t *testing.T) {
	for _, input := range []string{"", "Autumn 2023", "Fall 23", "2023 Fall", "Fallen 2023"} {
		t.Run(input, func(t *testing.T) {
			_, ok := Parse(input)
			assert.False(t, ok)
		})
	}
}

func TestOrder_Monotonic(t *testing.T) {
	spring, _ := Parse("Spring 2023")
	summer, _ := Parse("Summer 2023")
	fall, _ := Parse("Fall 2023")
	winter, _ := Parse("Winter 2023")
	nextSpring, _ := Parse("Spring 2024")

	assert.Less(t, spring.Order, summer.Order)
	assert.Less(t, summer.Order, fall.Order)
	assert.Less(t, fall.Order, winter.Order)
	assert.Less(t, winter.Order, nextSpring.Order)
}
