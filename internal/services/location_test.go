package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecoverLocation(t *testing.T) {
	tests := []struct {
		name      string
		city      string
		state     string
		zip       string
		expected  Location
		recovered bool
	}{
		{
			name:      "city state and zip merged into city",
			city:      "Richmond VA 23220",
			expected:  Location{City: "Richmond", State: "VA", Zip: "23220"},
			recovered: true,
		},
		{
			name:      "plain city without state or zip is excluded",
			city:      "Asheville",
			expected:  Location{City: "Asheville"},
			recovered: false,
		},
		{
			name:      "clean row passes through",
			city:      "Raleigh",
			state:     "NC",
			zip:       "27601",
			expected:  Location{City: "Raleigh", State: "NC", Zip: "27601"},
			recovered: true,
		},
		{
			name:      "comma after city and zip plus four",
			city:      "Richmond, VA 23220-1234",
			expected:  Location{City: "Richmond", State: "VA", Zip: "23220"},
			recovered: true,
		},
		{
			name:      "existing state is not overwritten",
			city:      "Bristol TN 37620",
			state:     "VA",
			expected:  Location{City: "Bristol", State: "VA", Zip: "37620"},
			recovered: true,
		},
		{
			name:      "existing zip is not overwritten",
			city:      "Richmond VA 23220",
			zip:       "23219",
			expected:  Location{City: "Richmond", State: "VA", Zip: "23219"},
			recovered: true,
		},
		{
			name:      "multi word city with state token",
			city:      "Winston Salem NC",
			expected:  Location{City: "Winston Salem", State: "NC"},
			recovered: true,
		},
		{
			name:      "trailing zip without state",
			city:      "Asheville 28801",
			expected:  Location{City: "Asheville", Zip: "28801"},
			recovered: true,
		},
		{
			name:      "mixed case words are not states",
			city:      "Lake In The Hills",
			expected:  Location{City: "Lake In The Hills"},
			recovered: false,
		},
		{
			name:      "state token at start is not split",
			city:      "LA Grange",
			state:     "NC",
			expected:  Location{City: "LA Grange", State: "NC"},
			recovered: true,
		},
		{
			name:      "zip alone is not a city",
			city:      "28801",
			expected:  Location{Zip: "28801"},
			recovered: false,
		},
		{
			name:      "empty city",
			city:      "   ",
			state:     "NC",
			zip:       "27601",
			expected:  Location{State: "NC", Zip: "27601"},
			recovered: false,
		},
		{
			name:      "whitespace is trimmed",
			city:      "  Durham ",
			state:     " NC ",
			expected:  Location{City: "Durham", State: "NC"},
			recovered: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, ok := RecoverLocation(tt.city, tt.state, tt.zip)
			assert.Equal(t, tt.recovered, ok)
			assert.Equal(t, tt.expected, loc)
		})
	}
}

func TestIsStateAbbreviation(t *testing.T) {
	assert.True(t, IsStateAbbreviation("VA"))
	assert.True(t, IsStateAbbreviation("PR"))
	assert.False(t, IsStateAbbreviation("va"))
	assert.False(t, IsStateAbbreviation("XX"))
	assert.False(t, IsStateAbbreviation(""))
}
