package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"JS Recon Radar", "js-recon-radar"},
		{"ParamHawk", "paramhawk"},
		{"Pro Hunter Bundle", "pro-hunter-bundle"},
		{"DOM Sink  Tracker!", "dom-sink-tracker"},
		{"  AuthFlow / Visualizer  ", "authflow-visualizer"},
		{"Request--Mutator__Lab", "request-mutator-lab"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Generate(tt.input))
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "paramhawk", Normalize("  ParamHawk "))
	assert.Equal(t, "elite-arsenal", Normalize("ELITE-ARSENAL"))
}

func TestValid(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"js-recon-radar", true},
		{"paramhawk", true},
		{"tool2", true},
		{"", false},
		{"Js-Recon", false},
		{"-leading", false},
		{"trailing-", false},
		{"double--hyphen", false},
		{"spaces here", false},
		{"../etc/passwd", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.valid, Valid(tt.input))
		})
	}
}
