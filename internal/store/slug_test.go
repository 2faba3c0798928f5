// SPDX-License-Identifier: MIT

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Cell Cycle (G1/S)":  "cell-cycle-g1-s",
		"toggle_switch":      "toggle-switch",
		"Krebs   Cycle":      "krebs-cycle",
		"répresseur lambda":  "represseur-lambda",
		"p53–Mdm2 network":   "p53-mdm2-network",
		"---":                "model",
		"":                   "model",
		"already-fine-slug7": "already-fine-slug7",
	}
	for input, want := range cases {
		assert.Equal(t, want, Slugify(input), "Slugify(%q)", input)
	}
}
