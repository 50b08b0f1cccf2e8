// Copyright (c) 2026 Comicshelf. All rights reserved.
// Author: lin.kaiwen.tw@gmail.com

package safename_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linkaiwen/comicshelf/pkg/safename"
)

/*
TestFrom_Examples checks representative title-to-folder conversions.
*/
func TestFrom_Examples(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"plain_title", "Vagabond", "Vagabond"},
		{"spaces_and_slash", "My Comic/Vol 1", "My_Comic_Vol_1"},
		{"forbidden_between_letters", "AC/DC", "AC_DC"},
		{"edge_forbidden", "*Special*", "Special"},
		{"all_forbidden", `<>:"/\|?*`, ""},
		{"windows_reserved", `What? A "Comic" <Here>`, "What_A_Comic_Here"},
		{"tabs_and_newlines", "a\t\tb\nc", "a_b_c"},
		{"cjk_preserved", "進擊的巨人 第1卷", "進擊的巨人_第1卷"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, safename.From(tt.title))
		})
	}
}

/*
TestFrom_Properties verifies the output invariants for arbitrary input:
no forbidden characters, no whitespace, no edge whitespace.
*/
func TestFrom_Properties(t *testing.T) {
	inputs := []string{
		"  leading and trailing  ",
		`a<b>c:d"e/f\g|h?i*j`,
		"multi    space\truns",
		"émigré Übersicht",
		"???",
		"no-op_already_safe",
	}

	for _, input := range inputs {
		got := safename.From(input)

		assert.NotContains(t, got, " ")
		assert.Equal(t, got, strings.TrimSpace(got))

		for _, c := range `<>:"/\|?*` {
			assert.NotContains(t, got, string(c), "input %q", input)
		}
	}
}
