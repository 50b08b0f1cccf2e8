// Copyright (c) 2026 Comicshelf. All rights reserved.
// Author: lin.kaiwen.tw@gmail.com

// Package safename derives filesystem-safe directory names from arbitrary
// Unicode comic titles.
//
// # Usage
//
// Safe names are used as the on-disk folder identifier for a comic's page
// images (e.g. "My_Comic_Vol_1" under the uploads root). Unlike a URL slug,
// a safe name preserves the title's letters (including non-ASCII scripts);
// only characters that are illegal or hazardous in directory names are
// removed.
package safename

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// forbidden matches every character that is illegal in directory names on
	// at least one supported filesystem (Windows reserved set, plus path
	// separators everywhere).
	forbidden = regexp.MustCompile(`[<>:"/\\|?*]`)
	// whitespaceRun matches one or more consecutive whitespace characters.
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// From converts an arbitrary Unicode title into a filesystem-safe folder name.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFC so visually identical titles map to one folder.
// 2. Replaces every occurrence of < > : " / \ | ? * with a space, so a
// forbidden character between words acts as a word separator ("My Comic/Vol 1"
// becomes "My_Comic_Vol_1", not "My_ComicVol_1").
// 3. Trims leading/trailing whitespace.
// 4. Replaces each remaining run of whitespace with a single underscore.
//
// The result may be empty when the title consists entirely of forbidden
// characters and whitespace; callers must treat an empty result as an
// invalid title.
func From(title string) string {
	// 1. Canonical composition (é as one rune, not e + combining acute)
	result := norm.NFC.String(title)

	// 2. Forbidden characters become separators
	result = forbidden.ReplaceAllString(result, " ")

	// 3. Trim edge whitespace before collapsing so no edge underscores remain
	result = strings.TrimSpace(result)

	// 4. Collapse whitespace runs into underscores
	return whitespaceRun.ReplaceAllString(result, "_")
}
