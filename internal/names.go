/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"strings"
	"unicode"
)

// nameParticles stay lower case inside a name ("Lena von der Heide").
var nameParticles = map[string]struct{}{
	"von": {}, "vom": {}, "van": {}, "der": {}, "den": {}, "de": {},
	"zu": {}, "zum": {}, "zur": {}, "ten": {}, "ter": {}, "da": {}, "di": {},
	"du": {}, "la": {}, "le": {}, "del": {}, "dos": {},
}

// NormalizeName collapses whitespace and fixes the case of names typed all
// lower or all upper case. Words that already mix case ("McDonald") are
// kept as written. Hyphenated parts are handled separately
// ("anna-lena" -> "Anna-Lena") and particles such as "von" stay lower case
// unless they are the whole name.
func NormalizeName(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(words) > 1 && isParticle(w) {
			words[i] = strings.ToLower(w)
			continue
		}
		parts := strings.Split(w, "-")
		for j, p := range parts {
			parts[j] = titleWord(p)
		}
		words[i] = strings.Join(parts, "-")
	}
	return strings.Join(words, " ")
}

func isParticle(w string) bool {
	if !isSingleCase(w) {
		return false
	}
	_, ok := nameParticles[strings.ToLower(w)]
	return ok
}

// isSingleCase reports whether every letter of w has the same case.
func isSingleCase(w string) bool {
	return w == strings.ToLower(w) || w == strings.ToUpper(w)
}

func titleWord(w string) string {
	if !isSingleCase(w) {
		return w
	}
	runes := []rune(strings.ToLower(w))
	if len(runes) == 0 {
		return ""
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
