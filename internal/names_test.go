/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import "testing"

func TestNormalizeName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"anna", "Anna"},
		{"  ANNA   lena ", "Anna Lena"},
		{"anna-lena", "Anna-Lena"},
		{"jürgen", "Jürgen"},
		{"", ""},
		{"McDonald", "McDonald"},
		{"mcdonald", "Mcdonald"},
		{"DeLuca-SCHMIDT", "DeLuca-Schmidt"},
		{"von der Heide", "von der Heide"},
		{"von der HEYDE", "von der Heyde"},
		{"VON DER HEIDE", "von der Heide"},
		{"Von Der Heide", "Von Der Heide"},
		{"von", "Von"},
	}
	for _, c := range cases {
		if got := NormalizeName(c.in); got != c.want {
			t.Errorf("NormalizeName(%q) = %q; want %q", c.in, got, c.want)
		}
	}
}
