// Package slug turns free text into lowercase, hyphen-separated ASCII tokens
// suitable for URL paths.
package slug

import (
	"strings"

	"github.com/gosimple/unidecode"
	"golang.org/x/text/unicode/norm"
)

// 撇号直接删掉，不拆词：Sony's -> sonys
var apostrophes = strings.NewReplacer("'", "", "’", "", "`", "")

// Make transliterates s to ASCII (ł -> l, ß -> ss, æ -> ae, accents dropped),
// lower-cases it, and collapses every run of characters outside [a-z0-9] to a
// single hyphen.
func Make(s string) string {
	plain := apostrophes.Replace(s)
	plain = unidecode.Unidecode(norm.NFC.String(plain))
	plain = apostrophes.Replace(plain)

	var b strings.Builder
	b.Grow(len(plain))
	dash := false
	for _, r := range strings.ToLower(plain) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// ForItem builds the base slug from an item's name and asset tag; name may be
// empty, in which case only the tag is used.
func ForItem(name, placa string) string {
	if strings.TrimSpace(name) == "" {
		return Make(placa)
	}
	return Make(name + "-" + placa)
}
