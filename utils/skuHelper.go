package utils

import (
	"fmt"
	"math/rand"
	"strings"
)

const skuPrefix = "AR"

// GenerateSku builds a human-friendly SKU label from an item name,
// e.g. "Ayam Goreng" -> "AR-AGOR-042".
//
// The name part takes the first letter of the first word plus the first three
// characters of the second word; a single-word name contributes its first four
// characters. Short parts are right-padded with "X". The trailing three digits
// are random: this is a convenience label, not a uniqueness-guaranteed key.
func GenerateSku(name string) string {
	return fmt.Sprintf("%s-%s-%03d", skuPrefix, skuNamePart(name), rand.Intn(1000))
}

func skuNamePart(name string) string {
	// Only ASCII letters and digits may reach the label; accented letters
	// and punctuation in item names ("D'Crepes", "És Krim") are stripped,
	// and a word emptied by stripping is dropped entirely.
	var words []string
	for _, word := range strings.Fields(name) {
		if filtered := asciiAlnum(word); filtered != "" {
			words = append(words, filtered)
		}
	}

	var part string
	switch {
	case len(words) >= 2:
		part = firstChars(words[0], 1) + firstChars(words[1], 3)
	case len(words) == 1:
		part = firstChars(words[0], 4)
	}
	for len(part) < 4 {
		part += "X"
	}
	return strings.ToUpper(part)
}

func asciiAlnum(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func firstChars(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
