package review

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"gleaner/internal/catalog"
)

const maxKeyLength = 100

// slugify turns a program name into a key candidate: diacritics folded,
// quotes stripped, everything non-alphanumeric collapsed to underscores.
func slugify(name string) string {
	folded := foldDiacritics(strings.ToLower(strings.TrimSpace(name)))
	folded = strings.NewReplacer("'", "", "’", "", `"`, "").Replace(folded)

	var builder strings.Builder
	pendingUnderscore := false
	for _, r := range folded {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			if pendingUnderscore && builder.Len() > 0 {
				builder.WriteByte('_')
			}
			pendingUnderscore = false
			builder.WriteRune(r)
		} else {
			pendingUnderscore = true
		}
	}

	key := builder.String()
	if len(key) > maxKeyLength {
		key = strings.Trim(key[:maxKeyLength], "_")
	}
	return key
}

var diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func foldDiacritics(text string) string {
	folded, _, err := transform.String(diacriticFolder, text)
	if err != nil {
		return text
	}
	return folded
}

// uniqueProgramKey disambiguates a slug against the catalog with a numeric
// suffix on collision.
func uniqueProgramKey(ctx context.Context, cat catalog.Service, base string) (string, error) {
	if base == "" {
		base = "program"
	}

	key := base
	suffix := 2
	for {
		exists, err := cat.KeyExists(ctx, key)
		if err != nil {
			return "", err
		}
		if !exists {
			return key, nil
		}
		key = fmt.Sprintf("%s_%d", base, suffix)
		suffix++
	}
}
