package textmatch

import (
	"regexp"
	"sort"
	"strings"
)

// tokenSplitPattern matches non-alphanumeric character sequences for tokenization.
var tokenSplitPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Ratio returns character-level similarity between two strings in [0, 1],
// computed from indel distance (insertions and deletions only). Identical
// strings score 1.0; strings with no common subsequence score 0.0.
func Ratio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	runesA := []rune(a)
	runesB := []rune(b)
	total := len(runesA) + len(runesB)
	if total == 0 {
		return 1.0
	}
	lcs := longestCommonSubsequence(runesA, runesB)
	distance := total - 2*lcs
	return 1.0 - float64(distance)/float64(total)
}

// TokenSetRatio returns order-insensitive similarity between two strings in
// [0, 1]. Both inputs are tokenized and deduplicated; the score is the best
// ratio among the sorted intersection and each side's intersection+remainder,
// which makes "Syracuse Roof Grant" and "Roof Grant Syracuse" score 1.0.
func TokenSetRatio(a, b string) float64 {
	tokensA := tokenSet(a)
	tokensB := tokenSet(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		if len(tokensA) == 0 && len(tokensB) == 0 {
			return 1.0
		}
		return 0.0
	}

	var common, onlyA, onlyB []string
	for token := range tokensA {
		if _, ok := tokensB[token]; ok {
			common = append(common, token)
		} else {
			onlyA = append(onlyA, token)
		}
	}
	for token := range tokensB {
		if _, ok := tokensA[token]; !ok {
			onlyB = append(onlyB, token)
		}
	}
	sort.Strings(common)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	// One side fully contained in the other is a perfect set match.
	if len(common) > 0 && (len(onlyA) == 0 || len(onlyB) == 0) {
		return 1.0
	}

	base := strings.Join(common, " ")
	combinedA := joinNonEmpty(base, strings.Join(onlyA, " "))
	combinedB := joinNonEmpty(base, strings.Join(onlyB, " "))

	best := Ratio(combinedA, combinedB)
	if len(common) > 0 {
		if score := Ratio(base, combinedA); score > best {
			best = score
		}
		if score := Ratio(base, combinedB); score > best {
			best = score
		}
	}
	return best
}

// Tokenize splits text into lowercase alphanumeric tokens.
func Tokenize(text string) []string {
	lowered := strings.ToLower(text)
	raw := tokenSplitPattern.Split(lowered, -1)
	tokens := make([]string, 0, len(raw))
	for _, token := range raw {
		if token == "" {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

func tokenSet(text string) map[string]struct{} {
	tokens := Tokenize(text)
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}

func longestCommonSubsequence(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
