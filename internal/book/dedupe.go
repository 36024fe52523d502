package book

import (
	"slices"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// titleDistanceRatio is the largest edit distance, relative to the longer
// title, at which two titles by the same author count as one work.
const titleDistanceRatio = 0.15

// Dedupe drops repeated ids and near-identical editions of the same work,
// keeping the first occurrence.
func Dedupe(books []Book) []Book {
	out := make([]Book, 0, len(books))
	seen := make(map[string]struct{}, len(books))
	keys := make([]string, 0, len(books))

	for _, b := range books {
		if _, ok := seen[b.ID]; ok {
			continue
		}
		key := normalizeTitle(b.Title)
		dup := false
		for i, kept := range out {
			if sameWork(key, keys[i], b.FirstAuthor(), kept.FirstAuthor()) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		seen[b.ID] = struct{}{}
		out = append(out, b)
		keys = append(keys, key)
	}
	return out
}

// sameWork needs a known, matching first author. Titles that differ in any
// number (series volumes, editions by year) are distinct works.
func sameWork(titleA, titleB, authorA, authorB string) bool {
	authorA, authorB = strings.TrimSpace(authorA), strings.TrimSpace(authorB)
	if authorA == "" || !strings.EqualFold(authorA, authorB) {
		return false
	}
	if titleA == titleB {
		return true
	}
	if !slices.Equal(numbers(titleA), numbers(titleB)) {
		return false
	}
	longest := max(len([]rune(titleA)), len([]rune(titleB)))
	if longest == 0 {
		return false
	}
	d := levenshtein.ComputeDistance(titleA, titleB)
	return float64(d)/float64(longest) <= titleDistanceRatio
}

// numbers returns the digit runs of a normalised title in order.
func numbers(title string) []string {
	return strings.FieldsFunc(title, func(r rune) bool { return !unicode.IsDigit(r) })
}

func normalizeTitle(title string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			space = false
		case !space && b.Len() > 0:
			b.WriteRune(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}
