package artifacts

import (
	"context"
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
)

// tokenSeparators splits file names, categories, and payload keys into
// searchable tokens.
const tokenSeparators = "/_-.:() "

// Tokenize lower-cases text and splits it on the separator set, dropping
// tokens shorter than two characters.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return strings.ContainsRune(tokenSeparators, r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if len(f) >= 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// addToken records id under token, creating the bitmap lazily.
func addToken(index map[string]*roaring.Bitmap, token string, id uint32) {
	bm := index[token]
	if bm == nil {
		bm = roaring.New()
		index[token] = bm
	}
	bm.Add(id)
}

// Search returns artifacts matching every query token, newest first,
// optionally filtered by category. An empty query matches everything.
func (s *Store) Search(ctx context.Context, query, category string, limit int) ([]Artifact, error) {
	terms := Tokenize(query)
	if len(terms) == 0 {
		return s.Recent(ctx, category, limit)
	}

	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var acc *roaring.Bitmap
	for _, term := range terms {
		bm := s.tokens[term]
		if bm == nil {
			return nil, nil
		}
		if acc == nil {
			acc = bm.Clone()
		} else {
			acc.And(bm)
		}
		if acc.IsEmpty() {
			return nil, nil
		}
	}

	matched := make([]Artifact, 0, acc.GetCardinality())
	it := acc.Iterator()
	for it.HasNext() {
		a := s.artifacts[it.Next()]
		if category == "" || a.Category == category || strings.HasPrefix(a.Category, category+"/") {
			matched = append(matched, a)
		}
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].Modified.After(matched[j].Modified) })
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}
