package catalog

import (
	"errors"
	"sort"
	"strings"

	"partsbot/internal/util"
)

var (
	ErrEmptyQuery = errors.New("empty query")
	ErrNotFound   = errors.New("part not found")
)

// Search tiers, reported with every result.
const (
	TierExact    = "exact"
	TierIndex    = "index"
	TierFallback = "fallback"
	TierNone     = "none"
)

type Result struct {
	Tier  string
	Items []Item
}

// Search runs the lookup chain: exact code match, then the token index, then
// a squashed substring scan. The first tier with hits wins.
func (s *Snapshot) Search(q string) (Result, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return Result{}, ErrEmptyQuery
	}

	if rows := s.searchExact(q); len(rows) > 0 {
		return Result{Tier: TierExact, Items: s.items(rows)}, nil
	}

	if rows := s.searchIndex(q); len(rows) > 0 {
		s.rank(rows, q)
		return Result{Tier: TierIndex, Items: s.items(rows)}, nil
	}

	if rows := s.searchFallback(q); len(rows) > 0 {
		return Result{Tier: TierFallback, Items: s.items(rows)}, nil
	}

	return Result{Tier: TierNone}, nil
}

func (s *Snapshot) items(rows []int) []Item {
	out := make([]Item, 0, len(rows))
	for _, r := range rows {
		out = append(out, s.entries[r].Item)
	}
	return out
}

func (s *Snapshot) searchExact(q string) []int {
	key := util.NormCode(q)
	if key == "" {
		return nil
	}
	tiers := []func(e entry) string{
		func(e entry) string { return e.codeKey },
		func(e entry) string { return e.partKey },
		func(e entry) string { return e.oemKey },
	}
	for _, col := range tiers {
		var rows []int
		for i, e := range s.entries {
			if col(e) == key {
				rows = append(rows, i)
			}
		}
		if len(rows) > 0 {
			return rows
		}
	}
	return nil
}

// searchIndex intersects the posting lists when every query word is known and
// unions them otherwise.
func (s *Snapshot) searchIndex(q string) []int {
	var keys []string
	for _, w := range util.Words(q) {
		if k := util.SearchKey(w); k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil
	}

	all := true
	for _, k := range keys {
		if _, ok := s.tokens[k]; !ok {
			all = false
			break
		}
	}

	hits := map[int]struct{}{}
	if all {
		for row := range s.tokens[keys[0]] {
			hits[row] = struct{}{}
		}
		for _, k := range keys[1:] {
			for row := range hits {
				if _, ok := s.tokens[k][row]; !ok {
					delete(hits, row)
				}
			}
		}
	}
	if len(hits) == 0 {
		for _, k := range keys {
			for row := range s.tokens[k] {
				hits[row] = struct{}{}
			}
		}
	}

	rows := make([]int, 0, len(hits))
	for row := range hits {
		rows = append(rows, row)
	}
	sort.Ints(rows)
	return rows
}

func (s *Snapshot) searchFallback(q string) []int {
	qsq := util.Squash(q)
	if qsq == "" {
		return nil
	}
	var rows []int
	for i, e := range s.entries {
		if strings.Contains(e.squashed, qsq) {
			rows = append(rows, i)
		}
	}
	return rows
}

func (s *Snapshot) rank(rows []int, q string) {
	tokens := strings.Fields(strings.ToLower(q))
	qsq := util.Squash(q)
	scores := make(map[int]int, len(rows))
	for _, r := range rows {
		scores[r] = relevance(s.entries[r], tokens, qsq)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if scores[a] != scores[b] {
			return scores[a] > scores[b]
		}
		return len(s.entries[a].Card.Code) < len(s.entries[b].Card.Code)
	})
}

func relevance(e entry, tokens []string, qsq string) int {
	if len(tokens) == 0 {
		return 0
	}
	code := strings.ToLower(e.Card.Code)
	name := strings.ToLower(e.Card.Name)
	typ := strings.ToLower(e.Card.Type)

	score := 0
	for _, t := range tokens {
		if strings.Contains(code, t) {
			score += 5
		}
		if strings.Contains(name, t) {
			score += 3
		}
		if strings.Contains(typ, t) {
			score += 2
		}
		if strings.Contains(e.brand, t) {
			score += 2
		}
	}
	if qsq != "" && strings.Contains(e.squashed, qsq) {
		score += 10
	}
	if e.codeKey != "" && e.codeKey == util.NormCode(strings.Join(tokens, " ")) {
		score += 100
	}
	return score
}
