package catalog

import (
	"strings"
	"time"

	"partsbot/internal"
	"partsbot/internal/fields"
	"partsbot/internal/util"
)

// Item is one catalog row together with its resolved card.
type Item struct {
	Row    int
	Record internal.Record
	Card   internal.Card
}

type entry struct {
	Item
	brand    string
	codeKey  string
	partKey  string
	oemKey   string
	squashed string
}

// Snapshot is an immutable view of the inventory and its indexes. Records
// inside it must not be modified by callers.
type Snapshot struct {
	Source   string
	LoadedAt time.Time

	entries   []entry
	tokens    map[string]map[int]struct{}
	images    map[string][]string
	imageURLs []string
	byCode    map[string]int
}

func BuildSnapshot(records []internal.Record, table fields.AliasTable, source string, loadedAt time.Time) *Snapshot {
	s := &Snapshot{
		Source:   source,
		LoadedAt: loadedAt,
		entries:  make([]entry, 0, len(records)),
		tokens:   map[string]map[int]struct{}{},
		images:   map[string][]string{},
		byCode:   map[string]int{},
	}

	for i, r := range records {
		card := fields.BuildCard(r, table)
		brand := strings.ToLower(fields.ResolveField(r, []string{internal.ColOEM, "brand", "марка"}, ""))
		e := entry{
			Item:    Item{Row: i, Record: r, Card: card},
			brand:   brand,
			codeKey: util.NormCode(card.Code),
			partKey: util.NormCode(card.PartNumber),
			oemKey:  util.NormCode(card.OEMNumber),
		}
		e.squashed = util.Squash(card.Code + card.Name + card.Type + brand)
		s.entries = append(s.entries, e)

		if code := strings.ToLower(strings.TrimSpace(card.Code)); code != "" {
			if _, ok := s.byCode[code]; !ok {
				s.byCode[code] = i
			}
		}

		for _, v := range []string{card.Type, card.Name, brand, card.Manufacturer} {
			s.addWords(v, i)
		}
		for _, v := range []string{card.Code, card.PartNumber, card.OEMNumber} {
			s.addKey(util.NormCode(v), i)
			s.addWords(v, i)
		}

		s.addImage(card.ImageURL)
	}

	return s
}

func (s *Snapshot) addKey(key string, row int) {
	if key == "" {
		return
	}
	if _, ok := s.tokens[key]; !ok {
		s.tokens[key] = map[int]struct{}{}
	}
	s.tokens[key][row] = struct{}{}
}

func (s *Snapshot) addWords(value string, row int) {
	for _, w := range util.Words(value) {
		s.addKey(util.SearchKey(w), row)
	}
}

func (s *Snapshot) addImage(raw string) {
	url := strings.TrimSpace(raw)
	if url == "" {
		return
	}
	s.imageURLs = append(s.imageURLs, url)

	tokens := imageTokens(url)
	for _, tok := range tokens {
		if len(tok) >= 3 {
			s.images[tok] = append(s.images[tok], url)
		}
	}
	if joined := strings.Join(tokens, ""); len(joined) >= 3 && len(tokens) > 1 {
		s.images[joined] = append(s.images[joined], url)
	}
}

// imageTokens returns the normalized tokens of the file name in an image URL
// with query string and extension dropped.
func imageTokens(url string) []string {
	name := strings.ToLower(strings.TrimSpace(url))
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "?"); i >= 0 {
		name = name[:i]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[:i]
	}
	var out []string
	for _, tok := range util.Tokenize(name) {
		if key := util.NormCode(tok); key != "" {
			out = append(out, key)
		}
	}
	return out
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

func (s *Snapshot) IndexSize() (tokens, images int) {
	return len(s.tokens), len(s.images)
}

// Records returns the snapshot rows in source order.
func (s *Snapshot) Records() []internal.Record {
	out := make([]internal.Record, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.Record)
	}
	return out
}

func (s *Snapshot) Item(row int) (Item, bool) {
	if row < 0 || row >= len(s.entries) {
		return Item{}, false
	}
	return s.entries[row].Item, true
}

// FindByCode matches the code column case-insensitively after trimming.
func (s *Snapshot) FindByCode(code string) (Item, bool) {
	row, ok := s.byCode[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		return Item{}, false
	}
	return s.entries[row].Item, true
}

// FindImage returns the first image URL whose file name carries the code.
func (s *Snapshot) FindImage(code string) string {
	key := util.NormCode(code)
	if key == "" {
		return ""
	}
	if urls := s.images[key]; len(urls) > 0 {
		return urls[0]
	}
	for _, url := range s.imageURLs {
		tokens := imageTokens(url)
		for _, tok := range tokens {
			if tok == key {
				return url
			}
		}
		if strings.Contains(strings.Join(tokens, ""), key) {
			return url
		}
	}
	return ""
}
