// Package book holds the opening book: canonical positions mapped to the
// opening that names them and the replies seen from them, each with a
// quality score from the mover's point of view.
package book

import (
	"sort"

	"ecobook/internal/line"
)

// InitialName labels the starting position in every emitted book.
const InitialName = "Initial position"

// Label names an opening.
type Label struct {
	ECO  string
	Name string
}

// Entry is one book position.
type Entry struct {
	ECO   string
	Name  string
	Moves *Moves

	// plies of the shortest line seen reaching this position
	lineLen int
}

func (e *Entry) Label() Label {
	return Label{ECO: e.ECO, Name: e.Name}
}

// Move is one reply and its quality.
type Move struct {
	UCI   string
	Score int
}

// Moves keeps replies in the order they were first seen.
type Moves struct {
	order  []string
	scores map[string]int
}

func newMoves() *Moves {
	return &Moves{scores: make(map[string]int)}
}

// Add records uci with score unless uci is already present. It reports
// whether the score was stored.
func (m *Moves) Add(uci string, score int) bool {
	if _, ok := m.scores[uci]; ok {
		return false
	}
	m.scores[uci] = score
	m.order = append(m.order, uci)
	return true
}

func (m *Moves) Get(uci string) (int, bool) {
	s, ok := m.scores[uci]
	return s, ok
}

func (m *Moves) Len() int {
	return len(m.order)
}

// List returns the replies in insertion order.
func (m *Moves) List() []Move {
	out := make([]Move, 0, len(m.order))
	for _, uci := range m.order {
		out = append(out, Move{UCI: uci, Score: m.scores[uci]})
	}
	return out
}

// Ranked returns the replies best first; ties keep insertion order.
func (m *Moves) Ranked() []Move {
	out := m.List()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// Book maps canonical position keys to entries, remembering the order in
// which positions were first seen.
type Book struct {
	order   []string
	entries map[string]*Entry
}

func New() *Book {
	return &Book{entries: make(map[string]*Entry)}
}

func (b *Book) Len() int {
	return len(b.order)
}

// Keys returns the position keys in first-seen order.
func (b *Book) Keys() []string {
	return append([]string(nil), b.order...)
}

func (b *Book) Entry(key string) (*Entry, bool) {
	e, ok := b.entries[key]
	return e, ok
}

// insert appends a new entry; key must not be present.
func (b *Book) insert(key string, e *Entry) {
	if e.Moves == nil {
		e.Moves = newMoves()
	}
	b.entries[key] = e
	b.order = append(b.order, key)
}

// observe records that a line of plies plies labelled label passes through
// key. The shortest line wins the label; on equal length the first one
// stays.
func (b *Book) observe(key string, label Label, plies int) *Entry {
	e, ok := b.entries[key]
	if !ok {
		e = &Entry{ECO: label.ECO, Name: label.Name, lineLen: plies}
		b.insert(key, e)
		return e
	}
	if plies < e.lineLen {
		e.lineLen = plies
		e.ECO = label.ECO
		e.Name = label.Name
	}
	return e
}

// Finalize relabels the starting position, which no opening begins at.
func (b *Book) Finalize() {
	e, ok := b.entries[line.InitialKey]
	if !ok {
		e = &Entry{}
		b.insert(line.InitialKey, e)
	}
	e.ECO = ""
	e.Name = InitialName
}
