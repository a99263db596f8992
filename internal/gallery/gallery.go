// Package gallery holds the ordered photo payloads of one listing. Position 0
// is the designated cover and changes implicitly whenever an item is inserted
// at or removed from the front. Each instance is exclusively owned by one
// request lifecycle; mutation sites never overlap, so there is no internal
// locking.
package gallery

import (
	"fmt"

	"github.com/rafaelqm/imovia/internal/common"
)

type Gallery struct {
	items []string
}

// New builds a gallery from payloads already in selection order.
func New(payloads ...string) *Gallery {
	g := &Gallery{items: make([]string, len(payloads))}
	copy(g.items, payloads)
	return g
}

func (g *Gallery) Len() int {
	return len(g.items)
}

// Items returns a copy in gallery order.
func (g *Gallery) Items() []string {
	out := make([]string, len(g.items))
	copy(out, g.items)
	return out
}

// Cover returns the payload at position 0, if any.
func (g *Gallery) Cover() (string, bool) {
	if len(g.items) == 0 {
		return "", false
	}
	return g.items[0], true
}

// Append adds payloads at the end, preserving their relative order.
func (g *Gallery) Append(payloads ...string) {
	g.items = append(g.items, payloads...)
}

// Insert places payload at index i, shifting later items right. Inserting at
// 0 makes the payload the new cover.
func (g *Gallery) Insert(i int, payload string) error {
	if i < 0 || i > len(g.items) {
		return fmt.Errorf("%w: insert index %d out of range [0,%d]", common.ErrInvalidInput, i, len(g.items))
	}
	g.items = append(g.items, "")
	copy(g.items[i+1:], g.items[i:])
	g.items[i] = payload
	return nil
}

// Remove drops the item at index i. Removing index 0 promotes the next item
// to cover.
func (g *Gallery) Remove(i int) error {
	if i < 0 || i >= len(g.items) {
		return fmt.Errorf("%w: remove index %d out of range [0,%d)", common.ErrInvalidInput, i, len(g.items))
	}
	g.items = append(g.items[:i], g.items[i+1:]...)
	return nil
}

// Promote moves the item at index i to position 0, making it the cover.
func (g *Gallery) Promote(i int) error {
	if i < 0 || i >= len(g.items) {
		return fmt.Errorf("%w: promote index %d out of range [0,%d)", common.ErrInvalidInput, i, len(g.items))
	}
	if i == 0 {
		return nil
	}
	item := g.items[i]
	copy(g.items[1:i+1], g.items[:i])
	g.items[0] = item
	return nil
}
