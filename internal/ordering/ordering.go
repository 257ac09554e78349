// Package ordering keeps the explicit sort numbers of a sibling group (the
// children of one category, or the dishes of one category) contiguous:
// after every operation the group is numbered Base, Base+1, ... without gaps
// or duplicates.
package ordering

import (
	"fmt"

	"github.com/fekuna/omnipos-menu-service/internal/model"
)

// Base is the number of the first element of a sibling group.
const Base = 1

// Item is one member of a sibling group in its current display order.
type Item struct {
	ID     string
	Number int
}

// Next returns the number an element appended to a group of size gets.
func Next(size int) int {
	return Base + size
}

// Renumber assigns Base.. to items in slice order and returns only the
// items whose number changed.
func Renumber(items []Item) []Item {
	var changed []Item
	for i, it := range items {
		want := Base + i
		if it.Number != want {
			changed = append(changed, Item{ID: it.ID, Number: want})
		}
	}
	return changed
}

// Without returns items minus the element with id, keeping order.
func Without(items []Item, id string) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}

// MoveTo moves the element with id to position number and returns the
// renumbering to apply. Elements between the old and the new position shift
// by one toward the vacated slot.
func MoveTo(items []Item, id string, number int) ([]Item, error) {
	if number < Base || number >= Base+len(items) {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", model.ErrOutOfRange, number, Base, Base+len(items)-1)
	}

	from := -1
	for i, it := range items {
		if it.ID == id {
			from = i
			break
		}
	}
	if from < 0 {
		return nil, fmt.Errorf("%w: %s is not in the sibling group", model.ErrNotFound, id)
	}

	to := number - Base
	moved := make([]Item, 0, len(items))
	moved = append(moved, items[:from]...)
	moved = append(moved, items[from+1:]...)
	moved = append(moved[:to], append([]Item{items[from]}, moved[to:]...)...)

	return Renumber(moved), nil
}
