package storefront

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// LocalLine is one line of the anonymous cart as persisted under CartKey.
type LocalLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  uint      `json:"quantity"`
	Note      string    `json:"note,omitempty"`
}

func loadJSON(s Store, key string, out any) (bool, error) {
	b, ok, err := s.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func saveJSON(s Store, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(key, b)
}

func LoadLocalCart(s Store) ([]LocalLine, error) {
	var lines []LocalLine
	if _, err := loadJSON(s, CartKey, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func SaveLocalCart(s Store, lines []LocalLine) error {
	if lines == nil {
		lines = []LocalLine{}
	}
	return saveJSON(s, CartKey, lines)
}

// Coalesce merges lines for the same product: quantities are summed and the
// last non-empty note wins. Order of first appearance is kept.
func Coalesce(lines []LocalLine) []LocalLine {
	idx := make(map[uuid.UUID]int, len(lines))
	out := make([]LocalLine, 0, len(lines))
	for _, l := range lines {
		if l.Quantity == 0 {
			continue
		}
		i, ok := idx[l.ProductID]
		if !ok {
			idx[l.ProductID] = len(out)
			out = append(out, l)
			continue
		}
		out[i].Quantity += l.Quantity
		if l.Note != "" {
			out[i].Note = l.Note
		}
	}
	return out
}

func localView(lines []LocalLine) *Cart {
	cart := &Cart{Items: make([]CartLine, 0, len(lines))}
	for _, l := range Coalesce(lines) {
		cart.Items = append(cart.Items, CartLine{ProductID: l.ProductID, Quantity: l.Quantity, Note: l.Note})
		cart.ItemCount += l.Quantity
	}
	return cart
}
