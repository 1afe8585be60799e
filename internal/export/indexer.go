package export

import (
	"fmt"

	"github.com/vk/fmexport/internal/model"
	"github.com/vk/fmexport/internal/nomial"
	"github.com/vk/fmexport/internal/varkey"
)

// Slot is one positional variable.
type Slot struct {
	Position    int
	Key         *varkey.Key
	Placeholder *varkey.Key
}

// Index maps free variables to solver positions.
type Index struct {
	slots []Slot
	byKey map[*varkey.Key]int
}

// BuildIndex assigns positions 1..n to the keys not in pinned, in the
// order given. Pinned keys are skipped without consuming a position.
func BuildIndex(keys []*varkey.Key, pinned model.Substitutions) *Index {
	ix := &Index{byKey: make(map[*varkey.Key]int)}
	for _, k := range keys {
		if pinned.Has(k) {
			continue
		}
		if _, dup := ix.byKey[k]; dup {
			continue
		}
		pos := len(ix.slots) + 1
		ix.slots = append(ix.slots, Slot{Position: pos, Key: k, Placeholder: varkey.Placeholder(pos)})
		ix.byKey[k] = pos
	}
	return ix
}

// Len returns the number of free variables.
func (ix *Index) Len() int { return len(ix.slots) }

// Slots returns the slots in position order.
func (ix *Index) Slots() []Slot {
	out := make([]Slot, len(ix.slots))
	copy(out, ix.slots)
	return out
}

// Keys returns the free variable keys in position order.
func (ix *Index) Keys() []*varkey.Key {
	out := make([]*varkey.Key, len(ix.slots))
	for i, s := range ix.slots {
		out[i] = s.Key
	}
	return out
}

// KeyAt returns the variable at 1-based position p.
func (ix *Index) KeyAt(p int) (*varkey.Key, bool) {
	if p < 1 || p > len(ix.slots) {
		return nil, false
	}
	return ix.slots[p-1].Key, true
}

// Position returns the 1-based position of k.
func (ix *Index) Position(k *varkey.Key) (int, bool) {
	p, ok := ix.byKey[k]
	return p, ok
}

// Placeholder returns the placeholder key of position p.
func (ix *Index) Placeholder(p int) *varkey.Key {
	return ix.slots[p-1].Placeholder
}

// Substitution combines the pinned values and the placeholder renames into
// the single substitution applied to every expression.
func (ix *Index) Substitution(pinned model.Substitutions) nomial.Substitution {
	sub := make(nomial.Substitution, len(pinned)+len(ix.slots))
	for k, v := range pinned {
		sub[k] = nomial.Pinned(v)
	}
	for _, s := range ix.slots {
		sub[s.Key] = nomial.Renamed(s.Placeholder)
	}
	return sub
}

// Lookup returns the `x_<i>: <name>` table used to read results back.
func (ix *Index) Lookup() []string {
	out := make([]string, len(ix.slots))
	for i, s := range ix.slots {
		out[i] = fmt.Sprintf("x_%d: %s", s.Position, s.Key)
	}
	return out
}
