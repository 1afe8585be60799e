package varkey

import (
	"fmt"
	"reflect"
	"strings"
)

// String serializes the Key into its canonical path form. Placeholders
// print as `x(i)`.
func (k *Key) String() string {
	if k == nil {
		return ""
	}
	if k.IsPlaceholder() {
		return fmt.Sprintf("%s(%d)", k.Name, k.Position)
	}
	return k.Address().String()
}

// Address returns the path form of k.
func (k *Key) Address() *Address {
	addr := &Address{Path: make([]PathSegment, 0, len(k.Lineage)+1)}
	for _, m := range k.Lineage {
		addr.Path = append(addr.Path, NewPathSegment(m))
	}
	addr.Path = append(addr.Path, PathSegment{Name: k.Name, Index: k.Index})
	return addr
}

// Less orders keys for deterministic factor ordering: placeholders by
// position first, then everything else by canonical string.
func Less(a, b *Key) bool {
	switch {
	case a.IsPlaceholder() && b.IsPlaceholder():
		return a.Position < b.Position
	case a.IsPlaceholder():
		return true
	case b.IsPlaceholder():
		return false
	}
	as, bs := a.String(), b.String()
	if as != bs {
		return as < bs
	}
	return a.Index < b.Index
}

// String serializes the Address into its canonical path string representation.
func (a *Address) String() string {
	if a == nil {
		return ""
	}
	var sb strings.Builder
	for i, segment := range a.Path {
		if i > 0 {
			sb.WriteRune('.')
		}
		sb.WriteString(segment.Name)
		if segment.HasIndex() {
			sb.WriteString(fmt.Sprintf("[%d]", segment.Index))
		}
	}
	return sb.String()
}

// Equal checks for deep equality between two Address pointers.
func (a *Address) Equal(other *Address) bool {
	if a == nil || other == nil {
		return a == other
	}
	return reflect.DeepEqual(a.Path, other.Path)
}

// Matches reports whether the address names key k.
func (a *Address) Matches(k *Key) bool {
	if a == nil || k == nil || k.IsPlaceholder() {
		return false
	}
	return a.Equal(k.Address())
}

// Find returns the single key in keys that raw names.
func Find(keys []*Key, raw string) (*Key, error) {
	addr, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	var found *Key
	for _, k := range keys {
		if !addr.Matches(k) {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("variable %q is ambiguous", raw)
		}
		found = k
	}
	if found == nil {
		return nil, fmt.Errorf("unknown variable %q", raw)
	}
	return found, nil
}
