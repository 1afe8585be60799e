package varkey

// PathSegment represents a single component of an address path, e.g., `name[index]`.
type PathSegment struct {
	Name  string
	Index int // -1 indicates no index is present.
}

// NewPathSegment creates a new path segment without an index.
func NewPathSegment(name string) PathSegment {
	return PathSegment{Name: name, Index: -1}
}

// NewPathSegmentWithIndex creates a new path segment that includes an index.
func NewPathSegmentWithIndex(name string, index int) PathSegment {
	return PathSegment{Name: name, Index: index}
}

// HasIndex returns true if the path segment has an explicit index.
func (ps PathSegment) HasIndex() bool {
	return ps.Index != -1
}

// Address is the parsed form of a variable name as a user writes it.
// All segments but the last name submodels; the last names the variable.
type Address struct {
	Path []PathSegment
}

// Key is the identity of one (scalar or vector element) model variable.
// Keys are always handled by pointer.
type Key struct {
	Name    string
	Index   int      // -1 for scalar variables.
	Lineage []string // submodel path below the root model.

	// Position is set only on placeholder keys and is 1-based.
	Position int

	Units string
	Label string
}

// New creates a scalar variable key.
func New(name string, lineage ...string) *Key {
	return &Key{Name: name, Index: -1, Lineage: lineage}
}

// NewIndexed creates the key for element index of vector variable name.
func NewIndexed(name string, index int, lineage ...string) *Key {
	return &Key{Name: name, Index: index, Lineage: lineage}
}

// Placeholder creates the positional placeholder for slot pos.
func Placeholder(pos int) *Key {
	if pos < 1 {
		panic("varkey: placeholder position must be positive")
	}
	return &Key{Name: "x", Index: -1, Position: pos}
}

// IsPlaceholder reports whether k is a positional placeholder.
func (k *Key) IsPlaceholder() bool {
	return k != nil && k.Position > 0
}
