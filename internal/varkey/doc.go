/*
Package varkey provides the identity type for model variables.

A Key names a variable by its submodel lineage, its name and an optional
vector index. Keys are compared by pointer: two keys that print the same are
still different variables, which keeps repeated names in different models
from colliding.

The canonical string form is a dot-separated path, e.g. `Wing.S` or
`Wing.chord[2]`. Parse turns that form into an Address which can be matched
against keys; this is how user-supplied names (solutions, guesses,
substitution overrides) are resolved.

Placeholder keys stand for the positional slot a free variable occupies in
exported solver code and print as `x(i)`.
*/
package varkey
