// Package symbol provides the symbol registry used by the algebra engine.
//
// The registry is an arena of named entities (sets, aliases, parameters,
// variables, equations). Every entity gets a small integer ID at
// registration; IDs are never reused and entities are never removed.
//
// # Indices
//
// An Index identifies one dimension of a domain. It is either a reference
// to a set or alias (carrying its own ID and the ID of the base set it
// ultimately aliases) or a literal label such as "seattle" or "*".
// Because the base ID travels with the Index, SameBase is an integer
// comparison and does not need the registry.
//
// # Aliases
//
// AliasGenerator manufactures fresh aliases on demand for the contraction
// resolver. Names are derived from the requesting index:
//
//	i            -> AliasOfi_2 -> AliasOfi_3 -> ...
//	DenseDim3_1  -> DenseDim3_2 -> ...
//
// A request whose target name already exists returns the existing alias, so
// the same build sequence against a fresh registry yields the same names.
// Allocation is serialized by a mutex on the generator.
//
// Names and labels are NFC-normalized on entry so that identity never
// depends on the Unicode composition form used by the caller.
package symbol
