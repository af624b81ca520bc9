// Package algebra builds index-aware expression trees for equation codegen.
//
// Trees are composed from a closed set of operands:
//   - Number, Str, Bool: literals
//   - *SymbolRef: a registered entity indexed by a list of symbol.Index
//   - *Domain: an explicit ordered index tuple, used as a reduction domain
//   - *Expression: binary or unary operator node; conditions are Expressions
//     with OpWhere
//   - *Operation: a reduction (sum, prod, smin, smax) binding one or more
//     indices of its body
//   - *Call: an intrinsic function call such as ord(i) or sqrt(x)
//
// Operand is sealed: only types in this package implement it, so type
// switches over operands are exhaustive.
//
// Every node knows its free domain (indices still open to the caller) and
// its controlled domain (indices bound by enclosing reductions). Reindex
// substitutes the free domain of a tree, and Resolve computes the index
// lists for tensor contractions, asking a symbol.AliasGenerator for fresh
// aliases whenever an index would otherwise be reused.
//
// Trees are immutable once built. Reindex and Permute return new nodes and
// never mutate their input.
package algebra
