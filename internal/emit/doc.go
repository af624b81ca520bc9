// Package emit serializes algebra trees and registry entities into the
// text of the destination equation language.
//
// Output is deterministic: the same tree always renders to the same bytes.
// Lines longer than the configured threshold are split before the
// operator, and negative literals are parenthesized wherever they appear as
// an operand.
package emit
