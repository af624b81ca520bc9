package algebra

import "github.com/roach88/eqgen/internal/symbol"

// Func returns a call to an arbitrary intrinsic. The result's domain is
// the union of its arguments' domains.
func Func(name string, args ...Operand) *Call {
	return &Call{Name: name, Args: append([]Operand(nil), args...)}
}

// Ord returns ord(x), the position of the current element of x.
func Ord(x symbol.Index) *Call { return Func("ord", SetRef(x)) }

// Card returns card(x), the number of elements of x. The result is scalar.
func Card(x symbol.Index) *Call {
	return &Call{Name: "card", Args: []Operand{SetRef(x)}, scalar: true}
}

// SameAs returns sameAs(a, b).
func SameAs(a, b Operand) *Call { return Func("sameAs", a, b) }

// Sqr returns sqr(x).
func Sqr(x Operand) *Call { return Func("sqr", x) }

// Sqrt returns sqrt(x).
func Sqrt(x Operand) *Call { return Func("sqrt", x) }

// Exp returns exp(x).
func Exp(x Operand) *Call { return Func("exp", x) }

// Log returns log(x).
func Log(x Operand) *Call { return Func("log", x) }

// Abs returns abs(x).
func Abs(x Operand) *Call { return Func("abs", x) }

// Power returns power(x, n) for integer exponents.
func Power(x Operand, n int) *Call { return Func("power", x, Number(n)) }

// RPower returns rPower(x, y) for real exponents.
func RPower(x, y Operand) *Call { return Func("rPower", x, y) }

// Min returns min(args...).
func Min(args ...Operand) *Call { return Func("min", args...) }

// Max returns max(args...).
func Max(args ...Operand) *Call { return Func("max", args...) }

// IfThen returns ifThen(cond, a, b).
func IfThen(cond, a, b Operand) *Call { return Func("ifThen", cond, a, b) }
