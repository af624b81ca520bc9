package algebra

import "github.com/roach88/eqgen/internal/symbol"

// Op is an expression operator.
type Op int

const (
	OpAdd Op = iota + 1
	OpSub
	OpMul
	OpDiv
	OpNeg // unary minus
	OpNot // unary logical not
	OpAnd
	OpOr
	OpXor
	OpLT
	OpGT
	OpLE
	OpGE
	OpEQ
	OpNE
	OpNonbinding // =n=, equation definitions only
	OpWhere      // condition: left $ (right)
	OpAssign     // statement: left = right;
	OpDefine     // statement: left .. right;
)

// String returns the operator as written in a plain (non-equation) context.
func (o Op) String() string {
	return o.Spelling(false)
}

// Spelling returns the operator token. Relations have two spellings: the
// equation form (=l=, =g=, =e=) used directly under an equation
// definition, and the comparison form (<=, >=, =) used everywhere else.
func (o Op) Spelling(equation bool) string {
	switch o {
	case OpAdd:
		return "+"
	case OpSub, OpNeg:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpNot:
		return "not"
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpXor:
		return "xor"
	case OpLT:
		return "<"
	case OpGT:
		return ">"
	case OpLE:
		if equation {
			return "=l="
		}
		return "<="
	case OpGE:
		if equation {
			return "=g="
		}
		return ">="
	case OpEQ:
		if equation {
			return "=e="
		}
		return "="
	case OpNE:
		return "ne"
	case OpNonbinding:
		return "=n="
	case OpWhere:
		return "$"
	case OpAssign:
		return "="
	case OpDefine:
		return ".."
	default:
		return "?"
	}
}

// IsUnary reports whether o takes only a right operand.
func (o Op) IsUnary() bool { return o == OpNeg || o == OpNot }

// IsRelation reports whether o may appear as the relation of an equation
// definition.
func (o Op) IsRelation() bool {
	return o == OpLE || o == OpGE || o == OpEQ || o == OpNonbinding
}

// IsStatement reports whether o terminates a statement.
func (o Op) IsStatement() bool { return o == OpAssign || o == OpDefine }

// Expression is an operator node. Left is nil for unary operators.
type Expression struct {
	Left  Operand
	Op    Op
	Right Operand
}

func binary(l Operand, op Op, r Operand) *Expression {
	return &Expression{Left: l, Op: op, Right: r}
}

// Add returns l + r.
func Add(l, r Operand) *Expression { return binary(l, OpAdd, r) }

// Sub returns l - r.
func Sub(l, r Operand) *Expression { return binary(l, OpSub, r) }

// Mul returns l * r.
func Mul(l, r Operand) *Expression { return binary(l, OpMul, r) }

// Div returns l / r.
func Div(l, r Operand) *Expression { return binary(l, OpDiv, r) }

// Neg returns -x.
func Neg(x Operand) *Expression { return &Expression{Op: OpNeg, Right: x} }

// Not returns not x.
func Not(x Operand) *Expression { return &Expression{Op: OpNot, Right: x} }

// And returns l and r.
func And(l, r Operand) *Expression { return binary(l, OpAnd, r) }

// Or returns l or r.
func Or(l, r Operand) *Expression { return binary(l, OpOr, r) }

// Xor returns l xor r.
func Xor(l, r Operand) *Expression { return binary(l, OpXor, r) }

// Lt returns l < r.
func Lt(l, r Operand) *Expression { return binary(l, OpLT, r) }

// Gt returns l > r.
func Gt(l, r Operand) *Expression { return binary(l, OpGT, r) }

// Le returns l <= r, spelled =l= in equation definitions.
func Le(l, r Operand) *Expression { return binary(l, OpLE, r) }

// Ge returns l >= r, spelled =g= in equation definitions.
func Ge(l, r Operand) *Expression { return binary(l, OpGE, r) }

// Eq returns l == r, spelled =e= in equation definitions.
func Eq(l, r Operand) *Expression { return binary(l, OpEQ, r) }

// Ne returns l ne r.
func Ne(l, r Operand) *Expression { return binary(l, OpNE, r) }

// Nonbinding returns the free-row relation l =n= r.
func Nonbinding(l, r Operand) *Expression { return binary(l, OpNonbinding, r) }

// Where attaches condition cond to x.
func Where(x, cond Operand) *Expression { return binary(x, OpWhere, cond) }

// IsCondition reports whether x is a conditioned node.
func IsCondition(x Operand) bool {
	e, ok := x.(*Expression)
	return ok && e.Op == OpWhere
}

// Assign builds the assignment statement lhs = rhs.
//
// The left side must be a parameter, a set, a variable attribute such as
// x.l(i), or a conditioned form of one of those.
func Assign(lhs, rhs Operand) (*Expression, error) {
	target := lhs
	if e, ok := lhs.(*Expression); ok && e.Op == OpWhere {
		target = e.Left
	}
	ref, ok := target.(*SymbolRef)
	if !ok {
		return nil, newValidationError(ErrCodeUsage, "assignment target must be a symbol, got %s", kindOf(target))
	}
	switch {
	case ref.Kind == symbol.KindParameter, ref.Kind == symbol.KindSet:
	case ref.Kind == symbol.KindVariable && ref.Attr != "":
	case ref.Kind == symbol.KindEquation && ref.Attr != "":
	default:
		return nil, newValidationError(ErrCodeUsage, "cannot assign to %s %q", ref.Kind, ref.Name)
	}
	if rhs == nil {
		return nil, newValidationError(ErrCodeUsage, "assignment to %q has no right-hand side", ref.Name)
	}
	return binary(lhs, OpAssign, rhs), nil
}

// Define builds the equation definition eq .. rel.
//
// The left side must reference an equation, optionally conditioned; the
// right side must be a relation (Le, Ge, Eq or Nonbinding).
func Define(eq, rel Operand) (*Expression, error) {
	target := eq
	if e, ok := eq.(*Expression); ok && e.Op == OpWhere {
		target = e.Left
	}
	ref, ok := target.(*SymbolRef)
	if !ok || ref.Kind != symbol.KindEquation || ref.Attr != "" {
		return nil, newValidationError(ErrCodeUsage, "definition target must be an equation, got %s", kindOf(target))
	}
	r, ok := rel.(*Expression)
	if !ok || !r.Op.IsRelation() {
		return nil, newValidationError(ErrCodeUsage, "definition of %q requires a relation (=l=, =g=, =e=, =n=), got %s", ref.Name, kindOf(rel))
	}
	return binary(eq, OpDefine, rel), nil
}

// kindOf names an operand for error messages.
func kindOf(x Operand) string {
	switch v := x.(type) {
	case nil:
		return "nothing"
	case Number:
		return "number"
	case Str:
		return "string"
	case Bool:
		return "bool"
	case *SymbolRef:
		return v.Kind.String() + " " + v.Name
	case *Domain:
		return "domain " + shape(v.indices)
	case *Expression:
		return "expression (" + v.Op.String() + ")"
	case *Operation:
		return string(v.Kind)
	case *Call:
		return "call " + v.Name
	default:
		return "unknown"
	}
}
