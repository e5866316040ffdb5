package ast

// Condition represents a condition expression node.
type Condition interface {
	conditionNode()
}

// CompareOp is a comparison operator.
type CompareOp string

const (
	Eq        CompareOp = "=="
	NotEq     CompareOp = "!="
	Less      CompareOp = "<"
	LessEq    CompareOp = "<="
	Greater   CompareOp = ">"
	GreaterEq CompareOp = ">="
	Match     CompareOp = "=~"
	NotMatch  CompareOp = "!~"
	In        CompareOp = "in"
	NotIn     CompareOp = "not in"
)

// BoolOp is a binary logical operator.
type BoolOp string

const (
	And  BoolOp = "and"
	Or   BoolOp = "or"
	Xor  BoolOp = "xor"
	Nand BoolOp = "nand"
)

// Precedence returns the binding strength of op; higher binds tighter.
func (op BoolOp) Precedence() int {
	if op == And {
		return 2
	}
	return 1
}

// Comparison represents `left op right`. Comparisons do not chain.
type Comparison struct {
	Left  Condition
	Op    CompareOp
	Right Condition
}

func (Comparison) conditionNode() {}

// BooleanOp represents a binary logical operation. Chains nest to the left:
// a and b and c is BooleanOp{And, BooleanOp{And, a, b}, c}.
type BooleanOp struct {
	Op    BoolOp
	Left  Condition
	Right Condition
}

func (BooleanOp) conditionNode() {}

// Not negates its operand.
type Not struct {
	Operand Condition
}

func (Not) conditionNode() {}

// Group is a parenthesized expression.
type Group struct {
	Inner Condition
}

func (Group) conditionNode() {}

// Literal wraps a String, Number or Array value.
type Literal struct {
	Value Value
}

func (Literal) conditionNode() {}

// Regexp is a /pattern/ literal, with `\/` already unescaped.
type Regexp struct {
	Pattern string
}

func (Regexp) conditionNode() {}

// MethodCall represents name(arg, ...).
type MethodCall struct {
	Name string
	Args []Condition
}

func (MethodCall) conditionNode() {}
