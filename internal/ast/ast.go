// Package ast defines the tagged tree nodes the generator builds and
// the emitter walks: compile units, modules, structs, functions,
// blocks, statements and every expression/operator/literal variant.
package ast

import "github.com/oxhq/movesmith/internal/types"

// CompileUnit is the top-level generated artifact: an ordered set of
// modules plus the list of qualified function names the harness should
// invoke via `//# run`.
type CompileUnit struct {
	Modules     []*Module
	RunTargets  []string // flattened, qualified names, in emission order
}

// Use is a module-level `use` declaration. The generator only ever
// inserts the single hardcoded vector-utility use named in the design
// notes.
type Use struct {
	Path string
}

// Constant is a module-level constant declaration.
type Constant struct {
	Name  string
	Type  types.Type
	Value string // pre-formatted literal text, e.g. "@0xCAFE"
}

// Module is name, uses, constants, structs (always preceding
// functions), and functions.
type Module struct {
	Name      string
	Uses      []Use
	Constants []*Constant
	Structs   []*StructDefinition
	Functions []*Function
}

// StructDefinition: name, ability set, type parameters, ordered
// fields.
type StructDefinition struct {
	Name           string
	Abilities      types.AbilitySet
	TypeParameters []types.Type // KTypeParameter entries
	Fields         []Field
}

// Field is one (name, type) pair of a struct.
type Field struct {
	Name string
	Type types.Type
}

// Visibility is a function's declared visibility.
type Visibility int

const (
	VisibilityPrivate Visibility = iota
	VisibilityPublic
	VisibilityFriend
)

// Param is one function parameter.
type Param struct {
	Name string
	Type types.Type
}

// FunctionSignature: inline flag, type parameters, name, parameter
// list, optional return type, and the acquires set (struct
// identifiers) computed by post-processing.
type FunctionSignature struct {
	Inline         bool
	TypeParameters []types.Type // KTypeParameter entries
	Name           string
	Params         []Param
	ReturnType     *types.Type // nil means no return value
	Acquires       []string    // struct names, filled in by post-process
}

// Function: visibility, signature, optional body (nil for a skeleton
// not yet filled).
type Function struct {
	Visibility Visibility
	Signature  FunctionSignature
	Body       *Block
	IsRunner   bool // synthesized zero-argument wrapper exposed via //# run
}

// Block: name (its own hidden scope identifier), ordered statements,
// optional tail-return expression. The block's type is the tail
// expression's type if present, else unit.
type Block struct {
	Name       string
	Statements []Statement
	Tail       Expression // nil means unit-typed
}

// Statement is a sum over declaration / bare expression / additional
// operation (resource or vector op dispersed among ordinary
// statements).
type Statement interface{ isStatement() }

// Declaration: `let name[: Type] = expr;`
type Declaration struct {
	Name         string
	Type         types.Type
	Value        Expression
	ShowTypeAnno bool // ~75% of declarations annotate the type
}

func (Declaration) isStatement() {}

// ExprStatement is a bare expression used for effect.
type ExprStatement struct {
	Value Expression
}

func (ExprStatement) isStatement() {}

// Expression is a sum over every expression-producing node.
type Expression interface{ isExpression() }

// NumberLiteral: `{value}{typ}`, e.g. "42u64".
type NumberLiteral struct {
	Value string
	Type  types.Type
}

func (NumberLiteral) isExpression() {}

// BoolLiteral: `true` / `false`.
type BoolLiteral struct{ Value bool }

func (BoolLiteral) isExpression() {}

// VariableAccess: a bare identifier reference.
type VariableAccess struct {
	Name string
	Type types.Type
}

func (VariableAccess) isExpression() {}

// FunctionCall: `name<TypeArgs>(args...)`.
type FunctionCall struct {
	Name     string
	TypeArgs []types.Type
	Args     []Expression
	Type     types.Type // the call's result type (unit if none)
}

func (FunctionCall) isExpression() {}

// StructPack: `Name<TypeArgs>{ field: expr, ... }`.
type StructPack struct {
	Name     string
	TypeArgs []types.Type
	Fields   []FieldInit
	Type     types.Type
}

// FieldInit is one field's initializer inside a StructPack.
type FieldInit struct {
	Name  string
	Value Expression
}

func (StructPack) isExpression() {}

// UnaryOperator enumerates the unary operators.
type UnaryOperator int

const (
	UnaryNot UnaryOperator = iota
	UnaryNegate
)

// UnaryOperation: `op expr`.
type UnaryOperation struct {
	Op    UnaryOperator
	Value Expression
}

func (UnaryOperation) isExpression() {}

// NumericalBinaryOperator enumerates the 14 arithmetic, bitwise and
// comparison operators.
type NumericalBinaryOperator int

const (
	OpAdd NumericalBinaryOperator = iota
	OpSub
	OpMul
	OpMod
	OpDiv
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
	OpLt
	OpGt
	OpLe
	OpGe
)

// BooleanBinaryOperator enumerates the two boolean connectives.
type BooleanBinaryOperator int

const (
	OpAnd BooleanBinaryOperator = iota
	OpOr
)

// EqualityBinaryOperator enumerates the two equality comparisons.
type EqualityBinaryOperator int

const (
	OpEq EqualityBinaryOperator = iota
	OpNeq
)

// BinaryOperatorKind tags which of the three operator families a
// BinaryOperation uses.
type BinaryOperatorKind int

const (
	BinaryNumerical BinaryOperatorKind = iota
	BinaryBoolean
	BinaryEquality
)

// BinaryOperation: `lhs op rhs`.
type BinaryOperation struct {
	Kind       BinaryOperatorKind
	Numerical  NumericalBinaryOperator
	Boolean    BooleanBinaryOperator
	Equality   EqualityBinaryOperator
	Lhs, Rhs   Expression
	ResultType types.Type
}

func (BinaryOperation) isExpression() {}

// IfExpr: `if (cond) { then } else { els }`, both branches typed to
// the same result type.
type IfExpr struct {
	Condition Expression
	Then      *Block
	Else      *Block
	Type      types.Type
}

func (IfExpr) isExpression() {}

// Reference: `&expr`.
type Reference struct {
	Value Expression
	Type  types.Type
}

func (Reference) isExpression() {}

// MutReference: `&mut expr`.
type MutReference struct {
	Value Expression
	Type  types.Type
}

func (MutReference) isExpression() {}

// Dereference: `*expr`.
type Dereference struct {
	Value Expression
	Type  types.Type
}

func (Dereference) isExpression() {}

// Return: `return expr`.
type Return struct {
	Value Expression
}

func (Return) isExpression() {}

// Abort: `abort code`.
type Abort struct {
	Code string
}

func (Abort) isExpression() {}

// ResourceOperationKind enumerates the five global-storage operations.
type ResourceOperationKind int

const (
	ResMoveTo ResourceOperationKind = iota
	ResMoveFrom
	ResBorrowGlobal
	ResBorrowGlobalMut
	ResExists
)

// ResourceOperation: one of move_to/move_from/borrow_global[_mut]/
// exists over a struct type with `key`.
type ResourceOperation struct {
	Kind       ResourceOperationKind
	StructType types.Type
	Address    Expression // the address argument (or &signer for move_to)
	Value      Expression // move_to's value argument; nil otherwise
	ResultType types.Type
}

func (ResourceOperation) isExpression() {}

// VectorLiteral has three forms: empty, singleton, and literal element
// list.
type VectorLiteralKind int

const (
	VectorEmpty VectorLiteralKind = iota
	VectorSingleton
	VectorList
)

// VectorLiteral: `vector[]` / `vector[e]` / `vector[e0, e1, ...]`.
type VectorLiteral struct {
	Kind     VectorLiteralKind
	Elements []Expression
	ElemType types.Type
}

func (VectorLiteral) isExpression() {}

// VectorOperationKind enumerates the 16 std::vector operations the
// generator can emit.
type VectorOperationKind int

const (
	VecPushBack VectorOperationKind = iota
	VecPopBack
	VecLength
	VecIsEmpty
	VecBorrow
	VecBorrowMut
	VecSwap
	VecReverse
	VecAppend
	VecContains
	VecIndexOf
	VecRemove
	VecSwapRemove
	VecFirst
	VecLast
	VecSingletonDestructure
)

// VectorOperation: a call into the primordial vector module.
type VectorOperation struct {
	Kind     VectorOperationKind
	Receiver Expression // the vector variable or literal
	Args     []Expression
	ElemType types.Type
	Type     types.Type // the operation's result type
}

func (VectorOperation) isExpression() {}

// Assignment: `name = expr`.
type Assignment struct {
	Name  string
	Value Expression
}

func (Assignment) isExpression() {}

// BlockExpr wraps a Block used in expression position (e.g. the body
// of an if-branch when nested directly as a value).
type BlockExpr struct {
	Value *Block
}

func (BlockExpr) isExpression() {}
