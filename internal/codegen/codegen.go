// Package codegen walks a generated AST into transactional-test Move
// source text: one `//# publish` block per module, a `//# run` line
// per synthesized runner, and the fixed harness prologue/epilogue
// wrapped around them.
package codegen

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/oxhq/movesmith/internal/ast"
	"github.com/oxhq/movesmith/internal/types"
)

//go:embed prologue.move
var prologue string

//go:embed epilogue.move
var epilogue string

const indentUnit = "    "

type emitter struct {
	sb     strings.Builder
	indent int
}

func (e *emitter) line(format string, args ...any) {
	e.sb.WriteString(strings.Repeat(indentUnit, e.indent))
	e.sb.WriteString(fmt.Sprintf(format, args...))
	e.sb.WriteByte('\n')
}

// Emit renders a full compile unit: prologue, every module's publish
// block, every runner's run directive, epilogue.
func Emit(unit *ast.CompileUnit) string {
	e := &emitter{}
	e.sb.WriteString(prologue)
	e.sb.WriteByte('\n')

	for _, mod := range unit.Modules {
		e.emitModule(mod)
	}
	for _, target := range unit.RunTargets {
		e.line("//# run %s --signers 0xBEEF --gas-budget 100000", target)
	}

	e.sb.WriteString(epilogue)
	return e.sb.String()
}

func (e *emitter) emitModule(mod *ast.Module) {
	e.line("//# publish")
	e.line("module 0xCAFE::%s {", mod.Name)
	e.indent++

	for _, u := range mod.Uses {
		e.line("use %s;", u.Path)
	}
	for _, c := range mod.Constants {
		e.line("const %s: %s = %s;", c.Name, typeStr(c.Type), c.Value)
	}
	for _, sd := range mod.Structs {
		e.emitStruct(sd)
	}
	for _, fn := range mod.Functions {
		e.emitFunction(fn)
	}

	e.indent--
	e.line("}")
	e.sb.WriteByte('\n')
}

func (e *emitter) emitStruct(sd *ast.StructDefinition) {
	e.line("struct %s%s %s{", sd.Name, typeParamsStr(sd.TypeParameters), abilitiesClause(sd.Abilities))
	e.indent++
	for _, f := range sd.Fields {
		e.line("%s: %s,", f.Name, typeStr(f.Type))
	}
	e.indent--
	e.line("}")
}

func (e *emitter) emitFunction(fn *ast.Function) {
	visibility := ""
	if fn.Visibility == ast.VisibilityPublic {
		visibility = "public "
	}
	inline := ""
	if fn.Signature.Inline {
		inline = "inline "
	}

	var params []string
	for _, p := range fn.Signature.Params {
		params = append(params, fmt.Sprintf("%s: %s", p.Name, typeStr(p.Type)))
	}

	returnType := ""
	if fn.Signature.ReturnType != nil {
		returnType = ": " + typeStr(*fn.Signature.ReturnType)
	}

	acquires := ""
	if len(fn.Signature.Acquires) > 0 {
		acquires = " acquires " + strings.Join(fn.Signature.Acquires, ", ")
	}

	e.line("%s%sfun %s%s(%s)%s%s {", visibility, inline, fn.Signature.Name,
		typeParamsStr(fn.Signature.TypeParameters), strings.Join(params, ", "), returnType, acquires)
	e.indent++
	if fn.Body != nil {
		e.emitBlockBody(fn.Body)
	}
	e.indent--
	e.line("}")
}

// emitBlockBody writes a block's statements and tail expression at the
// current indentation, without the surrounding braces (the caller
// already opened/will close them) — used for function bodies, which
// always get their own indent level from the signature line.
func (e *emitter) emitBlockBody(b *ast.Block) {
	for _, stmt := range b.Statements {
		e.emitStatement(stmt)
	}
	if b.Tail != nil {
		e.line("%s", exprStr(b.Tail))
	}
}

func (e *emitter) emitStatement(s ast.Statement) {
	switch st := s.(type) {
	case ast.Declaration:
		anno := ""
		if st.ShowTypeAnno {
			anno = ": " + typeStr(st.Type)
		}
		e.line("let %s%s = %s;", st.Name, anno, exprStr(st.Value))
	case ast.ExprStatement:
		e.line("%s;", exprStr(st.Value))
	}
}

// exprStr renders an expression as a single self-contained string;
// Move's grammar doesn't care about whitespace, so nested blocks (used
// as expressions inside if/else) are flattened to a semicolon-joined
// one-liner rather than re-indented relative to their context.
func exprStr(e ast.Expression) string {
	switch v := e.(type) {
	case ast.NumberLiteral:
		return v.Value
	case ast.BoolLiteral:
		if v.Value {
			return "true"
		}
		return "false"
	case ast.VariableAccess:
		return v.Name
	case ast.FunctionCall:
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = exprStr(a)
		}
		return fmt.Sprintf("%s%s(%s)", v.Name, typeArgsStr(v.TypeArgs), strings.Join(args, ", "))
	case ast.StructPack:
		if len(v.Fields) == 0 {
			return fmt.Sprintf("%s%s {}", v.Name, typeArgsStr(v.TypeArgs))
		}
		fields := make([]string, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = fmt.Sprintf("%s: %s", f.Name, exprStr(f.Value))
		}
		return fmt.Sprintf("%s%s { %s }", v.Name, typeArgsStr(v.TypeArgs), strings.Join(fields, ", "))
	case ast.UnaryOperation:
		op := "!"
		if v.Op == ast.UnaryNegate {
			op = "-"
		}
		return fmt.Sprintf("%s(%s)", op, exprStr(v.Value))
	case ast.BinaryOperation:
		return fmt.Sprintf("(%s %s %s)", exprStr(v.Lhs), binaryOpSymbol(v), exprStr(v.Rhs))
	case ast.IfExpr:
		s := fmt.Sprintf("if (%s) %s", exprStr(v.Condition), blockFlat(v.Then))
		if v.Else != nil {
			s += " else " + blockFlat(v.Else)
		}
		return s
	case ast.Reference:
		return fmt.Sprintf("&(%s)", exprStr(v.Value))
	case ast.MutReference:
		return fmt.Sprintf("&mut (%s)", exprStr(v.Value))
	case ast.Dereference:
		return fmt.Sprintf("*(%s)", exprStr(v.Value))
	case ast.Return:
		if v.Value == nil {
			return "(return)"
		}
		return fmt.Sprintf("(return %s)", exprStr(v.Value))
	case ast.Abort:
		return fmt.Sprintf("(abort %s)", v.Code)
	case ast.ResourceOperation:
		return resourceOpStr(v)
	case ast.VectorLiteral:
		return vectorLiteralStr(v)
	case ast.VectorOperation:
		return vectorOperationStr(v)
	case ast.Assignment:
		return fmt.Sprintf("%s = %s", v.Name, exprStr(v.Value))
	case ast.BlockExpr:
		return blockFlat(v.Value)
	default:
		return "()"
	}
}

func blockFlat(b *ast.Block) string {
	if b == nil || (len(b.Statements) == 0 && b.Tail == nil) {
		return "{}"
	}
	var parts []string
	for _, s := range b.Statements {
		switch st := s.(type) {
		case ast.Declaration:
			anno := ""
			if st.ShowTypeAnno {
				anno = ": " + typeStr(st.Type)
			}
			parts = append(parts, fmt.Sprintf("let %s%s = %s;", st.Name, anno, exprStr(st.Value)))
		case ast.ExprStatement:
			parts = append(parts, exprStr(st.Value)+";")
		}
	}
	if b.Tail != nil {
		parts = append(parts, exprStr(b.Tail))
	}
	return "{ " + strings.Join(parts, " ") + " }"
}

func binaryOpSymbol(v ast.BinaryOperation) string {
	switch v.Kind {
	case ast.BinaryNumerical:
		switch v.Numerical {
		case ast.OpAdd:
			return "+"
		case ast.OpSub:
			return "-"
		case ast.OpMul:
			return "*"
		case ast.OpMod:
			return "%"
		case ast.OpDiv:
			return "/"
		case ast.OpBitAnd:
			return "&"
		case ast.OpBitOr:
			return "|"
		case ast.OpBitXor:
			return "^"
		case ast.OpShl:
			return "<<"
		case ast.OpShr:
			return ">>"
		case ast.OpLt:
			return "<"
		case ast.OpGt:
			return ">"
		case ast.OpLe:
			return "<="
		case ast.OpGe:
			return ">="
		}
	case ast.BinaryBoolean:
		if v.Boolean == ast.OpOr {
			return "||"
		}
		return "&&"
	case ast.BinaryEquality:
		if v.Equality == ast.OpNeq {
			return "!="
		}
		return "=="
	}
	return "=="
}

func resourceOpStr(v ast.ResourceOperation) string {
	call := map[ast.ResourceOperationKind]string{
		ast.ResMoveTo:          "move_to",
		ast.ResMoveFrom:        "move_from",
		ast.ResBorrowGlobal:    "borrow_global",
		ast.ResBorrowGlobalMut: "borrow_global_mut",
		ast.ResExists:          "exists",
	}[v.Kind]

	if v.Kind == ast.ResMoveTo {
		return fmt.Sprintf("%s<%s>(%s, %s)", call, typeStr(v.StructType), exprStr(v.Address), exprStr(v.Value))
	}
	return fmt.Sprintf("%s<%s>(%s)", call, typeStr(v.StructType), exprStr(v.Address))
}

func vectorLiteralStr(v ast.VectorLiteral) string {
	if v.Kind == ast.VectorEmpty {
		return fmt.Sprintf("vector<%s>[]", typeStr(v.ElemType))
	}
	elems := make([]string, len(v.Elements))
	for i, el := range v.Elements {
		elems[i] = exprStr(el)
	}
	return "vector[" + strings.Join(elems, ", ") + "]"
}

var vectorOpNames = map[ast.VectorOperationKind]string{
	ast.VecPushBack:             "push_back",
	ast.VecPopBack:              "pop_back",
	ast.VecLength:               "length",
	ast.VecIsEmpty:              "is_empty",
	ast.VecBorrow:               "borrow",
	ast.VecBorrowMut:            "borrow_mut",
	ast.VecSwap:                 "swap",
	ast.VecReverse:              "reverse",
	ast.VecAppend:               "append",
	ast.VecContains:             "contains",
	ast.VecIndexOf:              "index_of",
	ast.VecRemove:               "remove",
	ast.VecSwapRemove:           "swap_remove",
	ast.VecFirst:                "first",
	ast.VecLast:                 "last",
	ast.VecSingletonDestructure: "singleton",
}

func vectorOperationStr(v ast.VectorOperation) string {
	name := vectorOpNames[v.Kind]
	args := make([]string, 0, len(v.Args)+1)
	args = append(args, "&mut "+exprStr(v.Receiver))
	for _, a := range v.Args {
		args = append(args, exprStr(a))
	}
	return fmt.Sprintf("vector::%s<%s>(%s)", name, typeStr(v.ElemType), strings.Join(args, ", "))
}

func typeStr(t types.Type) string {
	switch t.Kind {
	case types.KU8:
		return "u8"
	case types.KU16:
		return "u16"
	case types.KU32:
		return "u32"
	case types.KU64:
		return "u64"
	case types.KU128:
		return "u128"
	case types.KU256:
		return "u256"
	case types.KBool:
		return "bool"
	case types.KAddress:
		return "address"
	case types.KSigner:
		return "signer"
	case types.KVector:
		return fmt.Sprintf("vector<%s>", typeStr(*t.Inner))
	case types.KRef:
		return "&" + typeStr(*t.Inner)
	case types.KMutRef:
		return "&mut " + typeStr(*t.Inner)
	case types.KTuple:
		parts := make([]string, len(t.Tuple))
		for i, e := range t.Tuple {
			parts[i] = typeStr(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case types.KStruct:
		return t.Name
	case types.KStructConcrete:
		parts := make([]string, len(t.TypeArgs))
		for i, a := range t.TypeArgs {
			parts[i] = typeStr(a)
		}
		return fmt.Sprintf("%s<%s>", t.Name, strings.Join(parts, ", "))
	case types.KTypeParameter:
		return t.Name
	default:
		return "?"
	}
}

func typeParamsStr(tps []types.Type) string {
	if len(tps) == 0 {
		return ""
	}
	parts := make([]string, len(tps))
	for i, tp := range tps {
		phantom := ""
		if tp.IsPhantom {
			phantom = "phantom "
		}
		abilities := ""
		if names := orderedAbilities(tp.Abilities); len(names) > 0 {
			abilities = ": " + strings.Join(names, " + ")
		}
		parts[i] = fmt.Sprintf("%s%s%s", phantom, tp.Name, abilities)
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

func typeArgsStr(args []types.Type) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = typeStr(a)
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

// abilityOrder is the canonical, deterministic ordering abilities are
// always emitted in: map iteration order is randomized per-process,
// which would break determinism (the same input producing
// different output text across runs).
var abilityOrder = []types.Ability{types.AbilityCopy, types.AbilityDrop, types.AbilityStore, types.AbilityKey}

func orderedAbilities(set types.AbilitySet) []string {
	var names []string
	for _, a := range abilityOrder {
		if set.Has(a) {
			names = append(names, a.String())
		}
	}
	return names
}

func abilitiesClause(abilities types.AbilitySet) string {
	names := orderedAbilities(abilities)
	if len(names) == 0 {
		return ""
	}
	return "has " + strings.Join(names, ", ") + " "
}
