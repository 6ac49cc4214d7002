package treesitter

import (
	"strings"

	"github.com/panbanda/stepdown/pkg/ast"
	"github.com/panbanda/stepdown/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// scope maps variable names to their declared type text.
type scope map[string]string

// locals collects the variables declared anywhere in a method body. Block
// structure is flattened; the first declaration of a name wins.
func (c *memberCollector) locals(body *sitter.Node) scope {
	s := make(scope)
	if body == nil {
		return s
	}

	declare := func(name, typ *sitter.Node) {
		if name == nil || typ == nil {
			return
		}
		key := c.text(name)
		if _, ok := s[key]; !ok {
			s[key] = normalizeType(c.text(typ))
		}
	}

	parser.WalkTyped(body, c.result.Source, func(node *sitter.Node, nodeType string, source []byte) bool {
		switch nodeType {
		case "class_body":
			return false
		case "local_variable_declaration":
			typ := node.ChildByFieldName("type")
			for i := range int(node.NamedChildCount()) {
				if d := node.NamedChild(i); d.Type() == "variable_declarator" {
					declare(d.ChildByFieldName("name"), typ)
				}
			}
		case "enhanced_for_statement", "formal_parameter", "resource":
			declare(node.ChildByFieldName("name"), node.ChildByFieldName("type"))
		case "catch_formal_parameter":
			if ct := parser.ChildOfType(node, "catch_type"); ct != nil {
				declare(node.ChildByFieldName("name"), ct)
			}
		}
		return true
	})
	return s
}

// resolve binds each pending invocation to a method declared in the
// collector's type. Calls through a receiver other than this, and calls
// with no matching declaration, stay unbound.
func (c *memberCollector) resolve() {
	byName := make(map[string][]*ast.MethodDecl)
	for _, m := range c.decl.Members {
		switch {
		case m.Kind == ast.MemberMethod && m.Method != nil && !m.Method.Constructor:
			byName[m.Method.Name] = append(byName[m.Method.Name], m.Method)
		case m.Kind == ast.MemberEnumConstant:
			c.fields[m.Name] = c.decl.Name
		}
	}

	r := &resolver{typeName: c.decl.Name, methods: byName, fields: c.fields, text: c.text}
	for _, call := range c.calls {
		if call.inv.Qualifier == ast.QualifierOther {
			continue
		}
		target := r.lookup(call.inv.Name, argNodes(call.args), call.local)
		if target == nil {
			continue
		}
		call.inv.Binding = &ast.Binding{
			DeclaringType: c.decl.Name,
			Name:          target.Name,
			ParamTypes:    target.ParamTypes(),
		}
	}
}

type resolver struct {
	typeName string
	methods  map[string][]*ast.MethodDecl
	fields   scope
	text     func(*sitter.Node) string
}

// lookup picks the declaration an invocation most plausibly targets:
// candidates are filtered by arity, then ranked by how well the inferred
// argument types fit. Ties go to the earliest declaration.
func (r *resolver) lookup(name string, args []*sitter.Node, local scope) *ast.MethodDecl {
	var candidates []*ast.MethodDecl
	for _, m := range r.methods[name] {
		if arityMatches(m, len(args)) {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) <= 1 {
		if len(candidates) == 0 {
			return nil
		}
		return candidates[0]
	}

	argTypes := make([]string, len(args))
	for i, a := range args {
		argTypes[i] = r.infer(a, local)
	}

	var best *ast.MethodDecl
	bestScore := -1
	for _, m := range candidates {
		score, ok := fitScore(m, argTypes)
		if ok && score > bestScore {
			best, bestScore = m, score
		}
	}
	if best == nil {
		return candidates[0]
	}
	return best
}

func arityMatches(m *ast.MethodDecl, args int) bool {
	n := len(m.Params)
	if n > 0 && m.Params[n-1].Variadic {
		return args >= n-1
	}
	return args == n
}

func fitScore(m *ast.MethodDecl, argTypes []string) (int, bool) {
	score := 0
	for i, arg := range argTypes {
		idx := min(i, len(m.Params)-1)
		s := compatibility(arg, m.Params[idx].Type)
		if s < 0 {
			return 0, false
		}
		score += s
	}
	// A fixed-arity match beats a varargs expansion.
	if n := len(m.Params); n == 0 || !m.Params[n-1].Variadic {
		score++
	}
	return score, true
}

func (r *resolver) infer(n *sitter.Node, local scope) string {
	switch n.Type() {
	case "decimal_integer_literal", "hex_integer_literal", "octal_integer_literal", "binary_integer_literal":
		if strings.HasSuffix(strings.ToLower(r.text(n)), "l") {
			return "long"
		}
		return "int"
	case "decimal_floating_point_literal", "hex_floating_point_literal":
		if strings.HasSuffix(strings.ToLower(r.text(n)), "f") {
			return "float"
		}
		return "double"
	case "true", "false":
		return "boolean"
	case "character_literal":
		return "char"
	case "string_literal", "text_block":
		return "String"
	case "this":
		return r.typeName
	case "identifier":
		name := r.text(n)
		if t, ok := local[name]; ok {
			return baseType(t)
		}
		return baseType(r.fields[name])
	case "field_access":
		if obj := n.ChildByFieldName("object"); obj != nil && obj.Type() == "this" {
			return baseType(r.fields[r.text(n.ChildByFieldName("field"))])
		}
	case "object_creation_expression", "cast_expression":
		return baseType(r.text(n.ChildByFieldName("type")))
	case "parenthesized_expression":
		if n.NamedChildCount() > 0 {
			return r.infer(n.NamedChild(0), local)
		}
	case "method_invocation":
		if n.ChildByFieldName("object") == nil {
			return r.returnType(r.text(n.ChildByFieldName("name")))
		}
	}
	return ""
}

// returnType is known only when every overload of name agrees on it.
func (r *resolver) returnType(name string) string {
	var ret string
	for i, m := range r.methods[name] {
		if i > 0 && m.ReturnType != ret {
			return ""
		}
		ret = m.ReturnType
	}
	return baseType(ret)
}

func argNodes(list *sitter.Node) []*sitter.Node {
	if list == nil {
		return nil
	}
	var out []*sitter.Node
	for i := range int(list.NamedChildCount()) {
		child := list.NamedChild(i)
		switch child.Type() {
		case "line_comment", "block_comment":
			continue
		}
		out = append(out, child)
	}
	return out
}

var boxes = map[string]string{
	"boolean": "Boolean",
	"byte":    "Byte",
	"char":    "Character",
	"short":   "Short",
	"int":     "Integer",
	"long":    "Long",
	"float":   "Float",
	"double":  "Double",
}

var wideningRank = map[string]int{
	"byte":   1,
	"short":  2,
	"char":   2,
	"int":    3,
	"long":   4,
	"float":  5,
	"double": 6,
}

// compatibility scores how well an argument of type arg fits a parameter
// declared as param: 3 exact, 2 boxing or widening, 1 unknown argument or
// Object parameter, 0 possible subtype, -1 impossible.
func compatibility(arg, param string) int {
	p := baseType(param)
	switch {
	case arg == "":
		return 1
	case arg == p:
		return 3
	case boxes[arg] == p || boxes[p] == arg:
		return 2
	}

	ra, aPrim := wideningRank[arg]
	rp, pPrim := wideningRank[p]
	if aPrim && pPrim {
		if ra < rp && !(arg == "char" && p == "short") {
			return 2
		}
		return -1
	}
	if p == "Object" {
		return 1
	}
	if isValueType(arg) && isValueType(p) {
		return -1
	}
	return 0
}

func isValueType(t string) bool {
	if t == "String" {
		return true
	}
	if _, ok := boxes[t]; ok {
		return true
	}
	for _, boxed := range boxes {
		if boxed == t {
			return true
		}
	}
	return false
}

// baseType strips generic arguments and package qualification.
func baseType(t string) string {
	if i := strings.IndexByte(t, '<'); i >= 0 {
		rest := t[strings.LastIndexByte(t, '>')+1:]
		t = t[:i] + rest
	}
	if i := strings.LastIndexByte(t, '.'); i >= 0 && !strings.HasSuffix(t, "...") {
		t = t[i+1:]
	}
	return strings.TrimSpace(t)
}
