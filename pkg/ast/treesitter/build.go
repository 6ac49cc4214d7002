package treesitter

import (
	"strings"

	"github.com/panbanda/stepdown/pkg/ast"
	"github.com/panbanda/stepdown/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

var typeKinds = map[string]ast.TypeKind{
	"class_declaration":           ast.TypeClass,
	"interface_declaration":       ast.TypeInterface,
	"enum_declaration":            ast.TypeEnum,
	"record_declaration":          ast.TypeRecord,
	"annotation_type_declaration": ast.TypeAnnotation,
}

// builder converts a tree-sitter Java tree into an ast.Unit.
type builder struct {
	result *parser.ParseResult
}

func build(result *parser.ParseResult) *ast.Unit {
	b := &builder{result: result}
	unit := &ast.Unit{Path: result.Path, Source: result.Source}

	root := result.Tree.RootNode()
	for i := range int(root.NamedChildCount()) {
		child := root.NamedChild(i)
		if _, ok := typeKinds[child.Type()]; ok {
			unit.Types = append(unit.Types, b.typeDecl(child))
		}
	}
	return unit
}

func (b *builder) text(n *sitter.Node) string {
	return parser.GetNodeText(n, b.result.Source)
}

func (b *builder) pos(n *sitter.Node) ast.Position {
	p := n.StartPoint()
	return ast.Position{
		File:   b.result.Path,
		Line:   int(p.Row) + 1,
		Column: int(p.Column) + 1,
		Offset: int(n.StartByte()),
	}
}

func (b *builder) typeDecl(node *sitter.Node) *ast.TypeDecl {
	t := &ast.TypeDecl{
		Name:      b.text(node.ChildByFieldName("name")),
		Kind:      typeKinds[node.Type()],
		Modifiers: b.modifiers(node),
		Pos:       b.pos(node),
	}

	body := node.ChildByFieldName("body")
	if body == nil {
		return t
	}
	t.BodyStart = int(body.StartByte()) + 1
	t.BodyEnd = int(body.EndByte()) - 1

	c := &memberCollector{builder: b, decl: t, fields: make(scope)}
	c.recordComponents(node.ChildByFieldName("parameters"))
	c.collect(body)
	c.resolve()
	if !t.SyntaxErrors {
		t.SyntaxErrors = strayErrors(node, t.Members)
	}
	return t
}

// strayErrors reports error or missing nodes under n that no malformed
// member encloses, such as a broken type header.
func strayErrors(n *sitter.Node, members []*ast.Member) bool {
	if n == nil || !n.HasError() {
		return false
	}
	if n.Type() == "ERROR" || n.IsMissing() {
		start, end := int(n.StartByte()), int(n.EndByte())
		for _, m := range members {
			if m.Malformed && m.Start <= start && end <= m.End {
				return false
			}
		}
		return true
	}
	for i := range int(n.ChildCount()) {
		if strayErrors(n.Child(i), members) {
			return true
		}
	}
	return false
}

func (b *builder) modifiers(n *sitter.Node) ast.Modifiers {
	mods := parser.ChildOfType(n, "modifiers")
	if mods == nil {
		return 0
	}
	var out ast.Modifiers
	for i := range int(mods.ChildCount()) {
		out |= ast.ParseModifier(mods.Child(i).Type())
	}
	return out
}

// pendingCall is an invocation waiting for binding resolution, which can
// only happen once every method of the type is known.
type pendingCall struct {
	inv   *ast.Invocation
	args  *sitter.Node
	local scope
}

// memberCollector gathers the members of one type body and attaches
// surrounding comments to them.
type memberCollector struct {
	*builder
	decl    *ast.TypeDecl
	fields  scope
	calls   []pendingCall
	pending []*sitter.Node
	last    *ast.Member
	lastRow uint32
}

func (c *memberCollector) collect(body *sitter.Node) {
	for i := range int(body.ChildCount()) {
		child := body.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "line_comment", "block_comment":
			c.comment(child)
		case "enum_body_declarations":
			c.collect(child)
		case "ERROR":
			c.decl.SyntaxErrors = true
		default:
			if child.IsMissing() {
				c.decl.SyntaxErrors = true
				continue
			}
			if member := c.member(child); member != nil {
				c.add(child, member)
			}
		}
	}
}

func (c *memberCollector) comment(n *sitter.Node) {
	// A comment that starts on the line a member ends on trails that member.
	if c.last != nil && len(c.pending) == 0 && n.StartPoint().Row == c.lastRow {
		c.last.End = int(n.EndByte())
		return
	}
	c.pending = append(c.pending, n)
}

func (c *memberCollector) add(n *sitter.Node, m *ast.Member) {
	m.Start = int(n.StartByte())
	if len(c.pending) > 0 {
		m.Start = int(c.pending[0].StartByte())
		c.pending = nil
	}
	m.End = int(n.EndByte())
	m.Pos = c.pos(n)
	m.Malformed = parser.IsMalformed(n)

	c.decl.Members = append(c.decl.Members, m)
	c.last = m
	c.lastRow = n.EndPoint().Row
}

func (c *memberCollector) member(n *sitter.Node) *ast.Member {
	switch n.Type() {
	case "method_declaration":
		method := c.method(n, false)
		return &ast.Member{Kind: ast.MemberMethod, Name: method.Name, Method: method}
	case "annotation_type_element_declaration":
		method := c.method(n, false)
		return &ast.Member{Kind: ast.MemberAnnotationElement, Name: method.Name, Method: method}
	case "constructor_declaration", "compact_constructor_declaration":
		method := c.method(n, true)
		if method.Name == "" {
			method.Name = c.decl.Name
		}
		return &ast.Member{Kind: ast.MemberMethod, Name: method.Name, Method: method}
	case "field_declaration", "constant_declaration":
		field := c.field(n)
		return &ast.Member{Kind: ast.MemberField, Name: strings.Join(field.Names, ", "), Field: field}
	case "static_initializer":
		init := &ast.Initializer{Static: true, Pos: c.pos(n)}
		init.Invocations = c.invocations(parser.ChildOfType(n, "block"), nil)
		return &ast.Member{Kind: ast.MemberInitializer, Initializer: init}
	case "block":
		init := &ast.Initializer{Pos: c.pos(n)}
		init.Invocations = c.invocations(n, nil)
		return &ast.Member{Kind: ast.MemberInitializer, Initializer: init}
	case "enum_constant":
		return &ast.Member{Kind: ast.MemberEnumConstant, Name: c.text(n.ChildByFieldName("name"))}
	}

	if _, ok := typeKinds[n.Type()]; ok {
		nested := c.typeDecl(n)
		return &ast.Member{Kind: ast.MemberType, Name: nested.Name, Type: nested}
	}
	return nil
}

func (c *memberCollector) method(n *sitter.Node, constructor bool) *ast.MethodDecl {
	m := &ast.MethodDecl{
		Name:        c.text(n.ChildByFieldName("name")),
		Modifiers:   c.modifiers(n),
		Constructor: constructor,
		Pos:         c.pos(n),
	}
	if !constructor {
		m.ReturnType = normalizeType(c.text(n.ChildByFieldName("type")))
	}
	m.Params = c.params(n.ChildByFieldName("parameters"))

	body := n.ChildByFieldName("body")
	local := c.locals(body)
	for _, p := range m.Params {
		local[p.Name] = p.Type
	}
	m.Invocations = c.invocations(body, local)
	return m
}

func (c *memberCollector) params(list *sitter.Node) []ast.Param {
	if list == nil {
		return nil
	}

	var params []ast.Param
	for i := range int(list.NamedChildCount()) {
		p := list.NamedChild(i)
		switch p.Type() {
		case "formal_parameter":
			params = append(params, ast.Param{
				Name: c.text(p.ChildByFieldName("name")),
				Type: normalizeType(c.text(p.ChildByFieldName("type"))),
			})
		case "spread_parameter":
			params = append(params, c.spreadParam(p))
		}
	}
	return params
}

// spreadParam handles T... name, recording the element type.
func (c *memberCollector) spreadParam(p *sitter.Node) ast.Param {
	param := ast.Param{Variadic: true}
	for i := range int(p.NamedChildCount()) {
		child := p.NamedChild(i)
		switch child.Type() {
		case "modifiers":
		case "variable_declarator":
			param.Name = c.text(child.ChildByFieldName("name"))
		default:
			if param.Type == "" {
				param.Type = normalizeType(c.text(child))
			}
		}
	}
	return param
}

func (c *memberCollector) field(n *sitter.Node) *ast.FieldDecl {
	f := &ast.FieldDecl{
		Type:      normalizeType(c.text(n.ChildByFieldName("type"))),
		Modifiers: c.modifiers(n),
		Pos:       c.pos(n),
	}
	for i := range int(n.NamedChildCount()) {
		decl := n.NamedChild(i)
		if decl.Type() != "variable_declarator" {
			continue
		}
		name := c.text(decl.ChildByFieldName("name"))
		f.Names = append(f.Names, name)
		if _, ok := c.fields[name]; !ok {
			c.fields[name] = f.Type
		}
		f.Invocations = append(f.Invocations, c.invocations(decl.ChildByFieldName("value"), nil)...)
	}
	return f
}

// recordComponents registers record header components as fields.
func (c *memberCollector) recordComponents(list *sitter.Node) {
	for _, p := range c.params(list) {
		c.fields[p.Name] = p.Type
	}
}

// invocations collects method invocations in pre-order. Anonymous class
// bodies and local type declarations belong to other types and are skipped.
func (c *memberCollector) invocations(body *sitter.Node, local scope) []*ast.Invocation {
	if body == nil {
		return nil
	}

	var out []*ast.Invocation
	parser.WalkTyped(body, c.result.Source, func(node *sitter.Node, nodeType string, source []byte) bool {
		switch nodeType {
		case "class_body":
			return false
		case "method_invocation":
			inv := c.invocation(node)
			out = append(out, inv)
			c.calls = append(c.calls, pendingCall{inv: inv, args: node.ChildByFieldName("arguments"), local: local})
		default:
			if _, ok := typeKinds[nodeType]; ok {
				return false
			}
		}
		return true
	})
	return out
}

func (c *memberCollector) invocation(n *sitter.Node) *ast.Invocation {
	inv := &ast.Invocation{
		Name: c.text(n.ChildByFieldName("name")),
		Pos:  c.pos(n),
	}
	switch object := n.ChildByFieldName("object"); {
	case object == nil:
		inv.Qualifier = ast.QualifierNone
	case object.Type() == "this":
		inv.Qualifier = ast.QualifierThis
	default:
		inv.Qualifier = ast.QualifierOther
	}
	inv.Args = len(argNodes(n.ChildByFieldName("arguments")))
	return inv
}

// normalizeType collapses whitespace in a type's source text so that
// equivalent spellings such as "int []" and "int[]" compare equal.
func normalizeType(s string) string {
	s = strings.Join(strings.Fields(s), " ")

	var b strings.Builder
	var last byte
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch == ' ' && (strings.IndexByte("[.<", last) >= 0 || strings.IndexByte("[].<>,", s[i+1]) >= 0) {
			continue
		}
		b.WriteByte(ch)
		last = ch
	}
	return b.String()
}
