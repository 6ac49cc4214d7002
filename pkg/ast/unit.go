package ast

import "strings"

// Unit is one parsed compilation unit.
type Unit struct {
	Path   string
	Source []byte
	Types  []*TypeDecl
}

// TopLevel returns the first named top-level type declaration, or nil.
func (u *Unit) TopLevel() *TypeDecl {
	if u == nil {
		return nil
	}
	for _, t := range u.Types {
		if t != nil && t.Name != "" {
			return t
		}
	}
	return nil
}

// TypeKind distinguishes the kinds of type declarations.
type TypeKind string

const (
	TypeClass      TypeKind = "class"
	TypeInterface  TypeKind = "interface"
	TypeEnum       TypeKind = "enum"
	TypeRecord     TypeKind = "record"
	TypeAnnotation TypeKind = "annotation"
)

// TypeDecl is a class, interface, enum, record or annotation type.
type TypeDecl struct {
	Name      string
	Kind      TypeKind
	Modifiers Modifiers
	Members   []*Member
	Pos       Position

	// BodyStart and BodyEnd delimit the text between the braces.
	BodyStart int
	BodyEnd   int

	// SyntaxErrors is set when the body holds error nodes outside any member.
	SyntaxErrors bool
}

// Malformed reports syntax errors in the body that no member encloses.
// Such a type cannot be reordered safely.
func (t *TypeDecl) Malformed() bool {
	return t.SyntaxErrors
}

// MalformedMembers returns the members holding syntax errors.
func (t *TypeDecl) MalformedMembers() []*Member {
	var out []*Member
	for _, m := range t.Members {
		if m.Malformed {
			out = append(out, m)
		}
	}
	return out
}

// HasSyntaxErrors reports whether the body or any member contains errors.
func (t *TypeDecl) HasSyntaxErrors() bool {
	return t.Malformed() || len(t.MalformedMembers()) > 0
}

// Methods returns the method and constructor declarations in source order.
func (t *TypeDecl) Methods() []*MethodDecl {
	var out []*MethodDecl
	for _, m := range t.Members {
		if m.Kind == MemberMethod && m.Method != nil {
			out = append(out, m.Method)
		}
	}
	return out
}

// MemberKind is the syntactic kind of a type member.
type MemberKind int

const (
	MemberMethod MemberKind = iota
	MemberField
	MemberInitializer
	MemberType
	MemberEnumConstant
	MemberAnnotationElement
)

var memberKindNames = map[MemberKind]string{
	MemberMethod:            "method",
	MemberField:             "field",
	MemberInitializer:       "initializer",
	MemberType:              "type",
	MemberEnumConstant:      "enum constant",
	MemberAnnotationElement: "annotation element",
}

func (k MemberKind) String() string {
	if s, ok := memberKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Member is one body declaration of a type. Start and End delimit the
// text that moves with the member, including leading comments. A Malformed
// member never moves.
type Member struct {
	Kind      MemberKind
	Name      string
	Start     int
	End       int
	Pos       Position
	Malformed bool

	Method      *MethodDecl
	Field       *FieldDecl
	Initializer *Initializer
	Type        *TypeDecl
}

// IsConstructor reports whether the member is a constructor declaration.
func (m *Member) IsConstructor() bool {
	return m.Kind == MemberMethod && m.Method != nil && m.Method.Constructor
}

// IsStatic reports whether the member carries the static modifier.
func (m *Member) IsStatic() bool {
	switch {
	case m.Method != nil:
		return m.Method.Modifiers.Has(ModStatic)
	case m.Field != nil:
		return m.Field.Modifiers.Has(ModStatic)
	case m.Initializer != nil:
		return m.Initializer.Static
	case m.Type != nil:
		return m.Type.Modifiers.Has(ModStatic)
	}
	return false
}

// Param is one formal parameter.
type Param struct {
	Name     string
	Type     string
	Variadic bool
}

// MethodDecl is a method or constructor declaration.
type MethodDecl struct {
	Name        string
	Params      []Param
	ReturnType  string
	Modifiers   Modifiers
	Constructor bool
	Pos         Position
	Invocations []*Invocation
}

// ParamTypes returns the declared parameter type texts.
func (m *MethodDecl) ParamTypes() []string {
	types := make([]string, len(m.Params))
	for i, p := range m.Params {
		types[i] = p.Type
	}
	return types
}

// Initializer is a static or instance initializer block.
type Initializer struct {
	Static      bool
	Pos         Position
	Invocations []*Invocation
}

// FieldDecl is a field declaration; one declaration may name several variables.
type FieldDecl struct {
	Names       []string
	Type        string
	Modifiers   Modifiers
	Pos         Position
	Invocations []*Invocation
}

// Qualifier describes the receiver expression of an invocation.
type Qualifier int

const (
	// QualifierNone is an unqualified call such as foo().
	QualifierNone Qualifier = iota
	// QualifierThis is a call through a bare this. receiver.
	QualifierThis
	// QualifierOther is any other receiver, including super.
	QualifierOther
)

// Binding identifies the method an invocation resolved to.
type Binding struct {
	DeclaringType string
	Name          string
	ParamTypes    []string
}

// Invocation is a method call found inside a member body.
type Invocation struct {
	Name      string
	Qualifier Qualifier
	Args      int
	Pos       Position
	// Binding is nil when the front-end could not resolve the callee.
	Binding *Binding
}

// Modifiers is a set of declaration modifiers.
type Modifiers uint16

const (
	ModPublic Modifiers = 1 << iota
	ModProtected
	ModPrivate
	ModStatic
	ModAbstract
	ModFinal
	ModSynchronized
	ModNative
	ModDefault
)

var modifierKeywords = map[string]Modifiers{
	"public":       ModPublic,
	"protected":    ModProtected,
	"private":      ModPrivate,
	"static":       ModStatic,
	"abstract":     ModAbstract,
	"final":        ModFinal,
	"synchronized": ModSynchronized,
	"native":       ModNative,
	"default":      ModDefault,
}

// ParseModifier maps a keyword to its modifier bit; unknown keywords map to 0.
func ParseModifier(keyword string) Modifiers {
	return modifierKeywords[keyword]
}

// Has reports whether all bits of m are set.
func (mods Modifiers) Has(m Modifiers) bool {
	return mods&m == m
}

// Access returns the access level implied by the modifiers.
func (mods Modifiers) Access() Access {
	switch {
	case mods.Has(ModPublic):
		return AccessPublic
	case mods.Has(ModProtected):
		return AccessProtected
	case mods.Has(ModPrivate):
		return AccessPrivate
	default:
		return AccessPackage
	}
}

func (mods Modifiers) String() string {
	var parts []string
	for _, kw := range []string{"public", "protected", "private", "abstract", "static", "final", "synchronized", "native", "default"} {
		if mods.Has(modifierKeywords[kw]) {
			parts = append(parts, kw)
		}
	}
	return strings.Join(parts, " ")
}

// Access is a declaration's visibility, ordered from most to least visible.
type Access int

const (
	AccessPublic Access = iota
	AccessProtected
	AccessPackage
	AccessPrivate
)

func (a Access) String() string {
	switch a {
	case AccessPublic:
		return "public"
	case AccessProtected:
		return "protected"
	case AccessPrivate:
		return "private"
	default:
		return "package"
	}
}
