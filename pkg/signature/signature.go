// Package signature identifies methods by name and erased parameter types.
package signature

import (
	"fmt"
	"sort"
	"strings"

	"github.com/panbanda/stepdown/pkg/ast"
)

const (
	initializerPrefix = "#INITIALIZER#_"
	fieldPrefix       = "#FIELD#_"
)

// Signature is the identity of a method within one type: its name and
// parameter types with generic arguments removed. Two declarations that
// differ only in generic arguments share a Signature.
type Signature struct {
	key string
}

// New wraps a raw key.
func New(key string) Signature {
	return Signature{key: key}
}

// Of builds the key name(T1, T2, ...) from a name and parameter type texts.
func Of(name string, paramTypes []string) Signature {
	parts := make([]string, len(paramTypes))
	for i, t := range paramTypes {
		parts[i] = StripGenerics(t)
	}
	return Signature{key: name + "(" + strings.Join(parts, ", ") + ")"}
}

// FromMethod returns the signature of a method or constructor declaration.
func FromMethod(m *ast.MethodDecl) Signature {
	return Of(m.Name, m.ParamTypes())
}

// FromInvocation returns the signature of the method an invocation is bound
// to. ok is false for unresolved invocations.
func FromInvocation(inv *ast.Invocation) (sig Signature, ok bool) {
	if inv == nil || inv.Binding == nil {
		return Signature{}, false
	}
	name := inv.Binding.Name
	if name == "" {
		name = inv.Name
	}
	return Of(name, inv.Binding.ParamTypes), true
}

// ForInitializer returns the synthetic signature of the i-th initializer block.
func ForInitializer(i int) Signature {
	return Signature{key: fmt.Sprintf("%s%d", initializerPrefix, i)}
}

// ForFieldInitializer returns the synthetic signature of the i-th field
// declaration when its initializer calls local methods.
func ForFieldInitializer(i int) Signature {
	return Signature{key: fmt.Sprintf("%s%d", fieldPrefix, i)}
}

// StripGenerics cuts a type text at its first '<'.
func StripGenerics(t string) string {
	if i := strings.IndexByte(t, '<'); i >= 0 {
		return t[:i]
	}
	return t
}

// IsSynthetic reports whether the signature names an initializer or field
// initializer rather than a declared method.
func (s Signature) IsSynthetic() bool {
	return strings.HasPrefix(s.key, initializerPrefix) || strings.HasPrefix(s.key, fieldPrefix)
}

// IsZero reports whether s is the zero Signature.
func (s Signature) IsZero() bool {
	return s.key == ""
}

// Compare orders signatures by their keys.
func (s Signature) Compare(o Signature) int {
	return strings.Compare(s.key, o.key)
}

func (s Signature) String() string {
	return s.key
}

// MarshalText renders the key, so signatures serialize as plain strings.
func (s Signature) MarshalText() ([]byte, error) {
	return []byte(s.key), nil
}

// Set is a set of signatures.
type Set map[Signature]struct{}

// NewSet returns a set holding sigs.
func NewSet(sigs ...Signature) Set {
	s := make(Set, len(sigs))
	for _, sig := range sigs {
		s.Add(sig)
	}
	return s
}

// Add inserts sig.
func (s Set) Add(sig Signature) {
	s[sig] = struct{}{}
}

// Contains reports whether sig is in the set. A nil set contains nothing.
func (s Set) Contains(sig Signature) bool {
	_, ok := s[sig]
	return ok
}

// Sorted returns the members in key order.
func (s Set) Sorted() []Signature {
	out := make([]Signature, 0, len(s))
	for sig := range s {
		out = append(out, sig)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Compare(out[j]) < 0 })
	return out
}
