// Package ast provides the syntax-tree view the ordering engine works on.
//
// A Unit holds the type declarations of one compilation unit. Each
// TypeDecl lists its members in source order: methods and constructors,
// fields, initializer blocks, nested types, enum constants and
// annotation-type elements. Method bodies are reduced to the invocations
// they contain, each carrying the binding the front-end resolved for it.
//
// The Provider interface abstracts the front-end that produces units, so
// the engine never depends on a concrete parser:
//
//	provider := treesitter.New()
//	defer provider.Close()
//
//	unit, err := provider.Parse(ctx, "Service.java")
//	if err != nil {
//	    return err
//	}
//
//	ast.Walk(unit.TopLevel(), visitor)
package ast
