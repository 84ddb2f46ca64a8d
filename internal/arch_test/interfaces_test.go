package arch_test

import (
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"testing"
)

// allowedColocations maps package names to interface names that are
// legitimately defined in the same package as their implementation.
// Each entry should include a comment explaining why co-location is acceptable.
var allowedColocations = map[string]map[string]bool{}

// consumerInterfaces pairs an interface with the type in another package that
// satisfies it in production. The archive workflow asks its questions through
// Prompter and stays free of terminal code; ui supplies the line prompter.
var consumerInterfaces = []struct {
	Pkg, Iface    string
	ImplPkg, Impl string
}{
	{Pkg: "archive", Iface: "Prompter", ImplPkg: "ui", Impl: "Prompter"},
}

// TestConsumerInterfacesHaveImplementations verifies each consumer-side
// interface still has its production implementation, matched by method names.
func TestConsumerInterfacesHaveImplementations(t *testing.T) {
	t.Parallel()

	dir := internalDirPath(t)
	for _, ci := range consumerInterfaces {
		t.Run(ci.Pkg+"."+ci.Iface, func(t *testing.T) {
			t.Parallel()

			var iface *interfaceDecl
			for _, f := range goFilesIn(t, filepath.Join(dir, ci.Pkg)) {
				for _, d := range interfaceDecls(t, f) {
					if d.Name == ci.Iface {
						iface = &d
					}
				}
			}
			if iface == nil {
				t.Fatalf("interface %s not found in %s", ci.Iface, ci.Pkg)
			}

			methods := structMethodsInPkg(t, filepath.Join(dir, ci.ImplPkg))
			if !implementsAll(iface.Methods, methods[ci.Impl]) {
				t.Errorf("%s.%s no longer provides %v required by %s.%s",
					ci.ImplPkg, ci.Impl, iface.Methods, ci.Pkg, ci.Iface)
			}

			for _, imp := range importsOf(t, filepath.Join(dir, ci.Pkg)) {
				if imp == ci.ImplPkg {
					t.Errorf("%s imports %s; the interface exists so it does not have to", ci.Pkg, ci.ImplPkg)
				}
			}
		})
	}
}

// structMethodsInPkg collects all method names for each receiver type across
// all non-test Go files in pkgDir. Returns a map from type name to method names.
func structMethodsInPkg(t *testing.T, pkgDir string) map[string][]string {
	t.Helper()

	files := goFilesIn(t, pkgDir)
	result := make(map[string][]string)
	fset := token.NewFileSet()

	for _, f := range files {
		node, err := parser.ParseFile(fset, f, nil, parser.SkipObjectResolution)
		if err != nil {
			t.Fatalf("parsing %s: %v", f, err)
		}
		for _, decl := range node.Decls {
			fd, ok := decl.(*ast.FuncDecl)
			if !ok || fd.Recv == nil {
				continue
			}
			recvType := receiverTypeName(fd.Recv)
			if recvType == "" {
				continue
			}
			result[recvType] = append(result[recvType], fd.Name.Name)
		}
	}
	return result
}

// receiverTypeName extracts the type name from a method receiver field list,
// unwrapping pointer receivers.
func receiverTypeName(fl *ast.FieldList) string {
	if fl == nil || len(fl.List) == 0 {
		return ""
	}
	expr := fl.List[0].Type
	// Unwrap pointer receiver.
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	if ident, ok := expr.(*ast.Ident); ok {
		return ident.Name
	}
	return ""
}

// implementsAll reports whether structMethods contains all method names
// from ifaceMethods.
func implementsAll(ifaceMethods, structMethods []string) bool {
	set := make(map[string]bool, len(structMethods))
	for _, m := range structMethods {
		set[m] = true
	}
	for _, m := range ifaceMethods {
		if !set[m] {
			return false
		}
	}
	return true
}

// TestInterfacePlacement verifies that interfaces are defined where they are
// consumed, not where they are implemented. It flags any interface that is
// defined in the same package as a struct whose methods satisfy the interface,
// unless the co-location is explicitly allowlisted.
func TestInterfacePlacement(t *testing.T) {
	t.Parallel()

	dir := internalDirPath(t)
	pkgs := internalPackages(t)

	for _, pkg := range pkgs {
		t.Run(pkg, func(t *testing.T) {
			t.Parallel()

			pkgDir := filepath.Join(dir, pkg)
			files := goFilesIn(t, pkgDir)

			// Collect all interface declarations in this package.
			var ifaces []interfaceDecl
			for _, f := range files {
				ifaces = append(ifaces, interfaceDecls(t, f)...)
			}
			if len(ifaces) == 0 {
				return
			}

			// Collect all struct/type methods in this package.
			methods := structMethodsInPkg(t, pkgDir)

			for _, iface := range ifaces {
				// Skip empty/marker interfaces; they have no methods to check.
				if len(iface.Methods) == 0 {
					continue
				}

				// Check allowlist.
				if allowed, ok := allowedColocations[pkg]; ok && allowed[iface.Name] {
					continue
				}

				// Check if any type in the same package implements all
				// interface methods (name match heuristic).
				for typeName, typeMethods := range methods {
					if implementsAll(iface.Methods, typeMethods) {
						t.Errorf(
							"interface %s defined in %s but struct %s in same package implements it; move interface to consumer",
							iface.Name, pkg, typeName,
						)
					}
				}
			}
		})
	}
}
