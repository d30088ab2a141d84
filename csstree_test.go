package csstree_test

import (
	"strings"
	"testing"

	csstree "github.com/benbjohnson/csstree"
	"github.com/benbjohnson/csstree/ast"
	"github.com/benbjohnson/csstree/csserror"
)

func stringifyRoot(t *testing.T, root *ast.Root) string {
	t.Helper()
	result, err := csstree.Stringify(root, csstree.StringifyOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return result.CSS
}

// Scenario 1: round-trip identity for an untouched tree.
func TestScenario_RoundTripIdentity(t *testing.T) {
	src := "a { }"
	root, err := csstree.Parse(src, csstree.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := stringifyRoot(t, root); got != src {
		t.Errorf("got %q, want %q", got, src)
	}
}

// Round-trip identity must hold for a declaration-container at-rule
// that has a trailing semicolon before its closing brace.
func TestScenario_RoundTripIdentity_AtRuleTrailingSemicolon(t *testing.T) {
	src := "@font-face{font-family:Foo;}"
	root, err := csstree.Parse(src, csstree.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := stringifyRoot(t, root); got != src {
		t.Errorf("got %q, want %q", got, src)
	}
}

// Scenario 2: prepending a declaration to a single-line rule.
func TestScenario_PrependDeclarationSingleLine(t *testing.T) {
	root, err := csstree.Parse("a::before{color: black}", csstree.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rule := root.FirstRule()
	if rule == nil {
		t.Fatal("expected a rule")
	}
	content := csstree.Decl("content", `""`)
	if err := ast.Prepend(rule, content); err != nil {
		t.Fatal(err)
	}

	want := `a::before{content: "";color: black}`
	if got := stringifyRoot(t, root); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// Scenario 3: the same transformation applied to a multi-line rule
// preserves the existing declarations' indentation style.
func TestScenario_PrependDeclarationMultiLine(t *testing.T) {
	src := "a::before {\n  color: black;\n  }"
	root, err := csstree.Parse(src, csstree.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rule := root.FirstRule()
	content := csstree.Decl("content", `""`)
	if err := ast.Prepend(rule, content); err != nil {
		t.Fatal(err)
	}

	want := "a::before {\n  content: \"\";\n  color: black;\n  }"
	if got := stringifyRoot(t, root); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// Scenario 4: stripping every before/after string collapses the
// output to its minimal form.
func TestScenario_StripWhitespace(t *testing.T) {
	src := "a{\n  color:black\n}\n"
	root, err := csstree.Parse(src, csstree.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	root.After = ""
	if err := ast.EachRule(root, func(r *ast.Rule) error {
		r.Before = ""
		r.After = ""
		return nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ast.EachDecl(root, func(d *ast.Declaration) error {
		d.Before = ""
		return nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "a{color:black}"
	if got := stringifyRoot(t, root); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// Scenario 5: comments inside a selector are elided from the cleaned
// selector but preserved in the raw record; reassigning the selector
// drops the raw record entirely.
func TestScenario_SelectorCommentElisionAndReassignment(t *testing.T) {
	src := "a /**/ b {}"
	root, err := csstree.Parse(src, csstree.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rule := root.FirstRule()
	if got, want := rule.Selector(), "a  b"; got != want {
		t.Errorf("selector: got %q, want %q", got, want)
	}
	if got := stringifyRoot(t, root); got != src {
		t.Errorf("untouched round-trip: got %q, want %q", got, src)
	}

	rule.SetSelector(".link b")
	want := ".link b {}"
	if got := stringifyRoot(t, root); got != want {
		t.Errorf("after reassignment: got %q, want %q", got, want)
	}
}

// Scenario 6: an unclosed block is a syntax error naming the file and
// the position where the unclosed rule starts.
func TestScenario_UnclosedBlockSyntaxError(t *testing.T) {
	_, err := csstree.Parse("a {", csstree.Options{From: "main.css"})
	if err == nil {
		t.Fatal("expected an error")
	}
	serr, ok := err.(*csserror.SyntaxError)
	if !ok {
		t.Fatalf("expected *csserror.SyntaxError, got %T", err)
	}
	if !strings.Contains(serr.Error(), "main.css:1:1") {
		t.Errorf("unexpected message: %q", serr.Error())
	}
	if !strings.Contains(strings.ToLower(serr.Reason), "unclosed block") {
		t.Errorf("unexpected reason: %q", serr.Reason)
	}
}

// Invariant 2: mutating exactly one node leaves the rest of the output
// byte-for-byte unchanged.
func TestInvariant_LocalPreservation(t *testing.T) {
	src := "a{color:red}\nb{display:none}"
	root, err := csstree.Parse(src, csstree.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rules := root.Children()
	second := rules[1].(*ast.Rule)
	decl := second.Children()[0].(*ast.Declaration)
	decl.SetValue("block")

	got := stringifyRoot(t, root)
	want := "a{color:red}\nb{display:block}"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// Invariant 4: after insertion, the node's parent is the container and
// the container's child at the reported index is that node.
func TestInvariant_ParentConsistency(t *testing.T) {
	root := csstree.Root()
	rule := csstree.Rule("a")
	if err := ast.Append(root, rule); err != nil {
		t.Fatal(err)
	}
	decl := csstree.Decl("color", "red")
	if err := ast.Append(rule, decl); err != nil {
		t.Fatal(err)
	}
	if decl.Parent() != ast.Node(rule) {
		t.Error("expected decl's parent to be rule")
	}
	idx := ast.Index(rule, decl)
	if idx < 0 || rule.Children()[idx] != ast.Node(decl) {
		t.Error("expected rule's child at the reported index to be decl")
	}
}

// Invariant 5: iterating a container while prepending a clone of each
// child visits every original child exactly once and terminates.
func TestInvariant_SafeIterationUnderPrepend(t *testing.T) {
	rule := csstree.Rule("a")
	d1 := csstree.Decl("color", "red")
	d2 := csstree.Decl("display", "none")
	if err := ast.Append(rule, d1); err != nil {
		t.Fatal(err)
	}
	if err := ast.Append(rule, d2); err != nil {
		t.Fatal(err)
	}

	var visited []*ast.Declaration
	if err := ast.EachDecl(rule, func(d *ast.Declaration) error {
		visited = append(visited, d)
		return ast.Prepend(rule, d.Clone())
	}); err != nil {
		t.Fatal(err)
	}

	if len(visited) != 2 || visited[0] != d1 || visited[1] != d2 {
		t.Errorf("expected to visit [d1 d2] exactly once each, got %v", visited)
	}
}

// Invariant 6: composing a map through an upstream map yields a map
// whose sources are the upstream map's original sources.
func TestInvariant_SourceMapComposition(t *testing.T) {
	root, err := csstree.Parse("a{color:red}", csstree.Options{From: "generated.css"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, err := csstree.Stringify(root, csstree.StringifyOptions{To: "generated.css", Map: csstree.MapOption{Enabled: true}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	upstream, err := csstree.DecodeSourceMap([]byte(first.Map))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	root2, err := csstree.Parse(first.CSS, csstree.Options{From: "generated.css"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	final, err := csstree.Stringify(root2, csstree.StringifyOptions{
		To:  "final.css",
		Map: csstree.MapOption{Enabled: true, Upstream: upstream},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	composed, err := csstree.DecodeSourceMap([]byte(final.Map))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(composed.Sources) != 1 || composed.Sources[0] != "generated.css" {
		t.Errorf("expected composed sources to reference the original input, got %v", composed.Sources)
	}
}
