package ast_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benbjohnson/csstree/ast"
)

func TestRoot_AppendValidatesKind(t *testing.T) {
	root := ast.NewRoot()
	decl := ast.NewDeclaration("color", "red")
	err := ast.Append(root, decl)
	require.Error(t, err)
	require.Empty(t, root.Children())
}

func TestRule_AppendAndChildren(t *testing.T) {
	rule := ast.NewRule("a")
	d1 := ast.NewDeclaration("color", "red")
	d2 := ast.NewDeclaration("display", "none")
	require.NoError(t, ast.Append(rule, d1))
	require.NoError(t, ast.Append(rule, d2))
	require.Equal(t, []ast.Node{d1, d2}, rule.Children())
	require.Equal(t, ast.Node(rule), d1.Parent())
}

func TestRule_PrependAndInsert(t *testing.T) {
	rule := ast.NewRule("a")
	d1 := ast.NewDeclaration("color", "red")
	d2 := ast.NewDeclaration("display", "none")
	d3 := ast.NewDeclaration("margin", "0")
	require.NoError(t, ast.Append(rule, d1))
	require.NoError(t, ast.Prepend(rule, d2))
	require.NoError(t, ast.InsertAfter(rule, d2, d3))
	require.Equal(t, []ast.Node{d2, d3, d1}, rule.Children())
}

func TestRemove_ClearsParent(t *testing.T) {
	rule := ast.NewRule("a")
	d1 := ast.NewDeclaration("color", "red")
	require.NoError(t, ast.Append(rule, d1))
	ast.Remove(d1)
	require.Nil(t, d1.Parent())
	require.Empty(t, rule.Children())
}

func TestSetSelector_InvalidatesRaw(t *testing.T) {
	rule := ast.NewRule("a")
	rule.SetRawSelector(&ast.RawValue{Raw: "a /* x */", Value: "a"})
	require.NotNil(t, rule.RawSelector())
	rule.SetSelector("b")
	require.Nil(t, rule.RawSelector())
	require.Equal(t, "b", rule.Selector())
}

func TestAtRule_ShapePromotionDeclarations(t *testing.T) {
	at := ast.NewAtRule("font-face", "")
	require.Equal(t, ast.ShapeUnknown, at.Shape)
	require.NoError(t, ast.Append(at, ast.NewDeclaration("font-family", "Foo")))
	require.Equal(t, ast.ShapeDeclarations, at.Shape)
	require.True(t, at.HasBody)

	err := ast.Append(at, ast.NewRule("a"))
	require.Error(t, err)
}

func TestAtRule_ShapePromotionRules(t *testing.T) {
	at := ast.NewAtRule("media", "screen")
	require.NoError(t, ast.Append(at, ast.NewRule("a")))
	require.Equal(t, ast.ShapeRules, at.Shape)

	err := ast.Append(at, ast.NewDeclaration("color", "red"))
	require.Error(t, err)
}

func TestAtRule_CommentDoesNotFixShape(t *testing.T) {
	at := ast.NewAtRule("media", "screen")
	require.NoError(t, ast.Append(at, ast.NewComment("todo")))
	require.Equal(t, ast.ShapeUnknown, at.Shape)
	require.True(t, at.HasBody)
}

func TestEach_SafeDuringRemoval(t *testing.T) {
	rule := ast.NewRule("a")
	d1 := ast.NewDeclaration("a", "1")
	d2 := ast.NewDeclaration("b", "2")
	d3 := ast.NewDeclaration("c", "3")
	require.NoError(t, ast.Append(rule, d1))
	require.NoError(t, ast.Append(rule, d2))
	require.NoError(t, ast.Append(rule, d3))

	var seen []string
	require.NoError(t, ast.EachDecl(rule, func(d *ast.Declaration) error {
		seen = append(seen, d.Prop)
		if d == d1 {
			ast.Remove(d2)
		}
		return nil
	}))
	require.Equal(t, []string{"a", "c"}, seen)
}

func TestEach_SafeDuringAppend(t *testing.T) {
	rule := ast.NewRule("a")
	d1 := ast.NewDeclaration("a", "1")
	d2 := ast.NewDeclaration("b", "2")
	require.NoError(t, ast.Append(rule, d1))
	require.NoError(t, ast.Append(rule, d2))

	var seen []string
	require.NoError(t, ast.EachDecl(rule, func(d *ast.Declaration) error {
		seen = append(seen, d.Prop)
		if d == d1 {
			require.NoError(t, ast.Append(rule, ast.NewDeclaration("c", "3")))
		}
		return nil
	}))
	require.Equal(t, []string{"a", "b", "c"}, seen)
}

func TestEach_StopSentinelHaltsAndPropagates(t *testing.T) {
	rule := ast.NewRule("a")
	require.NoError(t, ast.Append(rule, ast.NewDeclaration("a", "1")))
	require.NoError(t, ast.Append(rule, ast.NewDeclaration("b", "2")))
	require.NoError(t, ast.Append(rule, ast.NewDeclaration("c", "3")))

	var seen []string
	err := ast.EachDecl(rule, func(d *ast.Declaration) error {
		seen = append(seen, d.Prop)
		if d.Prop == "b" {
			return ast.Stop
		}
		return nil
	})
	require.Same(t, ast.Stop, err)
	require.Equal(t, []string{"a", "b"}, seen)
}

func TestEachDecl_RecursesIntoNestedRules(t *testing.T) {
	root := ast.NewRoot()
	media := ast.NewAtRule("media", "screen")
	require.NoError(t, ast.Append(root, media))
	inner := ast.NewRule("a")
	require.NoError(t, ast.Append(inner, ast.NewDeclaration("color", "red")))
	require.NoError(t, ast.Append(media, inner))
	topLevel := ast.NewRule("b")
	require.NoError(t, ast.Append(topLevel, ast.NewDeclaration("top-level", "1")))
	require.NoError(t, ast.Append(root, topLevel))

	var seen []string
	require.NoError(t, ast.EachDecl(root, func(d *ast.Declaration) error {
		seen = append(seen, d.Prop)
		return nil
	}))
	require.Equal(t, []string{"color", "top-level"}, seen)
}

func TestInsertBefore_IndexForm(t *testing.T) {
	rule := ast.NewRule("a")
	d1 := ast.NewDeclaration("a", "1")
	d2 := ast.NewDeclaration("b", "2")
	require.NoError(t, ast.Append(rule, d1))
	require.NoError(t, ast.Append(rule, d2))

	d3 := ast.NewDeclaration("c", "3")
	require.NoError(t, ast.InsertBefore(rule, 1, d3))
	require.Equal(t, []ast.Node{d1, d3, d2}, rule.Children())
}

func TestRemoveAt_DetachesByIndex(t *testing.T) {
	rule := ast.NewRule("a")
	d1 := ast.NewDeclaration("a", "1")
	d2 := ast.NewDeclaration("b", "2")
	require.NoError(t, ast.Append(rule, d1))
	require.NoError(t, ast.Append(rule, d2))

	removed := ast.RemoveAt(rule, 0)
	require.True(t, removed == ast.Child(d1))
	require.Nil(t, d1.Parent())
	require.Equal(t, []ast.Node{d2}, rule.Children())
}

func TestSome_Every(t *testing.T) {
	rule := ast.NewRule("a")
	require.NoError(t, ast.Append(rule, ast.NewDeclaration("color", "red")))
	require.NoError(t, ast.Append(rule, ast.NewDeclaration("display", "none")))

	require.True(t, ast.Some(rule, func(n ast.Node) bool {
		d, ok := n.(*ast.Declaration)
		return ok && d.Prop == "color"
	}))
	require.False(t, ast.Every(rule, func(n ast.Node) bool {
		d, ok := n.(*ast.Declaration)
		return ok && d.Prop == "color"
	}))
}

func TestRoot_FirstRule(t *testing.T) {
	root := ast.NewRoot()
	require.Nil(t, root.FirstRule())
	c := ast.NewComment("x")
	r := ast.NewRule("a")
	require.NoError(t, ast.Append(root, c))
	require.NoError(t, ast.Append(root, r))
	require.Same(t, r, root.FirstRule())
}

func TestClone_Detached(t *testing.T) {
	root := ast.NewRoot()
	rule := ast.NewRule("a")
	rule.SetRawSelector(&ast.RawValue{Raw: "a", Value: "a"})
	decl := ast.NewDeclaration("color", "red")
	require.NoError(t, ast.Append(rule, decl))
	require.NoError(t, ast.Append(root, rule))

	clone := rule.Clone()
	require.Nil(t, clone.Parent())
	require.Len(t, clone.Children(), 1)
	require.NotSame(t, decl, clone.Children()[0])

	clone.RawSelector().Value = "b"
	require.Equal(t, "a", rule.RawSelector().Value)
}

func TestAppendShorthand(t *testing.T) {
	rule := ast.NewRule("a")
	require.NoError(t, ast.AppendShorthand(rule, ast.DeclShorthand{Prop: "color", Value: "red"}))
	require.Len(t, rule.Children(), 1)
	d, ok := rule.Children()[0].(*ast.Declaration)
	require.True(t, ok)
	require.Equal(t, "color", d.Prop)
	require.Equal(t, "red", d.Value())
}
