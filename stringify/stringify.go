// Package stringify renders a node tree back into CSS text, per §4.4:
// a depth-first walk that prefers each node's raw record when the
// cleaned value it was parsed from hasn't been reassigned, and falls
// back to a style inherited from a sibling for nodes built by hand.
//
// Grounded on the teacher's printer.go: a single type-switch-driven
// Print(w io.Writer, n Node) function. This rendering keeps that
// shape but adds the raw-vs-cleaned preference rule and the
// style-inheritance fallback, and additionally reports the output
// (line, column) at every mapped node boundary so a caller can build a
// source map alongside the text.
package stringify

import (
	"io"
	"strings"

	"github.com/benbjohnson/csstree/ast"
)

// Mapping is called once for every Rule, AtRule, Declaration, and
// Comment, at the moment stringification begins writing that node's
// body, with the position in the output where it begins. Callers that
// don't need a source map may pass nil.
type Mapping func(n ast.Node, outLine, outColumn int)

// Stringify renders root to a string. onMap, if non-nil, receives a
// callback for every node boundary described in §4.5.
func Stringify(root *ast.Root, onMap Mapping) (string, error) {
	var b strings.Builder
	w := &trackingWriter{w: &b, line: 1, column: 1}
	p := &printer{onMap: onMap}
	if err := p.printRoot(w, root); err != nil {
		return "", err
	}
	return b.String(), nil
}

// printer holds no state of its own beyond the mapping callback; it
// mirrors the teacher's near-stateless Printer struct.
type printer struct {
	onMap Mapping
}

func (p *printer) printRoot(w *trackingWriter, root *ast.Root) error {
	children := root.Children()
	for i := range children {
		if err := p.printChild(w, root, children, i); err != nil {
			return err
		}
	}
	return w.writeString(root.After)
}

func (p *printer) printChild(w *trackingWriter, parent ast.Node, siblings []ast.Node, idx int) error {
	n := siblings[idx]
	switch v := n.(type) {
	case *ast.Rule:
		return p.printRule(w, parent, siblings, idx, v)
	case *ast.AtRule:
		return p.printAtRule(w, parent, siblings, idx, v)
	case *ast.Declaration:
		return p.printDeclaration(w, parent, siblings, idx, v)
	case *ast.Comment:
		return p.printComment(w, parent, siblings, idx, v)
	default:
		return nil
	}
}

func (p *printer) printRule(w *trackingWriter, parent ast.Node, siblings []ast.Node, idx int, n *ast.Rule) error {
	if err := w.writeString(beforeOf(n, parent, siblings, idx)); err != nil {
		return err
	}
	p.mark(w, n)

	if err := w.writeString(preferRaw(n.RawSelector(), n.Selector())); err != nil {
		return err
	}
	if err := w.writeString(betweenOf(n, parent, siblings, idx)); err != nil {
		return err
	}
	if err := w.writeByte('{'); err != nil {
		return err
	}

	children := n.Children()
	for i := range children {
		if err := p.printChild(w, n, children, i); err != nil {
			return err
		}
	}
	if err := w.writeString(n.After); err != nil {
		return err
	}
	return w.writeByte('}')
}

func (p *printer) printAtRule(w *trackingWriter, parent ast.Node, siblings []ast.Node, idx int, n *ast.AtRule) error {
	if err := w.writeString(beforeOf(n, parent, siblings, idx)); err != nil {
		return err
	}
	p.mark(w, n)

	if err := w.writeByte('@'); err != nil {
		return err
	}
	if err := w.writeString(n.Name); err != nil {
		return err
	}
	if raw := n.RawParams(); raw != nil && raw.Value == n.Params() {
		// Raw params are the exact bytes that followed the name,
		// including the whitespace separating them from it.
		if err := w.writeString(raw.Raw); err != nil {
			return err
		}
	} else if strings.TrimSpace(n.Params()) != "" {
		if err := w.writeByte(' '); err != nil {
			return err
		}
		if err := w.writeString(n.Params()); err != nil {
			return err
		}
	}

	if err := w.writeString(betweenOf(n, parent, siblings, idx)); err != nil {
		return err
	}

	if !n.HasBody {
		return w.writeByte(';')
	}

	if err := w.writeByte('{'); err != nil {
		return err
	}
	children := n.Children()
	for i := range children {
		if err := p.printChild(w, n, children, i); err != nil {
			return err
		}
	}
	if err := w.writeString(n.After); err != nil {
		return err
	}
	return w.writeByte('}')
}

func (p *printer) printDeclaration(w *trackingWriter, parent ast.Node, siblings []ast.Node, idx int, n *ast.Declaration) error {
	if err := w.writeString(beforeOf(n, parent, siblings, idx)); err != nil {
		return err
	}
	p.mark(w, n)

	if err := w.writeString(n.Prop); err != nil {
		return err
	}
	if err := w.writeString(betweenOf(n, parent, siblings, idx)); err != nil {
		return err
	}
	if err := w.writeString(preferRaw(n.RawValue(), n.Value())); err != nil {
		return err
	}
	if lastSemicolon(parent, siblings, idx) {
		return w.writeByte(';')
	}
	return nil
}

func (p *printer) printComment(w *trackingWriter, parent ast.Node, siblings []ast.Node, idx int, n *ast.Comment) error {
	if err := w.writeString(beforeOf(n, parent, siblings, idx)); err != nil {
		return err
	}
	p.mark(w, n)
	return w.writeString("/*" + n.Content + "*/")
}

func (p *printer) mark(w *trackingWriter, n ast.Node) {
	if p.onMap != nil {
		p.onMap(n, w.line, w.column)
	}
}

// lastSemicolon reports whether the Declaration at siblings[idx] should
// be followed by a trailing semicolon: every Declaration but the last
// always gets one (to separate it from what follows); the last gets
// one iff the container's semicolon flag says so (§4.4).
func lastSemicolon(parent ast.Node, siblings []ast.Node, idx int) bool {
	if idx < len(siblings)-1 {
		return true
	}
	switch p := parent.(type) {
	case *ast.Rule:
		return p.Semicolon
	case *ast.AtRule:
		return p.Semicolon
	default:
		return false
	}
}

// preferRaw implements §4.4's emission preference: emit the raw bytes
// when the cleaned value still matches what the raw record was parsed
// from (i.e. no SetXxx call has invalidated it since).
func preferRaw(raw *ast.RawValue, cleaned string) string {
	if raw != nil && raw.Value == cleaned {
		return raw.Raw
	}
	return cleaned
}

// beforeOf returns n's own `before` if set, otherwise, for a node that
// was never parsed (synthesized by a transformation), the
// style-inherited fallback of §4.4: the nearest sibling of the same
// kind (searching outward in both directions), failing that the
// nearest sibling of any kind, failing that a default based on whether
// parent is the root. A parsed node's own empty `before` is left alone
// — it means "no whitespace preceded this node in the source", not
// "unset".
func beforeOf(n ast.Child, parent ast.Node, siblings []ast.Node, idx int) string {
	fallback := "\n    "
	if _, ok := parent.(*ast.Root); ok {
		fallback = "\n"
	}
	return styleInherit(n, siblings, idx, ownBefore, false, fallback)
}

func ownBefore(n ast.Child) string {
	switch v := n.(type) {
	case *ast.Rule:
		return v.Before
	case *ast.AtRule:
		return v.Before
	case *ast.Declaration:
		return v.Before
	case *ast.Comment:
		return v.Before
	default:
		return ""
	}
}

// betweenOf is beforeOf's counterpart for the raw span a Rule/AtRule
// keeps between its selector/params and its delimiter, and a
// Declaration keeps between its prop and its value (the colon and its
// surrounding whitespace). Unlike before-strings, an empty inherited
// value is never useful here — a Declaration's Between must contain at
// least the colon — so sibling candidates with an empty own value are
// skipped rather than accepted, and the ultimate fallback supplies the
// bare delimiter the node's kind requires.
func betweenOf(n ast.Child, parent ast.Node, siblings []ast.Node, idx int) string {
	fallback := ""
	if _, ok := n.(*ast.Declaration); ok {
		fallback = ":"
	}
	return styleInherit(n, siblings, idx, ownBetween, true, fallback)
}

func ownBetween(n ast.Child) string {
	switch v := n.(type) {
	case *ast.Rule:
		return v.Between
	case *ast.AtRule:
		return v.Between
	case *ast.Declaration:
		return v.Between
	default:
		return ""
	}
}

// styleInherit implements the shared search behind beforeOf/betweenOf:
// a synthesized node with no value of its own inherits from the
// nearest sibling of the same kind, searching outward from idx in both
// directions; failing that, the nearest sibling of any kind; failing
// that, fallback. When skipEmptyCandidates is set, a candidate sibling
// whose own value is "" is treated as carrying no information (used
// for Between, where "" is never a legitimate inherited value).
func styleInherit(n ast.Child, siblings []ast.Node, idx int, own func(ast.Child) string, skipEmptyCandidates bool, fallback string) string {
	if b := own(n); b != "" || !synthesized(n) {
		return b
	}

	kind := kindTag(n)
	var anyKindValue string
	haveAnyKind := false
	for d := 1; d < len(siblings); d++ {
		for _, i := range [2]int{idx - d, idx + d} {
			if i < 0 || i >= len(siblings) || i == idx {
				continue
			}
			c, ok := siblings[i].(ast.Child)
			if !ok {
				continue
			}
			val := own(c)
			if skipEmptyCandidates && val == "" {
				continue
			}
			if !haveAnyKind {
				anyKindValue = val
				haveAnyKind = true
			}
			if kindTag(siblings[i]) == kind {
				return val
			}
		}
	}
	if haveAnyKind {
		return anyKindValue
	}
	return fallback
}

// synthesized reports whether n was built directly by a constructor
// rather than produced by the parser: a parsed node always carries a
// non-empty byte span (every grammar production consumes at least one
// byte), while a constructor-built node's Source is the Span zero
// value.
func synthesized(n ast.Child) bool {
	return sourceOf(n).EndOffset == 0
}

func sourceOf(n ast.Child) ast.Span {
	switch v := n.(type) {
	case *ast.Rule:
		return v.Source
	case *ast.AtRule:
		return v.Source
	case *ast.Declaration:
		return v.Source
	case *ast.Comment:
		return v.Source
	default:
		return ast.Span{}
	}
}

func kindTag(n ast.Node) int {
	switch n.(type) {
	case *ast.Rule:
		return 1
	case *ast.AtRule:
		return 2
	case *ast.Declaration:
		return 3
	case *ast.Comment:
		return 4
	default:
		return 0
	}
}

// trackingWriter wraps a strings.Builder, tracking the (line, column)
// of the next byte to be written so Stringify can report node-boundary
// positions to a source map builder without a second pass over the
// output.
type trackingWriter struct {
	w      io.StringWriter
	line   int
	column int
}

func (w *trackingWriter) writeString(s string) error {
	if s == "" {
		return nil
	}
	if _, err := w.w.WriteString(s); err != nil {
		return err
	}
	for _, r := range s {
		if r == '\n' {
			w.line++
			w.column = 1
		} else {
			w.column++
		}
	}
	return nil
}

func (w *trackingWriter) writeByte(b byte) error {
	return w.writeString(string(rune(b)))
}
