// Package ast defines the editable in-memory CSS node tree described in
// §3 and §4.3: five node variants (Root, Rule, AtRule, Declaration,
// Comment), each carrying the whitespace/raw-byte side channels that
// make byte-exact stringification possible, plus the container mutation
// and safe-iteration API user transformations call into.
//
// The teacher package (github.com/benbjohnson/css) sealed its node
// variants behind a `node()` marker method on a generic ComponentValue
// tree; this package keeps that sealing idiom but the node shapes
// themselves are new; see DESIGN.md.
package ast

import "github.com/benbjohnson/csstree/csserror"

// Pos is a 1-indexed line/column position, per §3's "each position
// being a 1-indexed line and column".
type Pos struct {
	Line   int
	Column int
}

// Span is the `source` record every node carries: the originating file
// identifier and a start/end position pair (§3), plus the byte offsets
// used internally to slice raw text out of the parsed input.
type Span struct {
	File        string
	Start       Pos
	End         Pos
	StartOffset int
	EndOffset   int
}

// RawValue pairs an attribute's original bytes with the cleaned value
// that was derived from them (§3, §9). Stringification emits Raw
// whenever Value still matches the live cleaned attribute; any
// assignment that changes the cleaned value invalidates the pairing
// (see Rule.SetSelector, AtRule.SetParams, Declaration.SetValue), at
// which point the owning node's raw pointer becomes nil.
type RawValue struct {
	Raw   string
	Value string
}

// Node is implemented by every tree node. It is deliberately sealed: only
// types in this package may implement it, the same way the teacher's
// ast.Node is sealed behind an unexported node() method.
type Node interface {
	isNode()
}

// Child is implemented by every non-root node: they all carry a parent
// link and a `before` string (§3).
type Child interface {
	Node
	Parent() Node
	setParent(Node)
}

// Container is implemented by every node that holds an ordered child
// sequence: Root, Rule, and AtRule. A childless AtRule is still a
// Container; it simply has no children until one is appended.
type Container interface {
	Node
	Children() []Node
	childSlice() *[]Node
	validateChild(Node) error
}

// nodeBase holds the fields common to every non-root node: the parent
// link and the `before` whitespace/comment prefix (§3), plus the
// source-position record every node carries.
type nodeBase struct {
	parent Node
	Before string
	Source Span
}

func (b *nodeBase) Parent() Node     { return b.parent }
func (b *nodeBase) setParent(p Node) { b.parent = p }

// Root is the top-level container: the ordered sequence of top-level
// Comment/AtRule/Rule nodes, plus the `after` whitespace between the
// last child and end-of-file (§3).
type Root struct {
	After    string
	children []Node
}

func (*Root) isNode() {}

// NewRoot returns a new, empty, detached Root.
func NewRoot() *Root { return &Root{} }

// Children returns the root's direct children in order.
func (r *Root) Children() []Node { return r.children }

func (r *Root) childSlice() *[]Node { return &r.children }

func (r *Root) validateChild(n Node) error {
	switch n.(type) {
	case *Comment, *AtRule, *Rule:
		return nil
	default:
		return &csserror.StructuralError{Message: "root cannot contain a " + kindName(n)}
	}
}

// FirstRule returns the first Rule among the root's direct children, or
// nil if there is none. Named per the concrete scenario in §8.5's
// `root.first_rule()`.
func (r *Root) FirstRule() *Rule {
	for _, c := range r.children {
		if rule, ok := c.(*Rule); ok {
			return rule
		}
	}
	return nil
}

// Rule is a CSS rule: a selector and a body of Declaration/Comment
// children (§3).
type Rule struct {
	nodeBase
	selector    string
	selectorRaw *RawValue

	// Between holds the raw whitespace/comments between the selector
	// and the rule's opening '{'. It is a separate record from
	// selectorRaw precisely so that SetSelector's raw-invalidation
	// (§9) never touches it: reassigning the selector should not also
	// discard the formatting that sits after it.
	Between   string
	Semicolon bool
	After     string
	children  []Node
}

func (*Rule) isNode() {}

// NewRule returns a new, detached Rule with the given cleaned selector
// and no raw record (so it stringifies from selector alone, per §4.4's
// style-inheritance rule for synthesized nodes).
func NewRule(selector string) *Rule {
	return &Rule{selector: selector}
}

// Selector returns the rule's cleaned selector.
func (r *Rule) Selector() string { return r.selector }

// SetSelector assigns a new cleaned selector. Per §9's cleaned-vs-raw
// invariant, this invalidates the raw selector record: stringification
// will emit the new selector verbatim rather than replaying preserved
// interior comments.
func (r *Rule) SetSelector(s string) {
	r.selector = s
	r.selectorRaw = nil
}

// RawSelector returns the raw selector record, or nil if the rule has
// none (synthesized, or invalidated by a prior SetSelector).
func (r *Rule) RawSelector() *RawValue { return r.selectorRaw }

// SetRawSelector installs a raw selector record; used by the parser.
func (r *Rule) SetRawSelector(raw *RawValue) { r.selectorRaw = raw }

// Children returns the rule's direct children in order.
func (r *Rule) Children() []Node { return r.children }

func (r *Rule) childSlice() *[]Node { return &r.children }

func (r *Rule) validateChild(n Node) error {
	switch n.(type) {
	case *Declaration, *Comment:
		return nil
	default:
		return &csserror.StructuralError{Message: "rule cannot contain a " + kindName(n)}
	}
}

// AtRuleShape identifies which of the three shapes (§3) an at-rule has
// settled into. It starts at ShapeUnknown and is promoted at most once.
type AtRuleShape int

const (
	// ShapeUnknown is the initial state: no body has been observed
	// (manual construction) or the body's first structural child has
	// not yet been seen (parsing).
	ShapeUnknown AtRuleShape = iota
	// ShapeDeclarations is a declaration-container at-rule (e.g.
	// @font-face).
	ShapeDeclarations
	// ShapeRules is a rule-container at-rule (e.g. @media).
	ShapeRules
)

// AtRule is a CSS at-rule: a name, cleaned params, and a body whose
// shape is fixed lazily (§3).
type AtRule struct {
	nodeBase
	Name      string
	params    string
	paramsRaw *RawValue

	// Between holds the raw whitespace/comments between the params run
	// and the following '{' or ';', kept apart from paramsRaw for the
	// same reason Rule.Between is: SetParams must not discard it.
	Between   string
	HasBody   bool
	Shape     AtRuleShape
	Semicolon bool
	After     string
	children  []Node
}

func (*AtRule) isNode() {}

// NewAtRule returns a new, detached, childless AtRule. Its shape is
// ShapeUnknown and HasBody is false until a child is appended, per §3's
// "shape is fixed... when the first child is appended to a manually
// constructed at-rule."
func NewAtRule(name, params string) *AtRule {
	return &AtRule{Name: name, params: params}
}

// Params returns the at-rule's cleaned params.
func (a *AtRule) Params() string { return a.params }

// SetParams assigns new cleaned params, invalidating the raw record
// (§9), the same way Rule.SetSelector does for selectors.
func (a *AtRule) SetParams(s string) {
	a.params = s
	a.paramsRaw = nil
}

// RawParams returns the raw params record, or nil if none survives.
func (a *AtRule) RawParams() *RawValue { return a.paramsRaw }

// SetRawParams installs a raw params record; used by the parser.
func (a *AtRule) SetRawParams(raw *RawValue) { a.paramsRaw = raw }

// Children returns the at-rule's direct children in order. A childless
// at-rule (HasBody == false) always returns nil.
func (a *AtRule) Children() []Node { return a.children }

func (a *AtRule) childSlice() *[]Node { return &a.children }

func (a *AtRule) validateChild(n Node) error {
	switch a.Shape {
	case ShapeDeclarations:
		switch n.(type) {
		case *Declaration, *Comment:
			return nil
		}
		return &csserror.StructuralError{Message: "declaration-container at-rule @" + a.Name + " cannot contain a " + kindName(n)}
	case ShapeRules:
		switch n.(type) {
		case *Rule, *AtRule, *Comment:
			return nil
		}
		return &csserror.StructuralError{Message: "rule-container at-rule @" + a.Name + " cannot contain a " + kindName(n)}
	default: // ShapeUnknown: this insertion decides the shape.
		switch n.(type) {
		case *Declaration:
			return nil
		case *Rule, *AtRule:
			return nil
		case *Comment:
			return nil
		default:
			return &csserror.StructuralError{Message: "at-rule @" + a.Name + " cannot contain a " + kindName(n)}
		}
	}
}

// promoteShape fixes the at-rule's shape from the kind of its first
// structural (non-Comment) child, per §3 and §4.2.
func (a *AtRule) promoteShape(n Node) {
	a.HasBody = true
	if a.Shape != ShapeUnknown {
		return
	}
	switch n.(type) {
	case *Declaration:
		a.Shape = ShapeDeclarations
	case *Rule, *AtRule:
		a.Shape = ShapeRules
	}
}

// Declaration is a property/value pair (§3). It has no children.
type Declaration struct {
	nodeBase
	Prop  string
	value string

	// Between holds everything between the end of Prop and the start
	// of the cleaned value: the raw whitespace around the colon and
	// the colon itself (e.g. ": " or ":"). It is independent of
	// valueRaw, so SetValue's invalidation of the value's raw record
	// never erases the colon spacing that was parsed.
	Between   string
	valueRaw  *RawValue
	Important bool
}

func (*Declaration) isNode() {}

// NewDeclaration returns a new, detached Declaration.
func NewDeclaration(prop, value string) *Declaration {
	return &Declaration{Prop: prop, value: value}
}

// Value returns the declaration's cleaned value.
func (d *Declaration) Value() string { return d.value }

// SetValue assigns a new cleaned value, invalidating the raw record
// (§9): the stringifier will no longer replay preserved interior
// comments or trailing whitespace for this declaration.
func (d *Declaration) SetValue(v string) {
	d.value = v
	d.valueRaw = nil
}

// RawValue returns the raw value record, or nil if none survives.
func (d *Declaration) RawValue() *RawValue { return d.valueRaw }

// SetRawValue installs a raw value record; used by the parser.
func (d *Declaration) SetRawValue(raw *RawValue) { d.valueRaw = raw }

// Comment is a `/* ... */` block appearing between rules or between
// declarations (§3); comments elsewhere are absorbed into a raw record
// instead of becoming nodes.
type Comment struct {
	nodeBase
	Content string
}

func (*Comment) isNode() {}

// NewComment returns a new, detached Comment.
func NewComment(content string) *Comment {
	return &Comment{Content: content}
}

// kindName renders a node's variant name for structural-error messages.
func kindName(n Node) string {
	switch n.(type) {
	case *Root:
		return "root"
	case *Rule:
		return "rule"
	case *AtRule:
		return "at-rule"
	case *Declaration:
		return "declaration"
	case *Comment:
		return "comment"
	default:
		return "node"
	}
}
