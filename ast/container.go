package ast

import (
	"errors"

	"github.com/benbjohnson/csstree/csserror"
)

// This file implements the container mutation operations and the safe
// iteration contract described in §4.3 and worked out in §9: Append,
// Prepend, InsertBefore, InsertAfter, Remove, Index, Some, Every, and
// the Each family. The teacher package never needed this (its tree is
// built once by the parser and walked, not edited), so the shape here
// is new, grounded on the cursor algorithm sketched in §9.

// Stop is the sentinel a callback passed to Each or one of the typed
// EachX walkers returns to end the walk early. Each and its recursive
// variants stop as soon as fn returns a non-nil error and return that
// error to their own caller unchanged, so a walk can propagate either
// Stop or a genuine error encountered partway through.
var Stop = errors.New("ast: stop iteration")

// Append adds n as the last child of c, after validating that c can
// hold n's kind (§7's structural-misuse check) and detaching n from any
// existing parent first.
func Append(c Container, n Child) error {
	if err := c.validateChild(n); err != nil {
		return err
	}
	detach(n)
	slice := c.childSlice()
	*slice = append(*slice, n)
	n.setParent(c.(Node))
	promote(c, n)
	return nil
}

// Prepend adds n as the first child of c.
func Prepend(c Container, n Child) error {
	if err := c.validateChild(n); err != nil {
		return err
	}
	detach(n)
	slice := c.childSlice()
	*slice = append([]Node{n}, *slice...)
	n.setParent(c.(Node))
	promote(c, n)
	return nil
}

// InsertBefore inserts n immediately before ref, which may be an
// existing child of c or an integer index into c.Children() (§4.3: "ref
// may be a child node or an integer index; index form is O(1) lookup").
// It returns a *StructuralError if ref names no child of c.
func InsertBefore(c Container, ref interface{}, n Child) error {
	idx, err := resolveIndex(c, ref)
	if err != nil {
		return err
	}
	if err := c.validateChild(n); err != nil {
		return err
	}
	detach(n)
	if refNode, ok := ref.(Node); ok {
		// Detaching n from c may have shifted ref down by one.
		if i := Index(c, refNode); i >= 0 {
			idx = i
		}
	}
	insertAt(c, idx, n)
	n.setParent(c.(Node))
	promote(c, n)
	return nil
}

// InsertAfter inserts n immediately after ref, which may be an
// existing child of c or an integer index into c.Children().
func InsertAfter(c Container, ref interface{}, n Child) error {
	idx, err := resolveIndex(c, ref)
	if err != nil {
		return err
	}
	if err := c.validateChild(n); err != nil {
		return err
	}
	detach(n)
	if refNode, ok := ref.(Node); ok {
		// Detaching n from c may have shifted ref down by one.
		if i := Index(c, refNode); i >= 0 {
			idx = i
		}
	}
	insertAt(c, idx+1, n)
	n.setParent(c.(Node))
	promote(c, n)
	return nil
}

// Remove detaches n from its parent, if any. It is a no-op if n has no
// parent or its parent does not currently hold it. This is the
// identity form of §4.3's remove(ref); see RemoveAt for the O(1)
// index form.
func Remove(n Child) {
	p := n.Parent()
	if p == nil {
		return
	}
	c, ok := p.(Container)
	if !ok {
		return
	}
	removeFromSlice(c.childSlice(), n)
	n.setParent(nil)
}

// RemoveAt detaches and returns c's child at idx, the index form of
// §4.3's remove(ref): an O(1) removal that never scans c's children for
// identity. It returns nil if idx is out of range.
func RemoveAt(c Container, idx int) Child {
	children := c.Children()
	if idx < 0 || idx >= len(children) {
		return nil
	}
	n, ok := children[idx].(Child)
	if !ok {
		return nil
	}
	slice := c.childSlice()
	*slice = append((*slice)[:idx], (*slice)[idx+1:]...)
	n.setParent(nil)
	return n
}

// Index returns n's position among c's direct children, or -1 if n is
// not currently a child of c.
func Index(c Container, n Node) int {
	for i, child := range c.Children() {
		if child == n {
			return i
		}
	}
	return -1
}

// resolveIndex turns ref, which per §4.3 may be either a child Node or
// an integer index, into a concrete index into c.Children(). The int
// form is a direct O(1) bounds check; the Node form still costs
// Index's O(n) identity scan.
func resolveIndex(c Container, ref interface{}) (int, error) {
	switch v := ref.(type) {
	case int:
		if v < 0 || v >= len(c.Children()) {
			return -1, notAChild(c, nil)
		}
		return v, nil
	case Node:
		idx := Index(c, v)
		if idx < 0 {
			return -1, notAChild(c, v)
		}
		return idx, nil
	default:
		panic("ast: ref must be a Node or an int index")
	}
}

// Some reports whether fn returns true for at least one direct child of
// c. It does not recurse.
func Some(c Container, fn func(Node) bool) bool {
	for _, n := range c.Children() {
		if fn(n) {
			return true
		}
	}
	return false
}

// Every reports whether fn returns true for every direct child of c
// (vacuously true for an empty container). It does not recurse.
func Every(c Container, fn func(Node) bool) bool {
	for _, n := range c.Children() {
		if !fn(n) {
			return false
		}
	}
	return true
}

// Each walks c's direct children, calling fn for each in order, using
// the safe iteration contract of §4.3/§9: fn may append, remove, or
// reorder children of c during the walk without the walk skipping or
// repeating an unrelated child. The rule (§9): after fn runs for the
// child currently at cursor i, re-locate that same child by identity in
// c's (possibly now different) child slice. If it is still present,
// resume at its new index plus one. If it was removed, the next child
// has shifted down into index i, so resume at i unchanged. Iteration
// stops once fn has been called for every child that exists at the
// moment it is reached; children appended ahead of the cursor during
// the walk are still visited, matching a live re-read of c.Children()
// on each step.
//
// If fn returns a non-nil error, iteration terminates immediately and
// Each returns that error unchanged (§4.3's stop sentinel): return Stop
// to end the walk deliberately, or any other error to abort it and
// propagate the failure to Each's caller. A walk that runs to
// completion returns nil.
func Each(c Container, fn func(Node) error) error {
	i := 0
	for i < len(c.Children()) {
		n := c.Children()[i]
		if err := fn(n); err != nil {
			return err
		}
		if idx := Index(c, n); idx >= 0 {
			i = idx + 1
		}
		// else: n was removed; the next child slid into index i.
	}
	return nil
}

// eachDescendant is the recursive engine behind EachDecl/EachRule/
// EachAtRule/EachComment (§4.3: "recursive variants, depth-first
// pre-order"): it visits every child of c using Each's safe-iteration
// cursor, and after visiting a child that is itself a Container (a Rule
// or AtRule body), descends into it before advancing the cursor, so a
// node is always visited before its own children.
func eachDescendant(c Container, visit func(Node) error) error {
	return Each(c, func(n Node) error {
		if err := visit(n); err != nil {
			return err
		}
		if nested, ok := n.(Container); ok {
			return eachDescendant(nested, visit)
		}
		return nil
	})
}

// EachDecl recursively walks c's Declaration descendants, depth-first
// pre-order, skipping any other node kind.
func EachDecl(c Container, fn func(*Declaration) error) error {
	return eachDescendant(c, func(n Node) error {
		if d, ok := n.(*Declaration); ok {
			return fn(d)
		}
		return nil
	})
}

// EachRule recursively walks c's Rule descendants, depth-first
// pre-order.
func EachRule(c Container, fn func(*Rule) error) error {
	return eachDescendant(c, func(n Node) error {
		if r, ok := n.(*Rule); ok {
			return fn(r)
		}
		return nil
	})
}

// EachAtRule recursively walks c's AtRule descendants, depth-first
// pre-order.
func EachAtRule(c Container, fn func(*AtRule) error) error {
	return eachDescendant(c, func(n Node) error {
		if a, ok := n.(*AtRule); ok {
			return fn(a)
		}
		return nil
	})
}

// EachComment recursively walks c's Comment descendants, depth-first
// pre-order.
func EachComment(c Container, fn func(*Comment) error) error {
	return eachDescendant(c, func(n Node) error {
		if cm, ok := n.(*Comment); ok {
			return fn(cm)
		}
		return nil
	})
}

// RemoveSelf detaches n from whatever container currently holds it, if
// any. It is a convenience wrapper over Remove for callers holding only
// the child, grounded on the same "remove yourself" shorthand every
// node API table in §4.3 lists.
func RemoveSelf(n Child) { Remove(n) }

// DeclShorthand describes a Declaration to be constructed in place by
// one of the container shorthand-insertion helpers (§4.3's "shorthand
// construction" row), so callers building a tree by hand do not have to
// call NewDeclaration and Append separately.
type DeclShorthand struct {
	Prop  string
	Value string
}

// RuleShorthand describes a Rule to be constructed in place.
type RuleShorthand struct {
	Selector string
}

// AtRuleShorthand describes an AtRule to be constructed in place.
type AtRuleShorthand struct {
	Name   string
	Params string
}

// AppendShorthand builds a concrete node from one of the shorthand
// descriptor types and appends it to c. It panics if v is not one of
// DeclShorthand, RuleShorthand, or AtRuleShorthand, since that is a
// programming error, not a structural-misuse condition the caller
// should handle.
func AppendShorthand(c Container, v interface{}) error {
	return Append(c, shorthandToNode(v))
}

func shorthandToNode(v interface{}) Child {
	switch s := v.(type) {
	case DeclShorthand:
		return NewDeclaration(s.Prop, s.Value)
	case RuleShorthand:
		return NewRule(s.Selector)
	case AtRuleShorthand:
		return NewAtRule(s.Name, s.Params)
	default:
		panic("ast: not a node shorthand")
	}
}

// promote notifies c of a newly inserted child, fixing an at-rule's
// shape on its first structural child (§3, §4.2).
func promote(c Container, n Node) {
	if a, ok := c.(*AtRule); ok {
		a.promoteShape(n)
	}
}

// detach removes n from its current parent, if it has one distinct
// from the container being inserted into.
func detach(n Child) {
	if n.Parent() != nil {
		Remove(n)
	}
}

func insertAt(c Container, idx int, n Node) {
	slice := c.childSlice()
	*slice = append(*slice, nil)
	copy((*slice)[idx+1:], (*slice)[idx:])
	(*slice)[idx] = n
}

func removeFromSlice(slice *[]Node, n Node) {
	for i, child := range *slice {
		if child == n {
			*slice = append((*slice)[:i], (*slice)[i+1:]...)
			return
		}
	}
}

func notAChild(c Container, ref Node) error {
	return &csserror.StructuralError{Message: "reference node is not a child of this container"}
}
