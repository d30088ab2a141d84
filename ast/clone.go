package ast

// Clone deep-copies a node tree (§3's lifecycle, §12): the result is
// fully detached (its Parent is nil, and so is every descendant's
// former sibling relationship save for the copied structure itself),
// and every raw record is copied by value rather than shared, so
// mutating the clone's raw selector/params/value can never reach back
// into the original.

// Clone returns a detached deep copy of r, including every descendant.
func (r *Root) Clone() *Root {
	clone := &Root{After: r.After}
	for _, c := range r.children {
		child := cloneChild(c).(Child)
		child.setParent(clone)
		clone.children = append(clone.children, child)
	}
	return clone
}

// Clone returns a detached deep copy of r, including every descendant.
// The copy's parent is nil regardless of r's own parent.
func (r *Rule) Clone() *Rule {
	clone := &Rule{
		nodeBase:    nodeBase{Before: r.Before, Source: r.Source},
		selector:    r.selector,
		selectorRaw: r.selectorRaw.clone(),
		Between:     r.Between,
		Semicolon:   r.Semicolon,
		After:       r.After,
	}
	for _, c := range r.children {
		child := cloneChild(c).(Child)
		child.setParent(clone)
		clone.children = append(clone.children, child)
	}
	return clone
}

// Clone returns a detached deep copy of a, including every descendant.
func (a *AtRule) Clone() *AtRule {
	clone := &AtRule{
		nodeBase:  nodeBase{Before: a.Before, Source: a.Source},
		Name:      a.Name,
		params:    a.params,
		paramsRaw: a.paramsRaw.clone(),
		Between:   a.Between,
		HasBody:   a.HasBody,
		Shape:     a.Shape,
		Semicolon: a.Semicolon,
		After:     a.After,
	}
	for _, c := range a.children {
		child := cloneChild(c).(Child)
		child.setParent(clone)
		clone.children = append(clone.children, child)
	}
	return clone
}

// Clone returns a detached deep copy of d.
func (d *Declaration) Clone() *Declaration {
	return &Declaration{
		nodeBase:  nodeBase{Before: d.Before, Source: d.Source},
		Prop:      d.Prop,
		value:     d.value,
		Between:   d.Between,
		valueRaw:  d.valueRaw.clone(),
		Important: d.Important,
	}
}

// Clone returns a detached deep copy of c.
func (c *Comment) Clone() *Comment {
	return &Comment{
		nodeBase: nodeBase{Before: c.Before, Source: c.Source},
		Content:  c.Content,
	}
}

func cloneChild(n Node) Node {
	switch v := n.(type) {
	case *Rule:
		return v.Clone()
	case *AtRule:
		return v.Clone()
	case *Declaration:
		return v.Clone()
	case *Comment:
		return v.Clone()
	default:
		panic("ast: unreachable node kind in clone")
	}
}

func (raw *RawValue) clone() *RawValue {
	if raw == nil {
		return nil
	}
	cp := *raw
	return &cp
}
