/*
Package csstree implements a lossless CSS parser, an editable node
tree, a stringifier, and a source map engine. This is meant to be a
low-level library for tools that need to read CSS, change a handful of
nodes, and write it back out with everything else byte-for-byte
unchanged.

This package does not understand CSS semantics: it has no notion of
cascade, specificity, selector matching, or what a property value
means. Selectors, at-rule params, and declaration values are opaque
strings as far as this package is concerned. A plugin pipeline, a CLI,
or colorized error output built on top of this package is left to the
caller.


Basics

Turning CSS text into a tree happens in three steps. First the scanner
breaks the input into tokens: runs of whitespace, strings, comments,
identifier-like words, and single-character punctuation. Second the
parser consumes those tokens and builds a Root. Unlike many language
parsers, every node also keeps the original bytes it was built from, so
stringifying an untouched tree reproduces the input exactly, and
stringifying a tree with one changed node reproduces everything else
unchanged.

An at-rule's body shape (whether it holds declarations, like
@font-face, or rules, like @media) isn't known until either the parser
sees the first thing inside the braces, or a caller appends the first
child to a hand-built at-rule. This package doesn't understand the
grammar inside an at-rule's body beyond that; callers wanting to
interpret @media's params or similar handle it themselves.


Abstract Syntax Tree

The tree has five node kinds, all in package ast. Root is the
top-level container: an ordered sequence of Comment, AtRule, and Rule
children. A Rule carries a selector and a body of Declaration and
Comment children. An AtRule carries a name and params, and is either
childless, a declaration-container, or a rule-container, depending on
its shape. A Declaration is a property/value pair with no children of
its own. A Comment is a preserved CSS comment block that sits between
structural nodes; comments elsewhere are folded into whichever node's
raw record they interrupt.

Every node carries a source span recording where it came from in the
input. Every non-root node carries a `before` string: the whitespace
and comments that preceded it. Mutating a tree through ast's container
operations (Append, Prepend, InsertBefore, Remove, and so on) keeps
parent links and at-rule shapes consistent, including a safe iteration
contract for adding or removing children while walking a container.


Stringifying and source maps

Package stringify walks a tree back into CSS text, preferring each
node's original bytes whenever the corresponding cleaned value hasn't
changed since parsing, and falling back to a style inherited from a
sibling for nodes a caller built by hand. Package sourcemap builds a
Source Map v3 document alongside the stringified text and can compose
the result through an upstream map supplied by the caller.
*/
package csstree
