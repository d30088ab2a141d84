package csstree

import (
	"github.com/charmbracelet/log"

	"github.com/benbjohnson/csstree/ast"
	"github.com/benbjohnson/csstree/csserror"
	"github.com/benbjohnson/csstree/parser"
	"github.com/benbjohnson/csstree/sourcemap"
	"github.com/benbjohnson/csstree/stringify"
)

// Options configures Parse. The only recognized field beyond the
// ambient diagnostics hook is From, mirroring §6's configuration
// surface ("from", "to", "map" are the only keys the core recognizes;
// everything else is left for a caller's own tooling).
type Options struct {
	// From is the input file identifier recorded on every node's
	// Source.File. It is also used as the "file" segment of any
	// syntax error raised while parsing. May be left empty.
	From string

	// DiagnosticsLogger, if non-nil, receives low-severity notices for
	// the parser's spec-sanctioned silent recoveries (a dropped stray
	// semicolon, an at-rule's shape being fixed). It never receives
	// syntax errors: those are always returned, never logged. The
	// zero value is a no-op, matching the teacher's original warn/warnf
	// helpers defaulting to off unless a caller wires something up.
	DiagnosticsLogger *log.Logger
}

// Parse parses text into a Root.
func Parse(text string, opts Options) (*ast.Root, error) {
	return parser.Parse(text, opts.From, diagnosticsFunc(opts.DiagnosticsLogger))
}

func diagnosticsFunc(logger *log.Logger) func(string) {
	if logger == nil {
		return nil
	}
	return func(msg string) { logger.Debug(msg) }
}

// MapOption controls whether Stringify produces a source map and, if
// so, what upstream map (if any) it composes through (§4.5, §6).
type MapOption struct {
	Enabled  bool
	Upstream *sourcemap.V3
}

// StringifyOptions configures Stringify (§6).
type StringifyOptions struct {
	// To is the output file identifier recorded in a produced source
	// map's "file" key. May be left empty.
	To string

	// From overrides the input file identifier used for mappings when
	// a node's own Source.File is empty (e.g. a node synthesized by a
	// transformation, which has no Source at all).
	From string

	Map               MapOption
	DiagnosticsLogger *log.Logger
}

// Result is what Stringify returns: the rendered CSS text and,
// optionally, a JSON-encoded Source Map v3 document (§6).
type Result struct {
	CSS string
	Map string
}

// Stringify renders root to CSS text, optionally producing a source
// map. Per §7, either both CSS and Map are produced or the call fails
// outright: no partial Result is ever returned alongside an error.
func Stringify(root *ast.Root, opts StringifyOptions) (Result, error) {
	var builder *sourcemap.Builder
	if opts.Map.Enabled {
		builder = sourcemap.NewBuilder(opts.To)
	}

	css, err := stringify.Stringify(root, mappingFunc(builder, opts.From))
	if err != nil {
		return Result{}, err
	}
	result := Result{CSS: css}

	if builder != nil {
		final := builder
		if opts.Map.Upstream != nil {
			upstream, err := sourcemap.NewConsumer(opts.Map.Upstream)
			if err != nil {
				return Result{}, err
			}
			final = builder.Compose(upstream)
		}
		data, err := final.JSON()
		if err != nil {
			return Result{}, err
		}
		result.Map = string(data)
	}
	return result, nil
}

// mappingFunc adapts a sourcemap.Builder into the stringify.Mapping
// callback, falling back to from when a node's own Source.File is
// empty (synthesized nodes carry no file of their own).
func mappingFunc(builder *sourcemap.Builder, from string) stringify.Mapping {
	if builder == nil {
		return nil
	}
	return func(n ast.Node, outLine, outColumn int) {
		span, ok := sourceSpan(n)
		if !ok {
			return
		}
		source := span.File
		if source == "" {
			source = from
		}
		builder.Add(outLine, outColumn, source, span.Start.Line, span.Start.Column, "")
	}
}

func sourceSpan(n ast.Node) (ast.Span, bool) {
	switch v := n.(type) {
	case *ast.Rule:
		return v.Source, true
	case *ast.AtRule:
		return v.Source, true
	case *ast.Declaration:
		return v.Source, true
	case *ast.Comment:
		return v.Source, true
	default:
		return ast.Span{}, false
	}
}

// DecodeSourceMap decodes a Source Map v3 JSON document, for use as
// StringifyOptions.Map.Upstream (§6's "consumed as either a
// JSON-encoded string or a decoded tree").
func DecodeSourceMap(data []byte) (*sourcemap.V3, error) {
	return sourcemap.Decode(data)
}

// Root returns a new, empty, detached Root.
func Root() *ast.Root { return ast.NewRoot() }

// Rule returns a new, detached Rule with the given selector.
func Rule(selector string) *ast.Rule { return ast.NewRule(selector) }

// AtRule returns a new, detached, childless AtRule.
func AtRule(name, params string) *ast.AtRule { return ast.NewAtRule(name, params) }

// Decl returns a new, detached Declaration.
func Decl(prop, value string) *ast.Declaration { return ast.NewDeclaration(prop, value) }

// Comment returns a new, detached Comment.
func Comment(content string) *ast.Comment { return ast.NewComment(content) }

// Wrap applies the transformation contract of §6: any error a
// transformation raises is wrapped to record which plugin raised it,
// unless it is already a *csserror.SyntaxError (always surfaced as-is)
// or already wrapped.
func Wrap(plugin string, err error) error { return csserror.Wrap(plugin, err) }
