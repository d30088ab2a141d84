// Package parser implements the recursive-descent parser of §4.2: it
// consumes the scanner's token stream and produces an *ast.Root.
//
// The teacher's parser (parser/parser.go) is a single struct holding a
// Scanner lookahead and an error list, built around `consumeX` method
// names; this package keeps the one-struct, one-token-lookahead shape
// (its productions are named parseX) but the grammar itself is new, since
// the teacher parses a generic ComponentValue tree and this one parses
// the raw-preserving Root/Rule/AtRule/Declaration/Comment tree of §3.
package parser

import (
	"fmt"
	"strings"

	"github.com/benbjohnson/csstree/ast"
	"github.com/benbjohnson/csstree/csserror"
	"github.com/benbjohnson/csstree/scanner"
	"github.com/benbjohnson/csstree/token"
)

// File identifies the parsed input for error messages and node source
// spans; it is the empty string by default (§4.6: renders as the
// literal "<css input>").
type parser struct {
	src  string
	file string
	scan *scanner.Scanner
	tok  token.Token
	err  error // not assigned: scanner errors are returned by next() as they occur

	before strings.Builder // pending before-buffer for the next structural node
	diag   func(string)    // optional diagnostics callback, see Options

	lastDeclSemi bool // whether the most recently parsed declaration had a trailing ';'
}

// Parse parses src into a Root. file is attached to every node's
// source span and used in syntax error messages; it may be empty. diag,
// if non-nil, is called with a human-readable note whenever the parser
// takes a silently-recovering path (dropping a stray semicolon), per
// the Open Question decision recorded in DESIGN.md, and whenever an
// at-rule's body fixes its shape.
func Parse(src, file string, diag func(string)) (*ast.Root, error) {
	p := &parser{src: src, file: file, scan: scanner.New(src), diag: diag}
	if err := p.next(); err != nil {
		return nil, err
	}
	root := ast.NewRoot()
	if err := p.parseContainerBody(root, token.EOF); err != nil {
		return nil, err
	}
	root.After = p.before.String()
	return root, nil
}

// next advances to the next token, surfacing scanner errors as
// *csserror.SyntaxError.
func (p *parser) next() error {
	tok, err := p.scan.Scan()
	if err != nil {
		return p.scannerError(err)
	}
	p.tok = tok
	return nil
}

func (p *parser) scannerError(err error) error {
	if serr, ok := err.(*scanner.Error); ok {
		return &csserror.SyntaxError{
			Reason: serr.Message,
			File:   p.file,
			Pos:    csserror.Position{Line: serr.Pos.Line, Column: serr.Pos.Column},
			Source: p.src,
		}
	}
	return err
}

func (p *parser) syntaxErrorAt(pos token.Position, reason string) error {
	return &csserror.SyntaxError{
		Reason: reason,
		File:   p.file,
		Pos:    csserror.Position{Line: pos.Line, Column: pos.Column},
		Source: p.src,
	}
}

// takeBefore returns and clears the accumulated before-buffer.
func (p *parser) takeBefore() string {
	s := p.before.String()
	p.before.Reset()
	return s
}

// skipTrivia appends whitespace/comment tokens to the pending before
// buffer, emitting standalone block comments as Comment nodes into dst
// when dst is non-nil (§4.2's "standalone block comment... becomes a
// Comment node"). A comment is standalone if it sits on its own
// surrounded only by whitespace between structural nodes, which is
// exactly the comments this loop sees: anything appearing mid-selector
// or mid-value is consumed by the selector/value scanning routines
// instead and never reaches this loop.
func (p *parser) skipTrivia(dst ast.Container) error {
	for {
		switch p.tok.Kind {
		case token.Space:
			p.before.WriteString(p.tok.Value)
			if err := p.next(); err != nil {
				return err
			}
		case token.Comment:
			if dst != nil {
				c := ast.NewComment(trimComment(p.tok.Value))
				c.Before = p.takeBefore()
				c.Source = sourceSpan(p.file, p.tok.Start, p.tok.End)
				if err := ast.Append(dst, c); err != nil {
					return err
				}
			} else {
				p.before.WriteString(p.tok.Value)
			}
			if err := p.next(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func trimComment(raw string) string {
	s := strings.TrimPrefix(raw, "/*")
	s = strings.TrimSuffix(s, "*/")
	return strings.TrimSpace(s)
}

// parseContainerBody parses structural nodes into c until end is seen
// (token.BraceClose for a nested body, token.EOF at the root). The
// closing token itself is left un-consumed by the end-of-loop check
// that detects it, since callers need to know whether EOF was reached
// without a BraceClose (unclosed-block detection lives in the At-rule
// and Rule callers, which know the construct's start position).
func (p *parser) parseContainerBody(c ast.Container, end token.Kind) error {
	for {
		if err := p.skipTrivia(c); err != nil {
			return err
		}
		if p.tok.Kind == end {
			return nil
		}
		if p.tok.Kind == token.EOF {
			return nil
		}
		if err := p.parseStructuralNode(c); err != nil {
			return err
		}
	}
}

// parseStructuralNode parses exactly one structural node (at-rule,
// rule, or declaration, depending on the container's kind and the
// current token) and appends it to c.
func (p *parser) parseStructuralNode(c ast.Container) error {
	before := p.takeBefore()

	if p.tok.Kind == token.Semicolon {
		// Stray semicolon: dropped silently, merged into the next
		// before buffer (§4.2, §9 Open Question).
		p.before.WriteString(before)
		if p.diag != nil {
			p.diag("dropped stray semicolon with no preceding declaration")
		}
		return p.next()
	}

	if p.tok.Kind == token.AtWord {
		return p.parseAtRule(c, before)
	}

	if _, ok := c.(*ast.Root); ok {
		return p.parseRule(c, before)
	}
	return p.parseDeclarationOrRule(c, before)
}

// parseDeclarationOrRule handles the body of a Rule or a
// declaration/rule-container AtRule: it decides between a Declaration
// and a nested Rule by scanning ahead for a top-level colon before a
// semicolon or close-brace (§4.2).
func (p *parser) parseDeclarationOrRule(c ast.Container, before string) error {
	if p.looksLikeDeclaration() {
		return p.parseDeclaration(c, before)
	}
	return p.parseRule(c, before)
}

// looksLikeDeclaration scans the current run of tokens, without
// consuming any, to decide whether it is "prop : value" (a
// Declaration) or a selector run ending in a brace-open (a nested
// Rule). A selector's run always terminates at a brace-open, even when
// it contains colons of its own (pseudo-classes such as ":hover"); a
// declaration's run always terminates at a semicolon or brace-close
// first. So the decision is simply which of the three is reached first
// at paren-depth zero.
func (p *parser) looksLikeDeclaration() bool {
	save := p.scan.Save()
	defer p.scan.Restore(save)

	tok := p.tok
	depth := 0
	for {
		switch tok.Kind {
		case token.ParenOpen:
			depth++
		case token.ParenClose:
			if depth > 0 {
				depth--
			}
		case token.BraceOpen:
			if depth == 0 {
				return false
			}
		case token.Semicolon, token.BraceClose:
			if depth == 0 {
				return true
			}
		case token.EOF:
			return true
		}
		next, err := p.scan.Scan()
		if err != nil {
			return false
		}
		tok = next
	}
}

// parseAtRule parses "@name params" followed by either ";" (childless)
// or a "{"-delimited body (§4.2).
func (p *parser) parseAtRule(c ast.Container, before string) error {
	startPos := p.tok.Start
	name := strings.TrimPrefix(p.tok.Value, "@")
	if err := p.next(); err != nil {
		return err
	}

	paramsRawFull, params, err := p.scanRun(token.Semicolon, token.BraceOpen)
	if err != nil {
		return err
	}
	paramsRaw, between := splitTrailingSpace(paramsRawFull)

	at := ast.NewAtRule(name, params)
	at.Before = before
	at.Between = between
	at.SetRawParams(&ast.RawValue{Raw: paramsRaw, Value: params})

	switch p.tok.Kind {
	case token.Semicolon:
		if err := p.next(); err != nil {
			return err
		}
	case token.BraceOpen:
		if err := p.next(); err != nil {
			return err
		}
		at.HasBody = true
		if err := p.parseContainerBody(at, token.BraceClose); err != nil {
			return err
		}
		if p.diag != nil && at.Shape != ast.ShapeUnknown {
			kind := "rule-container"
			if at.Shape == ast.ShapeDeclarations {
				kind = "declaration-container"
			}
			p.diag(fmt.Sprintf("at-rule @%s determined to be %s", at.Name, kind))
		}
		at.After = p.takeBefore()
		if children := at.Children(); len(children) > 0 {
			if _, ok := children[len(children)-1].(*ast.Declaration); ok {
				at.Semicolon = p.lastDeclSemi
			}
		}
		if p.tok.Kind != token.BraceClose {
			return p.syntaxErrorAt(startPos, "unclosed block")
		}
		if err := p.next(); err != nil {
			return err
		}
	default:
		return p.syntaxErrorAt(p.tok.Start, "expected ';' or '{' after at-rule params")
	}

	at.Source = sourceSpan(p.file, startPos, p.tok.Start)
	return ast.Append(c, at)
}

// parseRule parses a selector run up to "{" followed by a
// "}"-delimited body of declarations/comments (§4.2).
func (p *parser) parseRule(c ast.Container, before string) error {
	startPos := p.tok.Start
	selectorRawFull, selector, err := p.scanRun(token.BraceOpen)
	if err != nil {
		return err
	}
	if p.tok.Kind != token.BraceOpen {
		return p.syntaxErrorAt(p.tok.Start, "expected '{' to begin rule body")
	}
	if err := p.next(); err != nil {
		return err
	}
	selectorRaw, between := splitTrailingSpace(selectorRawFull)

	rule := ast.NewRule(selector)
	rule.Before = before
	rule.Between = between
	rule.SetRawSelector(&ast.RawValue{Raw: selectorRaw, Value: selector})

	if err := p.parseContainerBody(rule, token.BraceClose); err != nil {
		return err
	}
	rule.After = p.takeBefore()
	if children := rule.Children(); len(children) > 0 {
		if _, ok := children[len(children)-1].(*ast.Declaration); ok {
			rule.Semicolon = p.lastDeclSemi
		}
	}
	if p.tok.Kind != token.BraceClose {
		return p.syntaxErrorAt(startPos, "unclosed block")
	}
	if err := p.next(); err != nil {
		return err
	}
	rule.Source = sourceSpan(p.file, startPos, p.tok.Start)

	return ast.Append(c, rule)
}

// parseDeclaration parses "prop : value" terminated by ";" or the
// enclosing container's close-brace (§4.2). An empty value is a
// syntax error.
func (p *parser) parseDeclaration(c ast.Container, before string) error {
	startPos := p.tok.Start
	propRawFull, prop, err := p.scanRun(token.Colon)
	if err != nil {
		return err
	}
	if p.tok.Kind != token.Colon {
		return p.syntaxErrorAt(p.tok.Start, "expected ':' in declaration")
	}
	colonPos := p.tok.Start
	_, beforeColon := splitTrailingSpace(propRawFull)
	if err := p.next(); err != nil {
		return err
	}

	valueRawFull, value, err := p.scanRun(token.Semicolon, token.BraceClose)
	if err != nil {
		return err
	}
	if strings.TrimSpace(value) == "" {
		return p.syntaxErrorAt(colonPos, "empty declaration value")
	}
	afterColon, rest := splitLeadingSpace(valueRawFull)
	valueRaw, trailing := splitTrailingSpace(rest)

	decl := ast.NewDeclaration(strings.TrimSpace(prop), value)
	decl.Before = before
	decl.Between = beforeColon + ":" + afterColon
	decl.Important = hasImportant(value)
	decl.Source = sourceSpan(p.file, startPos, p.tok.Start)
	decl.SetRawValue(&ast.RawValue{Raw: valueRaw, Value: value})

	// The value run's trailing whitespace (before the ';' or '}' that
	// stopped the scan) belongs to whatever structural node follows,
	// not to this declaration's own value: push it back into the
	// before-buffer so it surfaces as the next sibling's Before or the
	// enclosing container's After (§3).
	p.before.WriteString(trailing)

	p.lastDeclSemi = p.tok.Kind == token.Semicolon
	if p.lastDeclSemi {
		if err := p.next(); err != nil {
			return err
		}
	}

	return ast.Append(c, decl)
}

// scanRun consumes tokens up to (but not including) the first
// occurrence of any of stop, returning both the raw concatenation and
// the cleaned (trimmed, comment-stripped) form. Reaching EOF inside an
// open parenthesis group is a syntax error at that group's '('.
func (p *parser) scanRun(stop ...token.Kind) (raw, cleaned string, err error) {
	var rawB, cleanedB strings.Builder
	depth := 0
	var openPos token.Position
	for {
		if depth == 0 && containsKind(stop, p.tok.Kind) {
			break
		}
		if p.tok.Kind == token.EOF {
			if depth > 0 {
				return "", "", p.syntaxErrorAt(openPos, "Unterminated parenthesis group")
			}
			break
		}
		switch p.tok.Kind {
		case token.ParenOpen:
			if depth == 0 {
				openPos = p.tok.Start
			}
			depth++
		case token.ParenClose:
			if depth > 0 {
				depth--
			}
		}
		rawB.WriteString(p.tok.Value)
		if p.tok.Kind != token.Comment {
			cleanedB.WriteString(p.tok.Value)
		}
		if err := p.next(); err != nil {
			return "", "", err
		}
	}
	return rawB.String(), strings.TrimSpace(cleanedB.String()), nil
}

// splitTrailingSpace splits s into its content and its trailing run of
// CSS whitespace bytes, used to pull the "between" spacing that
// precedes a structural delimiter (a rule's '{', an at-rule's '{' or
// ';') out of a scanned raw run, so it can be preserved independently
// of the selector/params raw record it was scanned alongside.
func splitTrailingSpace(s string) (content, trailing string) {
	i := len(s)
	for i > 0 && isCSSSpace(s[i-1]) {
		i--
	}
	return s[:i], s[i:]
}

// splitLeadingSpace is splitTrailingSpace's mirror, used to pull the
// whitespace immediately following a declaration's colon out of the
// scanned value run.
func splitLeadingSpace(s string) (leading, content string) {
	i := 0
	for i < len(s) && isCSSSpace(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

func isCSSSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	default:
		return false
	}
}

func containsKind(ks []token.Kind, k token.Kind) bool {
	for _, x := range ks {
		if x == k {
			return true
		}
	}
	return false
}

func hasImportant(value string) bool {
	trimmed := strings.TrimRight(value, " \t\n")
	return strings.HasSuffix(strings.ToLower(trimmed), "!important")
}

func sourceSpan(file string, start, end token.Position) ast.Span {
	return ast.Span{
		File:        file,
		Start:       ast.Pos{Line: start.Line, Column: start.Column},
		End:         ast.Pos{Line: end.Line, Column: end.Column},
		StartOffset: start.Offset,
		EndOffset:   end.Offset,
	}
}
