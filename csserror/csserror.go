// Package csserror implements the three error kinds of §7: syntax
// errors the parser raises, structural-misuse errors the node tree
// raises, and plugin errors a transformation raises. The teacher
// package collapses all of this into a single Error{Message, Pos}
// struct (css.go); this package keeps that struct's directness but
// gives each kind in §7 its own type, wired together with the
// errors.Unwrap support the teacher's pre-1.13 original never had.
package csserror

import (
	"fmt"
	"strconv"
	"strings"
)

// Position is the 1-indexed line/column a SyntaxError points at.
type Position struct {
	Line   int
	Column int
}

// SyntaxError is raised when the parser cannot proceed. It is never
// recovered internally (§7): it always reaches the caller.
type SyntaxError struct {
	Reason string
	File   string
	Pos    Position
	Source string // the full original input, for excerpt rendering
	Plugin string
}

// Error renders the message form specified in §4.6:
// "[plugin: ]<file-or-"<css input>">:LINE:COL: REASON".
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s%s:%d:%d: %s", pluginPrefix(e.Plugin), fileOrDefault(e.File), e.Pos.Line, e.Pos.Column, e.Reason)
}

// Excerpt renders the three-line source excerpt described in §4.6: the
// preceding line, the offending line with a caret under the column,
// and the following line. It returns "" if no source text was
// attached to the error.
func (e *SyntaxError) Excerpt() string {
	if e.Source == "" {
		return ""
	}
	lines := strings.Split(e.Source, "\n")
	idx := e.Pos.Line - 1
	if idx < 0 || idx >= len(lines) {
		return ""
	}

	var b strings.Builder
	if idx > 0 {
		writeNumberedLine(&b, idx, lines[idx-1])
	}
	writeNumberedLine(&b, idx+1, lines[idx])

	col := e.Pos.Column
	if col < 1 {
		col = 1
	}
	gutter := strings.Repeat(" ", len(lineNumber(idx+1))+3)
	b.WriteString(gutter)
	b.WriteString(strings.Repeat(" ", col-1))
	b.WriteString("^\n")

	if idx+1 < len(lines) {
		writeNumberedLine(&b, idx+2, lines[idx+1])
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeNumberedLine(b *strings.Builder, n int, text string) {
	b.WriteString(lineNumber(n))
	b.WriteString(" | ")
	b.WriteString(text)
	b.WriteString("\n")
}

func lineNumber(n int) string { return strconv.Itoa(n) }

func fileOrDefault(file string) string {
	if file == "" {
		return `<css input>`
	}
	return file
}

func pluginPrefix(plugin string) string {
	if plugin == "" {
		return ""
	}
	return plugin + ": "
}

// StructuralError is raised when a container mutation would produce a
// child kind incompatible with its determined shape (§7), e.g. adding a
// Rule to a declaration-container at-rule. It carries no position.
type StructuralError struct {
	Message string
}

func (e *StructuralError) Error() string { return e.Message }

// PluginError wraps any error raised from within a user transformation
// (§7), recording which plugin raised it. Unwrap exposes the original
// error for errors.As/errors.Is.
type PluginError struct {
	Plugin string
	Err    error
}

func (e *PluginError) Error() string {
	if e.Plugin == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Plugin, e.Err.Error())
}

func (e *PluginError) Unwrap() error { return e.Err }

// Wrap wraps err as a PluginError attributed to plugin, unless err is
// already a *SyntaxError (which is always surfaced as-is, per §7) or
// already a *PluginError (avoids double-wrapping).
func Wrap(plugin string, err error) error {
	if err == nil {
		return nil
	}
	switch err.(type) {
	case *SyntaxError, *PluginError:
		return err
	default:
		return &PluginError{Plugin: plugin, Err: err}
	}
}
