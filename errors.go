package tagweave

import (
	"errors"
	"fmt"
	"strings"
)

// Position represents a position inside a text part.
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number (bytes)
}

// String returns a string representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// positionAt converts a byte offset within text into a Position.
func positionAt(text string, offset int) Position {
	if offset > len(text) {
		offset = len(text)
	}
	before := text[:offset]
	line := strings.Count(before, "\n") + 1
	col := offset - strings.LastIndexByte(before, '\n')
	return Position{Line: line, Column: col}
}

// ParseError is the base error type for all parsing errors.
type ParseError struct {
	Pos     Position // Position where the error occurred
	Message string   // Error message
	Context string   // Surrounding content for context
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s at %s\nContext: %s", e.Message, e.Pos, e.Context)
	}
	return fmt.Sprintf("%s at %s", e.Message, e.Pos)
}

// MalformedTagError reports a tag head that could not be parsed: an invalid
// name, a head that never terminates or a raw '<' inside the head.
type MalformedTagError struct {
	ParseError
	TagName string // Name of the malformed tag, empty when the name itself is invalid
}

// Error implements the error interface.
func (e *MalformedTagError) Error() string {
	return fmt.Sprintf("malformed tag <%s> at %s: %s\nContext: %s",
		e.TagName, e.Pos, e.Message, e.Context)
}

// AttributeParsingError represents an error when parsing tag attributes.
type AttributeParsingError struct {
	ParseError
	TagName       string // Name of the tag with the attribute error
	AttributeName string // Name of the problematic attribute, if known
}

// Error implements the error interface.
func (e *AttributeParsingError) Error() string {
	if e.AttributeName != "" {
		return fmt.Sprintf("error parsing attribute '%s' in tag <%s> at %s: %s\nContext: %s",
			e.AttributeName, e.TagName, e.Pos, e.Message, e.Context)
	}
	return fmt.Sprintf("error parsing attributes in tag <%s> at %s: %s\nContext: %s",
		e.TagName, e.Pos, e.Message, e.Context)
}

// UnmatchedTagError represents a closing tag that doesn't match any open tag.
type UnmatchedTagError struct {
	ParseError
	TagName string // Name of the unmatched tag
}

// Error implements the error interface.
func (e *UnmatchedTagError) Error() string {
	return fmt.Sprintf("unmatched closing tag </%s> at %s\nContext: %s",
		e.TagName, e.Pos, e.Context)
}

var (
	// ErrInvalidName is returned when a lookup name is empty or is not a
	// valid tag identifier.
	ErrInvalidName = errors.New("invalid tag name")
	// ErrNilReplacer is returned when Replace is called without a replacer.
	ErrNilReplacer = errors.New("nil replacer")
)

// ContractError reports invalid arguments passed to the query API. It is
// never produced by malformed content.
type ContractError struct {
	Op   string // API operation, e.g. "first"
	Name string // Offending tag name
	Err  error  // ErrInvalidName or ErrNilReplacer
}

// Error implements the error interface.
func (e *ContractError) Error() string {
	return fmt.Sprintf("tagweave: %s %q: %v", e.Op, e.Name, e.Err)
}

// Unwrap exposes the sentinel error.
func (e *ContractError) Unwrap() error { return e.Err }

// NewParseError creates a new ParseError with context.
func NewParseError(pos Position, message, context string) *ParseError {
	return &ParseError{
		Pos:     pos,
		Message: message,
		Context: extractContext(context, pos),
	}
}

// NewMalformedTagError creates a new MalformedTagError.
func NewMalformedTagError(pos Position, tagName, message, context string) *MalformedTagError {
	return &MalformedTagError{
		ParseError: ParseError{
			Pos:     pos,
			Message: message,
			Context: extractContext(context, pos),
		},
		TagName: tagName,
	}
}

// NewAttributeParsingError creates a new AttributeParsingError.
func NewAttributeParsingError(pos Position, tagName, attrName, message, context string) *AttributeParsingError {
	return &AttributeParsingError{
		ParseError: ParseError{
			Pos:     pos,
			Message: message,
			Context: extractContext(context, pos),
		},
		TagName:       tagName,
		AttributeName: attrName,
	}
}

// NewUnmatchedTagError creates a new UnmatchedTagError.
func NewUnmatchedTagError(pos Position, tagName, context string) *UnmatchedTagError {
	return &UnmatchedTagError{
		ParseError: ParseError{
			Pos:     pos,
			Message: "closing tag has no matching opening tag",
			Context: extractContext(context, pos),
		},
		TagName: tagName,
	}
}

// extractContext extracts a snippet of text around the error position.
// It includes a few lines before and after the error line.
func extractContext(content string, pos Position) string {
	if content == "" {
		return ""
	}

	lines := strings.Split(content, "\n")
	if pos.Line > len(lines) {
		return content
	}

	startLine := max(0, pos.Line-3)
	endLine := min(len(lines)-1, pos.Line+1)

	var contextBuilder strings.Builder
	for i := startLine; i <= endLine; i++ {
		lineNum := i + 1
		if lineNum == pos.Line {
			contextBuilder.WriteString(fmt.Sprintf("-> %d: %s\n", lineNum, lines[i]))

			if pos.Column <= len(lines[i])+1 {
				contextBuilder.WriteString(strings.Repeat(" ", pos.Column+5) + "^\n")
			}
		} else {
			contextBuilder.WriteString(fmt.Sprintf("   %d: %s\n", lineNum, lines[i]))
		}
	}

	return contextBuilder.String()
}
