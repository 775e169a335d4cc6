package prompt

import (
	"errors"
	"html"
	"net/url"
	"strings"
	"unicode/utf8"
)

var (
	ErrEmpty        = errors.New("prompt is empty")
	ErrTooShort     = errors.New("prompt is too short")
	ErrTooLong      = errors.New("prompt is too long")
	ErrUnknownStyle = errors.New("unknown style")
)

// Request is a validated prompt ready for the generation provider.
type Request struct {
	// Prompt is the trimmed user text, stored as-is.
	Prompt string
	// Display is Prompt with markup-unsafe characters escaped.
	Display   string
	Style     Style
	Completed string
	Encoded   string
}

// Sanitizer bounds prompt length in runes.
type Sanitizer struct {
	MinLength int
	MaxLength int
}

func NewSanitizer(minLength, maxLength int) Sanitizer {
	return Sanitizer{MinLength: minLength, MaxLength: maxLength}
}

func (s Sanitizer) Sanitize(rawPrompt, rawStyle string) (Request, error) {
	text := strings.TrimSpace(rawPrompt)
	length := utf8.RuneCountInString(text)

	switch {
	case length == 0:
		return Request{}, ErrEmpty
	case length < s.MinLength:
		return Request{}, ErrTooShort
	case length > s.MaxLength:
		return Request{}, ErrTooLong
	}

	styleID := strings.TrimSpace(rawStyle)
	if styleID == "" {
		styleID = StyleNone
	}
	style, ok := LookupStyle(styleID)
	if !ok {
		return Request{}, ErrUnknownStyle
	}

	display := html.EscapeString(text)
	completed := display
	if style.Fragment != "" {
		completed = display + ", " + style.Fragment
	}

	return Request{
		Prompt:    text,
		Display:   display,
		Style:     style,
		Completed: completed,
		Encoded:   url.PathEscape(completed),
	}, nil
}
