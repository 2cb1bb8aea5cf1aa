package core

import (
	"fmt"
	"strings"
)

type BufferKind int

const (
	BufferMarkup BufferKind = iota
	BufferStyles
	BufferScript
)

// BufferKinds lists every kind in composition order.
var BufferKinds = []BufferKind{BufferMarkup, BufferStyles, BufferScript}

func (k BufferKind) String() string {
	switch k {
	case BufferMarkup:
		return "markup"
	case BufferStyles:
		return "styles"
	case BufferScript:
		return "script"
	}
	return fmt.Sprintf("BufferKind(%d)", int(k))
}

func (k BufferKind) Valid() bool {
	return k >= BufferMarkup && k <= BufferScript
}

// ParseBufferKind accepts the wire names and the html/css/js aliases used by
// stored projects.
func ParseBufferKind(s string) (BufferKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markup", "html":
		return BufferMarkup, nil
	case "styles", "style", "css":
		return BufferStyles, nil
	case "script", "js", "javascript":
		return BufferScript, nil
	}
	return 0, fmt.Errorf("%w: unknown buffer kind %q", ErrInvalidInput, s)
}

func (k BufferKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: buffer kind %d", ErrInvalidInput, int(k))
	}
	return []byte(k.String()), nil
}

func (k *BufferKind) UnmarshalText(text []byte) error {
	parsed, err := ParseBufferKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Sources is the markup/styles/script triple.
type Sources struct {
	Markup string `json:"markup"`
	Styles string `json:"styles"`
	Script string `json:"script"`
}

func (s Sources) Get(kind BufferKind) string {
	switch kind {
	case BufferStyles:
		return s.Styles
	case BufferScript:
		return s.Script
	default:
		return s.Markup
	}
}

func (s *Sources) Set(kind BufferKind, value string) {
	switch kind {
	case BufferStyles:
		s.Styles = value
	case BufferScript:
		s.Script = value
	default:
		s.Markup = value
	}
}
