package types

import (
	"fmt"
	"strings"
	"time"
)

// Direction identifies one of the two supported translation directions.
type Direction string

const (
	DirectionUKEN Direction = "uk-en"
	DirectionENUK Direction = "en-uk"
)

// Directions lists every direction the server can be configured to serve.
func Directions() []Direction {
	return []Direction{DirectionUKEN, DirectionENUK}
}

// ParseDirection maps a source/target language pair onto a Direction.
// Language codes are compared case-insensitively.
func ParseDirection(sourceLang, targetLang string) (Direction, error) {
	src := strings.ToLower(strings.TrimSpace(sourceLang))
	dst := strings.ToLower(strings.TrimSpace(targetLang))
	switch {
	case src == "uk" && dst == "en":
		return DirectionUKEN, nil
	case src == "en" && dst == "uk":
		return DirectionENUK, nil
	}
	return "", fmt.Errorf("unsupported direction: %s->%s", src, dst)
}

// SourceLang returns the ISO 639-1 code of the direction's source language.
func (d Direction) SourceLang() string {
	if d == DirectionENUK {
		return "en"
	}
	return "uk"
}

// TargetLang returns the ISO 639-1 code of the direction's target language.
func (d Direction) TargetLang() string {
	if d == DirectionENUK {
		return "uk"
	}
	return "en"
}

func (d Direction) String() string { return string(d) }

// Valid reports whether d is one of the two supported directions.
func (d Direction) Valid() bool {
	return d == DirectionUKEN || d == DirectionENUK
}

// TranslationResult is the outcome of a single generation run.
type TranslationResult struct {
	// Translated output text, trimmed of surrounding whitespace.
	Text string
	// Number of tokens produced by the model (prompt excluded).
	TokensGenerated int
	// True when generation stopped on the length limit instead of an
	// end-of-sequence token.
	Truncated bool
	// Wall-clock time spent inside the generation loop.
	Duration time.Duration
}
