// internal/prompt/tone.go
package prompt

import (
	"fmt"
	"strings"
)

// Tone is a named directive bundle altering a reply's register
type Tone string

const (
	ToneDefault     Tone = "default"
	ToneFunny       Tone = "funny"
	ToneAdvice      Tone = "advice"
	ToneEducational Tone = "educational"
)

// Tones lists every valid tone preset
var Tones = []Tone{ToneDefault, ToneFunny, ToneAdvice, ToneEducational}

// Valid reports whether t is one of the fixed presets
func (t Tone) Valid() bool {
	switch t {
	case ToneDefault, ToneFunny, ToneAdvice, ToneEducational:
		return true
	default:
		return false
	}
}

func (t Tone) String() string {
	return string(t)
}

// ParseTone validates user input; empty input maps to ToneDefault
func ParseTone(s string) (Tone, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ToneDefault, nil
	}
	t := Tone(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown tone %q (want default, funny, advice or educational)", s)
	}
	return t, nil
}

// toneDirectives returns the extra block for a tone, or "" when the tone adds nothing
func toneDirectives(t Tone) string {
	switch t {
	case ToneFunny:
		return `TONE: FUNNY
- Be playful and witty, crack a light joke where it fits
- Use humour and friendly teasing, never mean
- Sprinkle a few emojis 😄🔥 to keep the vibe fun`
	case ToneAdvice:
		return `TONE: ADVICE
- Act like a mentor giving practical, actionable guidance
- Share concrete next steps the user can try today
- Be honest about trade-offs and common mistakes`
	case ToneEducational:
		return `TONE: EDUCATIONAL
- Explain the concept clearly, step by step
- Use a simple example or analogy to make it stick
- Check understanding by ending with a short follow-up idea to explore`
	default:
		return ""
	}
}
