// internal/prompt/builder.go
// Package prompt turns personas and chat settings into completion prompts.
// Everything here is pure string construction.
package prompt

import (
	"fmt"
	"strings"

	"chaibuddies/internal/personas"
)

// GreetingMessage is the opening message sent when a chat starts
const GreetingMessage = "Say hello and introduce yourself briefly"

// BuildContext builds the persona instruction block.
// others is accepted for call-shape parity with group chats; its content is not rendered.
func BuildContext(p personas.Persona, others []personas.Persona, tone Tone) string {
	_ = others

	var sb strings.Builder

	sb.WriteString("PERSONA IDENTITY:\n")
	sb.WriteString(fmt.Sprintf("You are %s, %s. %s\n\n", p.Name, p.Title, p.Bio))

	sb.WriteString("YOUR EXPERTISE:\n")
	sb.WriteString(strings.Join(p.Specialties, ", "))
	sb.WriteString("\n\n")

	sb.WriteString("YOUR COMMUNICATION STYLE:\n")
	sb.WriteString(fmt.Sprintf("- Voice: %s\n", p.Style.Voice))
	sb.WriteString(fmt.Sprintf("- Personality traits: %s\n", strings.Join(p.Style.Traits, ", ")))
	sb.WriteString(fmt.Sprintf("- Example phrases you often use: %s\n", strings.Join(p.Tunes, " | ")))
	sb.WriteString("- Reply message in good way\n")
	sb.WriteString("- Respond casually, like you're texting a friend. Be real, helpful, and fun.\n")
	sb.WriteString("- Use your own vibe, but don't copy-paste catchphrases every time. You can include your tone, humor, or energy but **priority is replying to the user's question or comment**\n\n")

	sb.WriteString("RESOURCES:\n")
	sb.WriteString(fmt.Sprintf("- Gen AI Course link if asked: %s", p.Course.CourseLink))

	base := strings.TrimSpace(sb.String())

	if block := toneDirectives(tone); block != "" {
		return base + "\n\n" + block
	}
	return base
}

// TaskInstruction builds the per-call task framing and response guidelines
func TaskInstruction(p personas.Persona, message string, group bool) string {
	var sb strings.Builder

	sb.WriteString("TASK:\n")
	if group {
		sb.WriteString(fmt.Sprintf("Respond to this message in a group chat to: \"%s\"\n\n", message))
	} else {
		sb.WriteString(fmt.Sprintf("Respond to this message: \"%s\"\n\n", message))
	}

	sb.WriteString("RESPONSE GUIDELINES:\n")
	sb.WriteString(fmt.Sprintf("- Respond in Hinglish style as %s\n", p.Name))
	sb.WriteString("- Keep your response to 3-4 Lines\n")
	sb.WriteString("- Stay true to your unique voice and personality")

	return sb.String()
}

// Compose joins the context block and task instruction with a blank line
func Compose(context, instruction string) string {
	return strings.TrimSpace(context) + "\n\n" + strings.TrimSpace(instruction)
}

// Build is the full prompt for one persona and one message
func Build(p personas.Persona, others []personas.Persona, tone Tone, message string, group bool) string {
	return Compose(BuildContext(p, others, tone), TaskInstruction(p, message, group))
}
