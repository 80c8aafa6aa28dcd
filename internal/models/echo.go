// internal/models/echo.go
package models

import (
	"context"
	"fmt"
	"regexp"
)

var (
	echoNamePattern    = regexp.MustCompile(`You are ([^,\n]+),`)
	echoMessagePattern = regexp.MustCompile(`Respond to this message(?: in a group chat to)?: "(.*)"`)
)

// EchoModel answers locally without any provider. It is meant for demos
// and offline runs: the reply names the persona and repeats the message.
type EchoModel struct {
	BaseModel
}

func NewEcho() *EchoModel {
	return &EchoModel{
		BaseModel: NewBaseModel(ModelInfo{
			ID:       "echo",
			Name:     "Echo",
			Provider: "echo",
		}),
	}
}

func (m *EchoModel) Generate(ctx context.Context, prompt string, cfg GenerationConfig) (text string, err error) {
	done := m.begin()
	defer func() { done(err) }()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := "your buddy"
	if match := echoNamePattern.FindStringSubmatch(prompt); match != nil {
		name = match[1]
	}
	message := ""
	if match := echoMessagePattern.FindStringSubmatch(prompt); match != nil {
		message = match[1]
	}

	if message == "" {
		return fmt.Sprintf("Namaste! %s here ☕", name), nil
	}
	return fmt.Sprintf("Namaste! %s here ☕ You said: %s", name, message), nil
}
