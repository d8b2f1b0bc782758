package botx

import (
	"context"
	"strings"
)

// Handler handles requests.
type Handler func(ctx context.Context, req Request) ([]Response, error)

// Middleware wraps a handler.
type Middleware func(Handler) Handler

// Response is a message to send.
type Response struct {
	ReplyToMessageID string
	ChatID           string
	Text             string
}

// Request is an incoming message.
type Request struct {
	MessageID string
	Chat      Chat
	Text      string
}

// Chat contains chat information.
type Chat struct {
	ID       string
	Username string
}

// Command returns the leading command of the message, without the bot
// mention suffix, e.g. "/news" for "/news@stockfeed_bot AAPL".
// Empty if the message is not a command.
func (r Request) Command() string {
	fields := strings.Fields(r.Text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}

	cmd, _, _ := strings.Cut(fields[0], "@")
	return strings.ToLower(cmd)
}

// Args returns the words following the command.
func (r Request) Args() []string {
	fields := strings.Fields(r.Text)
	if len(fields) < 2 || !strings.HasPrefix(fields[0], "/") {
		return nil
	}
	return fields[1:]
}

// Reply makes a response to the request's chat.
func (r Request) Reply(text string) Response {
	return Response{ChatID: r.Chat.ID, ReplyToMessageID: r.MessageID, Text: text}
}

// NotFound is a default handler for unknown commands.
func NotFound(_ context.Context, req Request) ([]Response, error) {
	return []Response{req.Reply("Unknown command, send /help to see what I can do.")}, nil
}
