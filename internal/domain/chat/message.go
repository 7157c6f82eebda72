package chat

import (
	"fmt"
	"strings"
)

// Field is a single name/value pair inside a Card.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Card is a structured message. Discord renders it as an embed, Telegram as HTML.
type Card struct {
	Title       string
	Description string
	Color       int
	Fields      []Field
	Footer      string
}

// Message is either plain text or a card. Text may contain [label](url) links.
type Message struct {
	Text string
	Card *Card
}

// Text builds a plain text message.
func Text(format string, args ...any) Message {
	if len(args) == 0 {
		return Message{Text: format}
	}
	return Message{Text: fmt.Sprintf(format, args...)}
}

// AddField appends a field and returns the card for chaining.
func (c *Card) AddField(name, value string, inline bool) *Card {
	c.Fields = append(c.Fields, Field{Name: name, Value: value, Inline: inline})
	return c
}

// Message wraps the card into a Message.
func (c *Card) Message() Message {
	return Message{Card: c}
}

// Link formats a link in the markup understood by every renderer.
func Link(label, url string) string {
	label = strings.NewReplacer("[", "(", "]", ")").Replace(label)
	return "[" + label + "](" + url + ")"
}

// IsZero reports whether the message carries nothing to send.
func (m Message) IsZero() bool {
	return m.Text == "" && m.Card == nil
}

// Plain renders the message as plain text, used for logs and platforms without cards.
func (m Message) Plain() string {
	if m.Card == nil {
		return m.Text
	}
	var b strings.Builder
	if m.Text != "" {
		b.WriteString(m.Text)
		b.WriteString("\n")
	}
	b.WriteString(m.Card.Title)
	if m.Card.Description != "" {
		b.WriteString("\n")
		b.WriteString(m.Card.Description)
	}
	for _, f := range m.Card.Fields {
		fmt.Fprintf(&b, "\n%s: %s", f.Name, f.Value)
	}
	if m.Card.Footer != "" {
		b.WriteString("\n")
		b.WriteString(m.Card.Footer)
	}
	return b.String()
}
