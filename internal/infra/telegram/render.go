package telegram

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"writer_digest_bot/internal/domain/chat"

	"gopkg.in/telebot.v3"
)

var linkPattern = regexp.MustCompile(`\[([^\]]*)\]\(([^)\s]+)\)`)

// RenderHTML renders a message for ParseMode HTML. Cards become a bold title,
// the description, one "name: value" line per field and an italic footer.
func RenderHTML(m chat.Message) string {
	var b strings.Builder
	if m.Text != "" {
		b.WriteString(inline(m.Text))
	}
	if c := m.Card; c != nil {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "<b>%s</b>", html.EscapeString(c.Title))
		if c.Description != "" {
			b.WriteString("\n")
			b.WriteString(inline(c.Description))
		}
		for _, f := range c.Fields {
			fmt.Fprintf(&b, "\n<b>%s</b>: %s", html.EscapeString(f.Name), inline(f.Value))
		}
		if c.Footer != "" {
			fmt.Fprintf(&b, "\n\n<i>%s</i>", html.EscapeString(c.Footer))
		}
	}
	return b.String()
}

// inline escapes s and turns [label](url) links into anchors.
func inline(s string) string {
	return linkPattern.ReplaceAllString(html.EscapeString(s), `<a href="$2">$1</a>`)
}

func toUser(u *telebot.User) chat.User {
	name := u.Username
	if name == "" {
		name = strings.TrimSpace(u.FirstName + " " + u.LastName)
	}
	id := strconv.FormatInt(u.ID, 10)
	return chat.User{
		ID:      id,
		Name:    name,
		Mention: chat.Link(name, "tg://user?id="+id),
		IsBot:   u.IsBot,
	}
}
