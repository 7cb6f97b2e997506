package chats

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/pony-express-cli/internal/domain"
)

func chatListView(chats []domain.Chat, s styles) string {
	lines := []string{
		s.title.Render("Pony Express Chats"),
		s.header.Render(fmt.Sprintf("chats: %d", len(chats))),
	}

	if len(chats) == 0 {
		lines = append(lines, s.empty.Render("No chats available."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, chat := range chats {
		lines = append(lines, chatLine(chat, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func chatLine(chat domain.Chat, s styles) string {
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.chatName.Render(chat.Name),
		" ",
		s.chatID.Render(fmt.Sprintf("(%s)", chat.ID)),
		" ",
		s.timestamp.Render(formatTimestamp(chat.CreatedAt)),
	)
}

func messageListView(chat domain.Chat, messages []domain.Message, s styles) string {
	title := chat.Name
	if title == "" {
		title = string(chat.ID)
	}

	lines := []string{
		s.title.Render(title),
		s.header.Render(fmt.Sprintf("messages: %d", len(messages))),
	}

	if len(messages) == 0 {
		lines = append(lines, s.empty.Render("No messages yet."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, message := range messages {
		lines = append(lines, messageLine(message, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func messageLine(message domain.Message, s styles) string {
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.timestamp.Render(formatTimestamp(message.CreatedAt)),
		" ",
		s.author.Render(message.Author.DisplayName()+":"),
		" ",
		s.text.Render(message.Text),
	)
}

func profileView(user domain.User, s styles) string {
	lines := []string{
		s.title.Render("Profile"),
		profileField("username", user.Username, s),
		profileField("email", user.Email, s),
		profileField("id", user.ID, s),
		profileField("member since", formatTimestamp(user.CreatedAt), s),
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func profileField(key, value string, s styles) string {
	if value == "" {
		value = "n/a"
	}
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.fieldKey.Render(key+":"),
		" ",
		s.text.Render(value),
	)
}

// timestampLayouts covers the naive ISO-8601 the service emits plus the
// zoned variants it may grow into.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
}

func formatTimestamp(raw string) string {
	if raw == "" {
		return "unknown"
	}

	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.Format("02 Jan 2006 15:04")
		}
	}

	return raw
}
