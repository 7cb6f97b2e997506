package chats

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title     lipgloss.Style
	header    lipgloss.Style
	chatName  lipgloss.Style
	chatID    lipgloss.Style
	author    lipgloss.Style
	text      lipgloss.Style
	timestamp lipgloss.Style
	fieldKey  lipgloss.Style
	empty     lipgloss.Style
	section   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:     lipgloss.NewStyle().Bold(true),
		header:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		chatName:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		chatID:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		author:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		text:      lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		timestamp: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		fieldKey:  lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		empty:     lipgloss.NewStyle().Faint(true),
		section:   lipgloss.NewStyle().MarginTop(1),
	}
}
