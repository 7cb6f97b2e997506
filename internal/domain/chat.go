package domain

type ChatID string

type Chat struct {
	ID        ChatID
	Name      string
	CreatedAt string
}
