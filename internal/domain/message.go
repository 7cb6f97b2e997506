package domain

// UserRef identifies a message author. The service emits either an embedded
// user object or a bare user_id scalar depending on endpoint version; both
// collapse into this one shape.
type UserRef struct {
	ID       string
	Username string
}

func (r UserRef) DisplayName() string {
	if r.Username != "" {
		return r.Username
	}
	return r.ID
}

// Message ordering is server-determined insertion order; clients must not
// re-sort. CreatedAt is the server's ISO-8601 string, kept verbatim.
type Message struct {
	ID        string
	ChatID    ChatID
	Author    UserRef
	Text      string
	CreatedAt string
}
