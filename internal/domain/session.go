package domain

// Session is the client's belief about which user, if any, is
// authenticated, backed by a bearer token. The zero value is logged out.
type Session struct {
	Token string
}

func (s Session) IsLoggedIn() bool {
	return s.Token != ""
}

// TokenGrant is the service's response to a credential exchange.
type TokenGrant struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int64
}
