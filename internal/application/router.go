package application

import "github.com/bnema/pony-express-cli/internal/domain"

type Screen string

const (
	ScreenChats    Screen = "chats"
	ScreenProfile  Screen = "profile"
	ScreenLogin    Screen = "login"
	ScreenRegister Screen = "register"
)

// Routes lists the screens reachable for the given session. This is a
// navigation convenience, not a security boundary; the service enforces
// authorization on writes. Screens never fetch data themselves — all
// access goes through the cache-backed services.
func Routes(session domain.Session) []Screen {
	if session.IsLoggedIn() {
		return []Screen{ScreenChats, ScreenProfile}
	}
	return []Screen{ScreenChats, ScreenLogin, ScreenRegister}
}

// RequiresLogin reports whether a screen belongs only to the
// authenticated set.
func RequiresLogin(screen Screen) bool {
	return screen == ScreenProfile
}
