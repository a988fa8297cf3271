package validation

import (
	"fmt"
	"strings"
	"unicode"
)

const maxUsernameLen = 64

// Path segments under /api/users that would shadow a profile route.
var reservedUsernames = map[string]struct{}{
	"me":          {},
	"sync":        {},
	"suggestions": {},
}

// ValidateUsername rejects usernames that cannot be addressed in a URL path
// or collide with a fixed route.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if len(username) > maxUsernameLen {
		return fmt.Errorf("username must be at most %d characters", maxUsernameLen)
	}
	for _, r := range username {
		if unicode.IsSpace(r) || r == '/' || r == '?' || r == '#' || r == '%' {
			return fmt.Errorf("username contains an invalid character %q", r)
		}
	}
	if _, reserved := reservedUsernames[strings.ToLower(username)]; reserved {
		return fmt.Errorf("username is reserved")
	}
	return nil
}
