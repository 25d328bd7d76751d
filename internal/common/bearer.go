package common

import "strings"

// BearerToken extracts the token from an authorization value of the form
// "Bearer <token>". The scheme is matched case-insensitively.
func BearerToken(value string) (string, bool) {
	if len(value) < len(BearerPrefix) || !strings.EqualFold(value[:len(BearerPrefix)], BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(value[len(BearerPrefix):])
	if token == "" {
		return "", false
	}
	return token, true
}
