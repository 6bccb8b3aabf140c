package push

import (
	"regexp"
	"strings"
)

var bareTokenPattern = regexp.MustCompile(`(?i)^[a-z\d]{8}-[a-z\d]{4}-[a-z\d]{4}-[a-z\d]{4}-[a-z\d]{12}$`)

var bracketPrefixes = []string{"ExponentPushToken[", "ExpoPushToken["}

// IsExpoPushToken applies Expo's token rule: ExponentPushToken[...] or
// ExpoPushToken[...] with a non-empty inner value, or a bare device id shaped like a UUID.
func IsExpoPushToken(token string) bool {
	for _, prefix := range bracketPrefixes {
		if inner, ok := strings.CutPrefix(token, prefix); ok {
			inner, closed := strings.CutSuffix(inner, "]")
			return closed && inner != ""
		}
	}
	return bareTokenPattern.MatchString(token)
}
