package cache

import (
	"fmt"
	"strings"
)

func SearchKey(query string) string {
	return "search:" + strings.ToLower(strings.TrimSpace(query))
}

func MatchesKey(steamID string, page, limit int) string {
	return fmt.Sprintf("matches:%s:page:%d:limit:%d", steamID, page, limit)
}

func MatchKey(matchID string) string {
	return "match:" + matchID
}

func SessionKey(sessionID string) string {
	return "sess:" + sessionID
}
