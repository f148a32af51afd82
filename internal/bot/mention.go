package bot

import (
	"regexp"
	"strings"
)

var mentionToken = regexp.MustCompile(`<@!?(\d+)>`)

// StripMentions removes the bot's own mention tokens from text. With an
// empty botID every user mention token is removed.
func StripMentions(text, botID string) string {
	out := mentionToken.ReplaceAllStringFunc(text, func(tok string) string {
		if botID == "" || mentionToken.FindStringSubmatch(tok)[1] == botID {
			return ""
		}
		return tok
	})
	return strings.TrimSpace(out)
}

// MentionsBot reports whether text carries a mention token for botID.
func MentionsBot(text, botID string) bool {
	if botID == "" {
		return false
	}
	for _, m := range mentionToken.FindAllStringSubmatch(text, -1) {
		if m[1] == botID {
			return true
		}
	}
	return false
}
