// Package embeds renders NDB2 predictions, scores and show episodes as Discord
// message embeds. Every function here is pure: no I/O, no clock reads.
package embeds

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Discord limits
const (
	MaxFieldValueLength  = 1024
	MaxDescriptionLength = 4096
)

// Embed colors
const (
	ColorOpen       = 0x3498DB
	ColorClosed     = 0xF1C40F
	ColorRetired    = 0x95A5A6
	ColorSuccessful = 0x2ECC71
	ColorFailed     = 0xE74C3C
	ColorContent    = 0x9B59B6
)

// TimestampStyle is a Discord timestamp markdown style
type TimestampStyle string

const (
	TimestampShortDate    TimestampStyle = "d"
	TimestampLongDate     TimestampStyle = "D"
	TimestampLongDateTime TimestampStyle = "F"
	TimestampRelative     TimestampStyle = "R"
)

const fieldSpacer = "\n \u200B"

const emptyListPlaceholder = "None"

// UserMention formats a Discord user mention
func UserMention(discordID string) string {
	return "<@" + discordID + ">"
}

// DiscordTimestamp formats t as a Discord timestamp that renders in the viewer's locale
func DiscordTimestamp(t time.Time, style TimestampStyle) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), style)
}

// joinLines renders one entry per line, or "None" when there are no entries.
// Output longer than a field value allows is cut at a line boundary with a
// count of the omitted entries.
func joinLines(lines []string) string {
	if len(lines) == 0 {
		return emptyListPlaceholder
	}

	joined := strings.Join(lines, "\n")
	if utf8.RuneCountInString(joined) <= MaxFieldValueLength {
		return joined
	}

	var b strings.Builder
	length := 0
	for i, line := range lines {
		suffix := fmt.Sprintf("\n…and %d more", len(lines)-i)
		lineLength := utf8.RuneCountInString(line)
		if i > 0 {
			lineLength++
		}
		if length+lineLength+utf8.RuneCountInString(suffix) > MaxFieldValueLength {
			b.WriteString(suffix)
			return strings.TrimPrefix(b.String(), "\n")
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(line)
		length += lineLength
	}
	return b.String()
}

// truncate shortens s to at most max runes, ending with an ellipsis when cut
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max-1])) + "…"
}
