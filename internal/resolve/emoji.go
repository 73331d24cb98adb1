package resolve

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/lojasmm/cartaz/internal/tmplerr"
)

var customEmoji = regexp.MustCompile(`^<(a?):([A-Za-z0-9_~]+):([0-9]+)>$`)

// EmojiAliases maps :alias: shorthands to unicode emoji. Hosts with a
// fuller table can replace or extend it at start-up.
var EmojiAliases = map[string]string{
	"arrow_left":         "⬅️",
	"arrow_right":        "➡️",
	"arrow_backward":     "◀️",
	"arrow_forward":      "▶️",
	"rewind":             "⏪",
	"fast_forward":       "⏩",
	"thumbsup":           "👍",
	"+1":                 "👍",
	"thumbsdown":         "👎",
	"-1":                 "👎",
	"white_check_mark":   "✅",
	"x":                  "❌",
	"warning":            "⚠️",
	"heart":              "❤️",
	"star":               "⭐",
	"smile":              "😄",
	"wave":               "👋",
	"tada":               "🎉",
	"bell":               "🔔",
	"mag":                "🔍",
	"gear":               "⚙️",
	"wastebasket":        "🗑️",
	"pencil":             "📝",
	"lock":               "🔒",
	"unlock":             "🔓",
	"question":           "❓",
	"information_source": "ℹ️",
}

// Emoji resolves an emoji spec: a unicode string, a <:name:id> or
// <a:name:id> custom emoji, an :alias:, a bare numeric id, or a structured
// {name, id, animated} map. An empty string yields nil.
func Emoji(spec any) (*discordgo.ComponentEmoji, error) {
	switch v := spec.(type) {
	case nil:
		return nil, nil
	case string:
		return emojiString(v)
	case map[string]any:
		return emojiMap(v)
	default:
		return nil, tmplerr.New(tmplerr.InvalidEmoji, "unsupported emoji value %T", spec)
	}
}

func emojiString(s string) (*discordgo.ComponentEmoji, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil, nil
	case customEmoji.MatchString(s):
		m := customEmoji.FindStringSubmatch(s)
		return &discordgo.ComponentEmoji{Name: m[2], ID: m[3], Animated: m[1] == "a"}, nil
	case len(s) > 2 && strings.HasPrefix(s, ":") && strings.HasSuffix(s, ":"):
		alias := s[1 : len(s)-1]
		if u, ok := EmojiAliases[alias]; ok {
			return &discordgo.ComponentEmoji{Name: u}, nil
		}
		return nil, tmplerr.New(tmplerr.InvalidEmoji, "unknown emoji alias %q", s)
	case isDigits(s):
		return &discordgo.ComponentEmoji{ID: s}, nil
	default:
		return &discordgo.ComponentEmoji{Name: s}, nil
	}
}

func emojiMap(m map[string]any) (*discordgo.ComponentEmoji, error) {
	name, _ := m["name"].(string)
	if name == "" {
		return nil, tmplerr.New(tmplerr.InvalidEmoji, "structured emoji is missing a name")
	}
	e := &discordgo.ComponentEmoji{Name: name}
	if id, ok := m["id"]; ok && id != nil {
		e.ID = strings.TrimSpace(fmt.Sprint(id))
		if f, ok := id.(float64); ok {
			e.ID = fmt.Sprintf("%.0f", f)
		}
		if !isDigits(e.ID) {
			return nil, tmplerr.New(tmplerr.InvalidEmoji, "emoji %q has non-numeric id %q", name, e.ID)
		}
	}
	if animated, ok := m["animated"]; ok {
		b, err := Bool(animated)
		if err != nil {
			return nil, tmplerr.Wrap(tmplerr.InvalidEmoji, err, "emoji %q animated flag", name)
		}
		e.Animated = b
	}
	return e, nil
}

// EmojiString formats e the way message content embeds it.
func EmojiString(e *discordgo.ComponentEmoji) string {
	switch {
	case e == nil:
		return ""
	case e.ID == "":
		return e.Name
	case e.Animated:
		return fmt.Sprintf("<a:%s:%s>", e.Name, e.ID)
	default:
		return fmt.Sprintf("<:%s:%s>", e.Name, e.ID)
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
