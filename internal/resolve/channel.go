package resolve

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/lojasmm/cartaz/internal/tmplerr"
)

var channelTypes = map[string]discordgo.ChannelType{
	"text":           discordgo.ChannelTypeGuildText,
	"private":        discordgo.ChannelTypeDM,
	"dm":             discordgo.ChannelTypeDM,
	"voice":          discordgo.ChannelTypeGuildVoice,
	"group":          discordgo.ChannelTypeGroupDM,
	"category":       discordgo.ChannelTypeGuildCategory,
	"news":           discordgo.ChannelTypeGuildNews,
	"announcement":   discordgo.ChannelTypeGuildNews,
	"store":          discordgo.ChannelTypeGuildStore,
	"news_thread":    discordgo.ChannelTypeGuildNewsThread,
	"public_thread":  discordgo.ChannelTypeGuildPublicThread,
	"private_thread": discordgo.ChannelTypeGuildPrivateThread,
	"stage_voice":    discordgo.ChannelTypeGuildStageVoice,
	"stage":          discordgo.ChannelTypeGuildStageVoice,
	"forum":          discordgo.ChannelTypeGuildForum,
}

// ChannelType resolves a channel type name such as "text" or "forum".
func ChannelType(name string) (discordgo.ChannelType, error) {
	key := strings.ReplaceAll(normalize(name), " ", "_")
	if t, ok := channelTypes[key]; ok {
		return t, nil
	}
	return 0, tmplerr.New(tmplerr.InvalidStyle, "unknown channel type %q", name)
}

// ChannelTypes resolves a list of names, or one comma-separated string.
func ChannelTypes(v any) ([]discordgo.ChannelType, error) {
	var names []string
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		for _, n := range strings.Split(t, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
	case []string:
		names = t
	case []any:
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, tmplerr.New(tmplerr.Validation, "channel type %v is not a string", item)
			}
			names = append(names, s)
		}
	default:
		return nil, tmplerr.New(tmplerr.Validation, "unsupported channel types value %T", v)
	}

	out := make([]discordgo.ChannelType, 0, len(names))
	for _, n := range names {
		ct, err := ChannelType(n)
		if err != nil {
			return nil, err
		}
		out = append(out, ct)
	}
	return out, nil
}
