// Package resolve maps textual template tokens onto typed host values:
// colours, emoji, button and text-input styles, channel types, timestamps,
// and the scalar coercions the builders need.
package resolve

import (
	"strconv"
	"strings"

	"github.com/lojasmm/cartaz/internal/tmplerr"
)

// Colours is the named palette, matching the host client's colour names.
var Colours = map[string]int{
	"default":      0x000000,
	"teal":         0x1abc9c,
	"dark_teal":    0x11806a,
	"brand_green":  0x57f287,
	"green":        0x2ecc71,
	"dark_green":   0x1f8b4c,
	"blue":         0x3498db,
	"dark_blue":    0x206694,
	"purple":       0x9b59b6,
	"dark_purple":  0x71368a,
	"magenta":      0xe91e63,
	"dark_magenta": 0xad1457,
	"gold":         0xf1c40f,
	"dark_gold":    0xc27c0e,
	"orange":       0xe67e22,
	"dark_orange":  0xa84300,
	"brand_red":    0xed4245,
	"red":          0xe74c3c,
	"dark_red":     0x992d22,
	"lighter_grey": 0x95a5a6,
	"dark_grey":    0x607d8b,
	"light_grey":   0x979c9f,
	"darker_grey":  0x546e7a,
	"og_blurple":   0x7289da,
	"blurple":      0x5865f2,
	"greyple":      0x99aab5,
	"dark_theme":   0x313338,
	"fuchsia":      0xeb459e,
	"yellow":       0xfee75c,
	"dark_embed":   0x2b2d31,
	"light_embed":  0xeeeff1,
	"pink":         0xeb459f,
}

// Colour resolves a colour name, an "r,g,b" triple, or a #rrggbb / 0xrrggbb
// literal to a 24-bit RGB value.
func Colour(s string) (int, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "_", "-", "_", "gray", "grey").Replace(key)
	if v, ok := Colours[key]; ok {
		return v, nil
	}

	if strings.Contains(key, ",") {
		return rgbTriple(s)
	}

	hex := ""
	switch {
	case strings.HasPrefix(key, "#"):
		hex = key[1:]
	case strings.HasPrefix(key, "0x"):
		hex = key[2:]
	}
	if len(hex) == 6 {
		if v, err := strconv.ParseUint(hex, 16, 32); err == nil {
			return int(v), nil
		}
	}
	return 0, tmplerr.New(tmplerr.InvalidColour, "%q is neither a colour name nor an r,g,b triple", s)
}

// RGB packs three channels into a colour value.
func RGB(r, g, b uint8) int {
	return int(r)<<16 | int(g)<<8 | int(b)
}

func rgbTriple(s string) (int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return 0, tmplerr.New(tmplerr.InvalidColour, "%q: expected three comma-separated channels", s)
	}
	var channels [3]uint8
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return 0, tmplerr.New(tmplerr.InvalidColour, "%q: channel %q is not in 0-255", s, strings.TrimSpace(p))
		}
		channels[i] = uint8(n)
	}
	return RGB(channels[0], channels[1], channels[2]), nil
}
