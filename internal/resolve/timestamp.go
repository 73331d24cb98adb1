package resolve

import (
	"fmt"
	"strings"
	"time"

	"github.com/lojasmm/cartaz/internal/tmplerr"
)

// DefaultTimestampFormat is the strptime layout embed timestamps use
// unless configured otherwise.
const DefaultTimestampFormat = "%Y-%m-%d %H:%M:%S.%f"

var strptimeDirectives = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'H': "15",
	'I': "03",
	'M': "04",
	'S': "05",
	'p': "PM",
	'b': "Jan",
	'B': "January",
	'a': "Mon",
	'A': "Monday",
	'z': "-0700",
	'Z': "MST",
	'j': "002",
	'f': "000000",
}

// layoutWords are the alphabetic elements time.Parse recognises in a
// layout. Digits are elements too.
var layoutWords = []string{"Jan", "Mon", "MST", "PM", "pm"}

// Layout translates a strptime format into a time.Parse layout. It fails
// on directives that have no Go equivalent and on literal text that
// time.Parse would read as a layout element, such as "1" or "Jan".
//
// %f right after "%S." becomes an optional fraction of any width, so
// "%S.%f" also accepts a value with no fraction at all.
func Layout(format string) (string, error) {
	var b, lit strings.Builder
	literal := func() error {
		if err := checkLiteral(lit.String()); err != nil {
			return fmt.Errorf("timestamp format %q: %w", format, err)
		}
		b.WriteString(lit.String())
		lit.Reset()
		return nil
	}
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			lit.WriteByte(c)
			continue
		}
		if i+1 >= len(format) {
			return "", fmt.Errorf("timestamp format %q: trailing %%", format)
		}
		i++
		d := format[i]
		if d == '%' {
			lit.WriteByte('%')
			continue
		}
		if err := literal(); err != nil {
			return "", err
		}
		switch {
		case d == 'f' && strings.HasSuffix(b.String(), "05."):
			b.WriteString("999999")
		default:
			layout, ok := strptimeDirectives[d]
			if !ok {
				return "", fmt.Errorf("timestamp format %q: unsupported directive %%%c", format, d)
			}
			b.WriteString(layout)
		}
	}
	if err := literal(); err != nil {
		return "", err
	}
	return b.String(), nil
}

func checkLiteral(s string) error {
	if i := strings.IndexAny(s, "0123456789"); i >= 0 {
		return fmt.Errorf("literal digit %q is a layout element", s[i])
	}
	for _, w := range layoutWords {
		if strings.Contains(s, w) {
			return fmt.Errorf("literal %q is a layout element", w)
		}
	}
	return nil
}

// Timestamp parses value using a strptime format. An empty value yields a
// nil time; a non-empty value that does not parse is an error.
func Timestamp(value, format string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	if format == "" {
		format = DefaultTimestampFormat
	}
	layout, err := Layout(format)
	if err != nil {
		return nil, tmplerr.Wrap(tmplerr.Validation, err, "timestamp layout")
	}
	t, err := time.Parse(layout, strings.TrimSpace(value))
	if err != nil {
		return nil, tmplerr.Wrap(tmplerr.Parse, err, "timestamp %q", value)
	}
	return &t, nil
}
