package embed

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/lojasmm/cartaz/internal/model"
	"github.com/lojasmm/cartaz/internal/tmplerr"
)

// MaxFieldLength is the longest field value, in characters, the host takes.
const MaxFieldLength = 1024

// pageDigits is the widest page number slack is reserved for.
const pageDigits = 4

// escapedNewline is a newline written as the two characters \ and n.
const escapedNewline = `\n`

// PageToken turns a page key into the placeholder it stands for: "page"
// becomes "{page}". A key already in braces is used as is; an empty key
// means no substitution.
func PageToken(pageKey string) string {
	if pageKey == "" || strings.Contains(pageKey, "{") {
		return pageKey
	}
	return "{" + pageKey + "}"
}

// Split cuts f's value into fields no longer than MaxFieldLength. Lines are
// grouped greedily; a single line longer than the limit is cut mid-line,
// never inside a page token. Escaped newlines are unescaped. The last chunk is always emitted, so the
// result is never empty. Page tokens are not replaced here.
func Split(f model.Field, token string) []model.Field {
	budget := MaxFieldLength - slack(f.Value, token)
	if budget < 1 {
		budget = 1
	}

	var (
		chunks []string
		cur    strings.Builder
		n      int
	)
	flush := func() {
		chunks = append(chunks, cur.String())
		cur.Reset()
		n = 0
	}
	for _, line := range lines(f.Value) {
		text := unescape(line)
		size := utf8.RuneCountInString(text)
		if n > 0 && n+size > budget {
			flush()
		}
		for size > budget {
			head, tail := cutOutside(text, budget-n, token)
			cur.WriteString(head)
			flush()
			text = tail
			size = utf8.RuneCountInString(text)
		}
		cur.WriteString(text)
		n += size
	}
	if n > 0 || len(chunks) == 0 {
		flush()
	}

	out := make([]model.Field, len(chunks))
	for i, c := range chunks {
		out[i] = model.Field{Name: f.Name, Value: c, Inline: f.Inline}
	}
	return out
}

// slack is the growth reserved for page numbers replacing short tokens.
func slack(value, token string) int {
	if token == "" {
		return 0
	}
	grow := pageDigits - utf8.RuneCountInString(token)
	if grow <= 0 {
		return 0
	}
	return strings.Count(unescape(value), token) * grow
}

// lines splits s after every real or escaped newline, keeping the
// terminators.
func lines(s string) []string {
	var out []string
	for len(s) > 0 {
		i := strings.IndexByte(s, '\n')
		j := strings.Index(s, escapedNewline)
		switch {
		case i < 0 && j < 0:
			out = append(out, s)
			return out
		case j < 0 || (i >= 0 && i < j):
			out = append(out, s[:i+1])
			s = s[i+1:]
		default:
			out = append(out, s[:j+len(escapedNewline)])
			s = s[j+len(escapedNewline):]
		}
	}
	return out
}

// cutOutside is cut moved back to the start of any token the cut point
// falls inside. A token at the very start of s is cut as plain text.
func cutOutside(s string, n int, token string) (string, string) {
	head, tail := cut(s, n)
	if token == "" || tail == "" {
		return head, tail
	}
	pos := len(head)
	for from := 0; ; {
		i := strings.Index(s[from:], token)
		if i < 0 || from+i >= pos {
			break
		}
		start := from + i
		if start+len(token) > pos {
			if start > 0 {
				return s[:start], s[start:]
			}
			break
		}
		from = start + len(token)
	}
	return head, tail
}

func unescape(s string) string {
	return strings.ReplaceAll(s, escapedNewline, "\n")
}

// cut splits s after n runes.
func cut(s string, n int) (string, string) {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos], s[pos:]
		}
		i++
	}
	return s, ""
}

// Paginate expands an expansive embed into one embed per page of its
// oversized field. The field is Expand when set, otherwise the embed's only
// field. Each page keeps every other attribute and has the page token in
// its title, description, footer and field replaced by the 1-based page
// number.
func Paginate(e *model.Embed, pageKey string) ([]*model.Embed, error) {
	base := *e
	var field model.Field
	switch {
	case e.Expand != nil:
		field = *e.Expand
	case len(e.Fields) == 1:
		field = e.Fields[0]
		base.Fields = nil
	default:
		return nil, tmplerr.New(tmplerr.Validation, "expansive embed needs exactly one field to expand, has %d", len(e.Fields))
	}
	base.Expand = nil

	token := PageToken(pageKey)
	parts := Split(field, token)
	pages := make([]*model.Embed, len(parts))
	for i, part := range parts {
		page := base
		num := strconv.Itoa(i + 1)
		sub := func(s string) string {
			if token == "" {
				return s
			}
			return strings.ReplaceAll(s, token, num)
		}
		if base.Title != nil {
			t := sub(*base.Title)
			page.Title = &t
		}
		page.Description = sub(base.Description)
		if base.Footer != nil {
			footer := *base.Footer
			footer.Text = sub(footer.Text)
			page.Footer = &footer
		}
		part.Name = sub(part.Name)
		part.Value = sub(part.Value)
		page.Fields = append(append([]model.Field(nil), base.Fields...), part)
		pages[i] = &page
	}
	return pages, nil
}
