package embed

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/lojasmm/cartaz/internal/model"
	"github.com/lojasmm/cartaz/internal/resolve"
	"github.com/lojasmm/cartaz/internal/tmplerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func TestBuild(t *testing.T) {
	e := &model.Embed{
		Title:     str("Hello World"),
		Colour:    "10,20,30",
		Timestamp: "2024-05-01 12:30:00.500000",
		Author:    &model.Author{Name: "Ana", Icon: "i"},
		Footer:    &model.Footer{Text: "f"},
		Image:     "img",
		Fields:    []model.Field{{Name: "a", Value: "b", Inline: true}},
	}
	out, err := Builder{}.Build(e)
	require.NoError(t, err)
	assert.Equal(t, "Hello World", out.Title)
	assert.Equal(t, resolve.RGB(10, 20, 30), out.Color)
	assert.Equal(t, "2024-05-01T12:30:00Z", out.Timestamp)
	assert.Equal(t, "Ana", out.Author.Name)
	assert.Equal(t, "i", out.Author.IconURL)
	assert.Equal(t, "f", out.Footer.Text)
	assert.Equal(t, "img", out.Image.URL)
	assert.Nil(t, out.Thumbnail)
	require.Len(t, out.Fields, 1)
	assert.True(t, out.Fields[0].Inline)
}

func TestBuildErrors(t *testing.T) {
	_, err := Builder{}.Build(&model.Embed{})
	assert.True(t, errors.Is(err, tmplerr.ErrValidation), "title is required")

	_, err = Builder{}.Build(&model.Embed{Title: str("t"), Colour: "not_a_colour"})
	assert.True(t, errors.Is(err, tmplerr.ErrInvalidColour))

	_, err = Builder{}.Build(&model.Embed{Title: str("t"), Timestamp: "yesterday"})
	assert.True(t, errors.Is(err, tmplerr.ErrParse))
}

func TestBuildCustomTimestampFormat(t *testing.T) {
	out, err := Builder{TimestampFormat: "%d/%m/%Y"}.Build(&model.Embed{Title: str("t"), Timestamp: "02/01/2025"})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-02T00:00:00Z", out.Timestamp)
}

func TestSplitShortValueIsOneField(t *testing.T) {
	value := `one\ntwo` + "\nthree"
	out := Split(model.Field{Name: "n", Value: value}, "")
	require.Len(t, out, 1)
	assert.Equal(t, "one\ntwo\nthree", out[0].Value)
	assert.Equal(t, "n", out[0].Name)
}

func TestSplitEmptyValue(t *testing.T) {
	out := Split(model.Field{Name: "n"}, "")
	require.Len(t, out, 1)
	assert.Equal(t, "", out[0].Value)
}

func TestSplitLongValueReassembles(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 300; i++ {
		b.WriteString("line number ")
		b.WriteString(strings.Repeat("x", i%17))
		if i%2 == 0 {
			b.WriteString(`\n`)
		} else {
			b.WriteString("\n")
		}
	}
	value := b.String()

	out := Split(model.Field{Value: value}, "")
	require.Greater(t, len(out), 1)

	var joined strings.Builder
	for _, f := range out {
		assert.LessOrEqual(t, utf8.RuneCountInString(f.Value), MaxFieldLength)
		joined.WriteString(f.Value)
	}
	assert.Equal(t, strings.ReplaceAll(value, `\n`, "\n"), joined.String())
}

func TestSplitHardCutsOversizedLine(t *testing.T) {
	value := strings.Repeat("é", 2500)
	out := Split(model.Field{Value: value}, "")
	require.Len(t, out, 3)
	assert.Equal(t, MaxFieldLength, utf8.RuneCountInString(out[0].Value))
	assert.Equal(t, MaxFieldLength, utf8.RuneCountInString(out[1].Value))
	assert.Equal(t, 2500-2*MaxFieldLength, utf8.RuneCountInString(out[2].Value))
}

func TestSplitReservesSlackForShortTokens(t *testing.T) {
	value := strings.Repeat("{p}", 341) + "x" // 1024 characters
	out := Split(model.Field{Value: value}, "{p}")
	require.Len(t, out, 2)
	for _, f := range out {
		assert.LessOrEqual(t, utf8.RuneCountInString(f.Value)+strings.Count(f.Value, "{p}"), MaxFieldLength)
	}
}

func TestSplitKeepsTokenWhole(t *testing.T) {
	// One token reserves one character, leaving a 1023 character budget
	// that would end between "{" and "p}".
	value := strings.Repeat("a", 1022) + "{p}bbb"
	out := Split(model.Field{Value: value}, "{p}")
	require.Len(t, out, 2)
	assert.Equal(t, strings.Repeat("a", 1022), out[0].Value)
	assert.Equal(t, "{p}bbb", out[1].Value)

	e := &model.Embed{Fields: []model.Field{{Name: "log", Value: value}}}
	pages, err := Paginate(e, "p")
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "2bbb", pages[1].Fields[0].Value)
}

func TestSplitHardCutReassemblesMixedNewlines(t *testing.T) {
	value := `head\n` + strings.Repeat("z", 1500) + `\n` + "mid\n" + strings.Repeat("w", 900) + `\ntail` + "\n"
	out := Split(model.Field{Value: value}, "")
	require.Greater(t, len(out), 2)

	var joined strings.Builder
	for _, f := range out {
		assert.LessOrEqual(t, utf8.RuneCountInString(f.Value), MaxFieldLength)
		joined.WriteString(f.Value)
	}
	assert.Equal(t, strings.ReplaceAll(value, `\n`, "\n"), joined.String())
	assert.NotContains(t, joined.String(), `\n`)
}

func TestPageToken(t *testing.T) {
	assert.Equal(t, "{page}", PageToken("page"))
	assert.Equal(t, "{n}", PageToken("{n}"))
	assert.Equal(t, "", PageToken(""))
}

func TestPaginate(t *testing.T) {
	long := strings.Repeat(strings.Repeat("y", 99)+"\n", 25) // 2500 characters
	e := &model.Embed{
		Title:       str("Log {page}"),
		Description: "page {page}",
		Footer:      &model.Footer{Text: "{page} of many"},
		Colour:      "red",
		Fields:      []model.Field{{Name: "Entries ({page})", Value: long}},
	}
	pages, err := Paginate(e, "page")
	require.NoError(t, err)
	require.Len(t, pages, 3)
	for i, p := range pages {
		n := []string{"1", "2", "3"}[i]
		assert.Equal(t, "Log "+n, *p.Title)
		assert.Equal(t, "page "+n, p.Description)
		assert.Equal(t, n+" of many", p.Footer.Text)
		assert.Equal(t, "red", p.Colour)
		require.Len(t, p.Fields, 1)
		assert.Equal(t, "Entries ("+n+")", p.Fields[0].Name)
	}
	assert.Equal(t, "Log {page}", *e.Title, "source embed untouched")
	assert.Equal(t, "{page} of many", e.Footer.Text)
}

func TestPaginateKeepsOtherFieldsWithExpand(t *testing.T) {
	e := &model.Embed{
		Title:  str("t"),
		Fields: []model.Field{{Name: "static", Value: "s"}, {Name: "other", Value: "o"}},
		Expand: &model.Field{Name: "big", Value: "v"},
	}
	pages, err := Paginate(e, "")
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, []model.Field{{Name: "static", Value: "s"}, {Name: "other", Value: "o"}, {Name: "big", Value: "v"}}, pages[0].Fields)
}

func TestPaginateNeedsOneField(t *testing.T) {
	_, err := Paginate(&model.Embed{Title: str("t")}, "page")
	assert.True(t, errors.Is(err, tmplerr.ErrValidation))
}
