package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profile struct {
	Name     string
	Roles    []string
	LastSeen int
}

func (p profile) Greeting() string { return "hi " + p.Name }

func TestFormatSubstitutesPresentKeys(t *testing.T) {
	tests := []struct {
		name     string
		document string
		keywords map[string]any
		want     string
	}{
		{"plain", "Hello {user}!", map[string]any{"user": "Ana"}, "Hello Ana!"},
		{"number", "{count} items", map[string]any{"count": 3}, "3 items"},
		{"map path", "{w.a.b}", map[string]any{"w": map[string]any{"a": map[string]any{"b": "deep"}}}, "deep"},
		{"slice index", "{w[1]}", map[string]any{"w": []string{"x", "y"}}, "y"},
		{"negative index", "{w[-1]}", map[string]any{"w": []int{4, 5, 6}}, "6"},
		{"quoted key", `{w["k"]}`, map[string]any{"w": map[string]string{"k": "v"}}, "v"},
		{"struct field", "{p.name}", map[string]any{"p": profile{Name: "Rui"}}, "Rui"},
		{"snake field", "{p.last_seen}", map[string]any{"p": profile{LastSeen: 9}}, "9"},
		{"method", "{p.greeting}", map[string]any{"p": profile{Name: "Rui"}}, "hi Rui"},
		{"nested index", "{p.roles[0]}", map[string]any{"p": &profile{Roles: []string{"admin"}}}, "admin"},
		{"width", "[{n:>5}]", map[string]any{"n": "ab"}, "[   ab]"},
		{"center fill", "[{n:*^6}]", map[string]any{"n": "ab"}, "[**ab**]"},
		{"precision", "{pi:.2f}", map[string]any{"pi": 3.14159}, "3.14"},
		{"grouping", "{n:,}", map[string]any{"n": 1234567}, "1,234,567"},
		{"hex", "{n:x}", map[string]any{"n": 255}, "ff"},
		{"zero pad", "{n:05d}", map[string]any{"n": -42}, "-0042"},
		{"percent", "{r:.0%}", map[string]any{"r": 0.25}, "25%"},
		{"repr", "{s!r}", map[string]any{"s": "x"}, "'x'"},
		{"json braces untouched", `{"title": "{t}"}`, map[string]any{"t": "Hi"}, `{"title": "Hi"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Format{}.Template(tt.document, tt.keywords)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatLeavesMissingPlaceholdersIntact(t *testing.T) {
	documents := []string{
		"{missing}",
		"{w.a.b}",
		"{w[0]}",
		"{page:>3}",
		"{{literal}}",
		"{ not a placeholder }",
		"{unterminated",
		"}{",
		"emoji {:smile:}",
	}
	keywords := map[string]any{"w": map[string]any{"a": "flat"}}
	for _, d := range documents {
		got, err := Format{}.Template(d, keywords)
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
}

func TestFormatIsIdempotentOnMissingKeys(t *testing.T) {
	d := `<embed><title>{title}</title><field>{{x}} {page} {a.b[2]}</field></embed>`
	once, err := Format{}.Template(d, nil)
	require.NoError(t, err)
	twice, err := Format{}.Template(once, nil)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
	assert.Equal(t, d, once)
}

func TestFormatBadSpecOnResolvedValue(t *testing.T) {
	_, err := Format{}.Template("{n:q}", map[string]any{"n": 1})
	assert.Error(t, err)
	_, err = Format{}.Template("{n:d}", map[string]any{"n": "abc"})
	assert.Error(t, err)
}

func TestLogicEngine(t *testing.T) {
	got, err := Logic{}.Template(`{{if .vip}}VIP {{end}}{{.name | upper}} {{.missing}}`, map[string]any{"vip": true, "name": "ana"})
	require.NoError(t, err)
	assert.Equal(t, "VIP ANA {{.missing}}", got)

	got, err = Logic{}.Template(`{{join ", " .items}}|{{default "none" .absent}}`, map[string]any{"items": []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, "a, b|none", got)

	got, err = Logic{}.Template("no actions {x}", nil)
	require.NoError(t, err)
	assert.Equal(t, "no actions {x}", got)
}

func TestLogicKeepsUnresolvedPaths(t *testing.T) {
	kw := map[string]any{
		"user":  map[string]any{"first": "Ana"},
		"items": []string{"a", "b"},
		"users": []map[string]any{{"first": "Bia"}},
	}
	for _, tc := range []struct {
		doc, want string
	}{
		{"hi {{.user.name}}", "hi {{.user.name}}"},
		{"hi {{.user.first}}", "hi Ana"},
		{"{{index .items 1}} {{index .items 3}}", "b {{index .items 3}}"},
		{`{{index .user "first"}} {{index .user "last"}}`, `Ana {{index .user "last"}}`},
		{"{{range .users}}{{.first}}{{end}}", "Bia"},
		{"{{with .user}}{{.first}}{{else}}{{.gone}}{{end}}", "Ana"},
	} {
		got, err := Logic{}.Template(tc.doc, kw)
		require.NoError(t, err, tc.doc)
		assert.Equal(t, tc.want, got, tc.doc)
	}

	// Format keeps the same placeholder in its own syntax.
	got, err := Format{}.Template("hi {user.name}", kw)
	require.NoError(t, err)
	assert.Equal(t, "hi {user.name}", got)
}

func TestLogicParseError(t *testing.T) {
	_, err := Logic{}.Template("{{if}}", nil)
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	e, err := New(NameLogic)
	require.NoError(t, err)
	assert.IsType(t, Logic{}, e)

	e, err = New("")
	require.NoError(t, err)
	assert.IsType(t, Format{}, e)

	_, err = New("jinja")
	assert.Error(t, err)
}

func TestFuncAdapter(t *testing.T) {
	var e Engine = Func(func(d string, _ map[string]any) (string, error) { return d + "!", nil })
	got, err := e.Template("x", nil)
	require.NoError(t, err)
	assert.Equal(t, "x!", got)
}
