package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lojasmm/cartaz/internal/render"
	"github.com/lojasmm/cartaz/internal/store"
	"github.com/lojasmm/cartaz/internal/tmplerr"
	"github.com/lojasmm/cartaz/internal/whatsapp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const greetings = `{
  "Hello": {"type": "message", "content": "Hello {name}", "embed": {"title": "Welcome"}},
  "Tour": {"type": "menu", "pages": ["Hello", {"type": "message", "content": "bye"}]},
  "Broken": {"type": "message", "embed": {"title": "x", "colour": "not-a-colour"}}
}`

func newTestServer(t *testing.T, webhook *whatsapp.WebhookHandler) (*Server, http.Handler) {
	t.Helper()
	s, err := store.NewBoltStore(filepath.Join(t.TempDir(), "cartaz.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	srv := New(s, render.Options{}, webhook)
	return srv, srv.Handler()
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	_, h := newTestServer(t, nil)
	rec := do(h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = do(h, http.MethodGet, "/webhook", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTemplateLifecycle(t *testing.T) {
	_, h := newTestServer(t, nil)

	rec := do(h, http.MethodPut, "/templates/greetings.json", greetings)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var put struct {
		Format string   `json:"format"`
		Keys   []string `json:"keys"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &put))
	assert.Equal(t, "json", put.Format)
	assert.ElementsMatch(t, []string{"Hello", "Tour", "Broken"}, put.Keys)

	rec = do(h, http.MethodGet, "/templates", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []sourceInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "greetings.json", list[0].Name)

	rec = do(h, http.MethodGet, "/templates/greetings.json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"body"`)

	rec = do(h, http.MethodDelete, "/templates/greetings.json", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(h, http.MethodGet, "/templates/greetings.json", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(h, http.MethodDelete, "/templates/greetings.json", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPutRejectsMalformedSource(t *testing.T) {
	_, h := newTestServer(t, nil)
	rec := do(h, http.MethodPut, "/templates/bad?format=xml", "<root><Hello a=1/></root>")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"parse"`)

	rec = do(h, http.MethodPut, "/templates/bad?format=toml", "{}")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(h, http.MethodGet, "/templates", "")
	assert.Equal(t, "[]\n", rec.Body.String())
}

// previewBody reads the parts of a preview the tests check. Components are
// interfaces in discordgo and cannot be decoded back into render.Preview.
type previewBody struct {
	Kind    string `json:"kind"`
	Message *struct {
		Content string `json:"content"`
		Embeds  []struct {
			Title string `json:"title"`
		} `json:"embeds"`
	} `json:"message"`
	Pages []json.RawMessage `json:"pages"`
}

func TestRenderPreview(t *testing.T) {
	_, h := newTestServer(t, nil)
	require.Equal(t, http.StatusOK, do(h, http.MethodPut, "/templates/greetings.json", greetings).Code)

	rec := do(h, http.MethodPost, "/templates/greetings.json/render/Hello", `{"keywords":{"name":"Ana"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var p previewBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "message", p.Kind)
	require.NotNil(t, p.Message)
	assert.Equal(t, "Hello Ana", p.Message.Content)
	require.Len(t, p.Message.Embeds, 1)
	assert.Equal(t, "Welcome", p.Message.Embeds[0].Title)

	rec = do(h, http.MethodPost, "/templates/greetings.json/render/Tour", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	p = previewBody{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "menu", p.Kind)
	assert.Len(t, p.Pages, 2)
}

func TestRenderErrors(t *testing.T) {
	_, h := newTestServer(t, nil)
	require.Equal(t, http.StatusOK, do(h, http.MethodPut, "/templates/greetings.json", greetings).Code)

	rec := do(h, http.MethodPost, "/templates/greetings.json/render/Nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"not_found"`)

	rec = do(h, http.MethodPost, "/templates/greetings.json/render/Broken", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"invalid_colour"`)

	rec = do(h, http.MethodPost, "/templates/greetings.json/render/Hello", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, http.MethodPost, "/templates/other.json/render/Hello", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestKeys(t *testing.T) {
	_, h := newTestServer(t, nil)
	require.Equal(t, http.StatusOK, do(h, http.MethodPut, "/templates/greetings.json", greetings).Code)
	rec := do(h, http.MethodGet, "/templates/greetings.json/keys", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var keys []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &keys))
	assert.ElementsMatch(t, []string{"Hello", "Tour", "Broken"}, keys)
}

func TestFind(t *testing.T) {
	srv, h := newTestServer(t, nil)
	require.Equal(t, http.StatusOK, do(h, http.MethodPut, "/templates/greetings.json", greetings).Code)

	res, err := srv.Find("Tour", nil)
	require.NoError(t, err)
	assert.Equal(t, "menu", res.Kind().String())

	_, err = srv.Find("Missing", nil)
	assert.ErrorIs(t, err, tmplerr.ErrNotFound)
}

func TestWebhookMounted(t *testing.T) {
	_, h := newTestServer(t, whatsapp.NewWebhookHandler("secret", nil, nil))
	rec := do(h, http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=secret&hub.challenge=7", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "7", rec.Body.String())
}
