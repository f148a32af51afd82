package wow

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joebot/nightslayer-bot/internal/config"
)

type fakeBlizzard struct {
	tokenCalls atomic.Int32
	srv        *httptest.Server
}

func newFakeBlizzard(t *testing.T) *fakeBlizzard {
	t.Helper()
	f := &fakeBlizzard{}
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		id, secret, ok := r.BasicAuth()
		if !ok || id != "id" || secret != "secret" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		r.ParseForm()
		if r.PostForm.Get("grant_type") != "client_credentials" {
			http.Error(w, "bad grant", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"access_token":"tok","token_type":"bearer","expires_in":86399}`)
	})
	mux.HandleFunc("/profile/wow/character/nightslayer/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("namespace") != "profile-classicann-us" || r.URL.Query().Get("locale") != "en_US" {
			http.Error(w, "bad query", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch strings.TrimPrefix(r.URL.Path, "/profile/wow/character/nightslayer/") {
		case "thrall":
			io.WriteString(w, `{"name":"Thrall","level":60,"race":{"name":"Orc"},"character_class":{"name":"Shaman"}}`)
		case "jaina":
			io.WriteString(w, `{"name":"Jaina","level":42,"race":{"name":"Human"},"character_class":{"name":"Mage"}}`)
		case "broken":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			http.NotFound(w, r)
		}
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func testConfig() config.BattleNetConfig {
	return config.BattleNetConfig{
		ClientID:          "id",
		ClientSecret:      "secret",
		Region:            "us",
		Realm:             "nightslayer",
		Namespace:         "profile-classicann-us",
		Locale:            "en_US",
		RequestsPerSecond: 100,
	}
}

func newTestClient(t *testing.T, f *fakeBlizzard) *Client {
	t.Helper()
	c, err := New(testConfig(), WithBaseURL(f.srv.URL), WithTokenURL(f.srv.URL+"/token"))
	require.NoError(t, err)
	require.NotNil(t, c)
	return c
}

func TestCharacterLookup(t *testing.T) {
	f := newFakeBlizzard(t)
	c := newTestClient(t, f)

	ch, err := c.Character(context.Background(), "THRALL")
	require.NoError(t, err)
	assert.Equal(t, &Character{Name: "Thrall", Level: 60, Race: "Orc", Class: "Shaman"}, ch)
	assert.Equal(t, "Orc Shaman", ch.Description())
}

func TestTokenIsReused(t *testing.T) {
	f := newFakeBlizzard(t)
	c := newTestClient(t, f)

	for i := 0; i < 3; i++ {
		_, err := c.Character(context.Background(), "Jaina")
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, f.tokenCalls.Load())
}

func TestCharacterNotFound(t *testing.T) {
	f := newFakeBlizzard(t)
	c := newTestClient(t, f)

	_, err := c.Character(context.Background(), "Nobody")
	assert.ErrorIs(t, err, ErrCharacterNotFound)
}

func TestCharacterServerError(t *testing.T) {
	f := newFakeBlizzard(t)
	c := newTestClient(t, f)

	_, err := c.Character(context.Background(), "broken")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrCharacterNotFound))
	assert.Contains(t, err.Error(), "503")
}

func TestCharactersKeepsOrderAndErrors(t *testing.T) {
	f := newFakeBlizzard(t)
	c := newTestClient(t, f)

	results := c.Characters(context.Background(), []string{"Jaina", "Nobody", "Thrall"})
	require.Len(t, results, 3)

	assert.Equal(t, "Jaina", results[0].Name)
	require.NoError(t, results[0].Err)
	assert.Equal(t, 42, results[0].Character.Level)

	assert.ErrorIs(t, results[1].Err, ErrCharacterNotFound)
	assert.Nil(t, results[1].Character)

	require.NoError(t, results[2].Err)
	assert.Equal(t, "Shaman", results[2].Character.Class)
}

func TestFanoutOption(t *testing.T) {
	f := newFakeBlizzard(t)
	c, err := New(testConfig(), WithBaseURL(f.srv.URL), WithTokenURL(f.srv.URL+"/token"), WithFanout(1))
	require.NoError(t, err)
	assert.Equal(t, 1, c.fanout)

	results := c.Characters(context.Background(), []string{"Thrall", "Jaina"})
	require.NoError(t, results[0].Err)
	require.NoError(t, results[1].Err)

	c, err = New(testConfig(), WithFanout(0))
	require.NoError(t, err)
	assert.Equal(t, 4, c.fanout, "non-positive keeps the default")
}

func TestNilClientNotConfigured(t *testing.T) {
	c, err := New(config.BattleNetConfig{ClientID: "only-id"})
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.False(t, c.Enabled())

	_, err = c.Character(context.Background(), "Thrall")
	assert.ErrorIs(t, err, ErrNotConfigured)

	results := c.Characters(context.Background(), []string{"a", "b"})
	require.Len(t, results, 2)
	assert.ErrorIs(t, results[1].Err, ErrNotConfigured)
}

func TestRealmDisplayName(t *testing.T) {
	assert.Equal(t, "Nightslayer", RealmDisplayName("nightslayer"))
	assert.Equal(t, "Living Flame", RealmDisplayName("living-flame"))
}
