package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workflowsvc/pkg/errors"
)

const playerWithTracks = `{
	"playabilityStatus": {"status": "OK"},
	"captions": {"playerCaptionsTracklistRenderer": {"captionTracks": [
		{"baseUrl": "%[1]s/api/timedtext?v=dQw4w9WgXcQ&lang=en&fmt=srv3", "name": {"runs": [{"text": "English"}]}, "languageCode": "en"},
		{"baseUrl": "%[1]s/api/timedtext?v=dQw4w9WgXcQ&lang=en&kind=asr", "languageCode": "en", "kind": "asr"}
	]}}
}`

// newCaptionServer fakes the watch page, the innertube player and the
// timedtext endpoints. player is a format string receiving the server URL.
func newCaptionServer(t *testing.T, watchPage, player string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "dQw4w9WgXcQ", r.URL.Query().Get("v"))
		fmt.Fprint(w, watchPage)
	})
	mux.HandleFunc("/youtubei/v1/player", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key_1", r.URL.Query().Get("key"))

		var body playerRequest
		if assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) {
			assert.Equal(t, "dQw4w9WgXcQ", body.VideoID)
			assert.Equal(t, innertubeClientName, body.Context.Client.ClientName)
		}

		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(player, "%[1]s") {
			fmt.Fprintf(w, player, "http://"+r.Host)
			return
		}
		fmt.Fprint(w, player)
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("fmt"))
		fmt.Fprint(w, `<?xml version="1.0" encoding="utf-8" ?><transcript>`+
			`<text start="0" dur="2">hello</text>`+
			`<text start="1.5" dur="0.2"></text>`+
			`<text start="2" dur="3">world</text></transcript>`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

const watchPage = `<html><script>ytcfg.set({"INNERTUBE_API_KEY": "test-key_1"});</script></html>`

func TestClientListAndFetch(t *testing.T) {
	srv := newCaptionServer(t, watchPage, playerWithTracks)
	client := NewClient(Config{BaseURL: srv.URL, Timeout: 5 * time.Second})
	ctx := context.Background()

	list, err := client.ListTracks(ctx, "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.True(t, list.Playable())
	require.Len(t, list.Tracks, 2)
	assert.Equal(t, "English", list.Tracks[0].Name)
	assert.False(t, list.Tracks[0].Generated)
	assert.True(t, list.Tracks[1].Generated)
	assert.NotContains(t, list.Tracks[0].BaseURL, "fmt=srv3")

	svc := NewTranscriptService(client, []string{"en"})
	transcript, err := svc.Transcript(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "hello world", transcript.Text)
	require.NotNil(t, transcript.Duration)
	assert.Equal(t, 5, *transcript.Duration)
}

func TestClientCaptionsAbsent(t *testing.T) {
	srv := newCaptionServer(t, watchPage, `{"playabilityStatus": {"status": "OK"}}`)
	client := NewClient(Config{BaseURL: srv.URL})

	_, err := NewTranscriptService(client, nil).Check(context.Background(), ref)
	assert.ErrorIs(t, err, ErrTranscriptsDisabled)
}

func TestClientVideoUnavailable(t *testing.T) {
	srv := newCaptionServer(t, watchPage, `{"playabilityStatus": {"status": "ERROR", "reason": "Video unavailable"}}`)
	client := NewClient(Config{BaseURL: srv.URL})

	_, err := NewTranscriptService(client, nil).Check(context.Background(), ref)
	assert.ErrorIs(t, err, ErrVideoUnavailable)
}

func TestClientMissingInnertubeKey(t *testing.T) {
	srv := newCaptionServer(t, "<html></html>", playerWithTracks)
	client := NewClient(Config{BaseURL: srv.URL})

	_, err := client.ListTracks(context.Background(), "dQw4w9WgXcQ")
	assert.True(t, errors.Is(err, errors.ErrExternal))
}

func TestParseTimedTextUnescapes(t *testing.T) {
	segments, err := parseTimedText([]byte(`<transcript>` +
		`<text start="0" dur="1.5">it&amp;#39;s &lt;b&gt;up&lt;/b&gt;</text></transcript>`))
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, "it's up", segments[0].Text)
	assert.Equal(t, 1.5, segments[0].Duration)
}
