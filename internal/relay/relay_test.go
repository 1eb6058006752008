package relay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mandalnilabja/goatrelay/internal/secrets"
	"github.com/mandalnilabja/goatrelay/internal/types"
	"github.com/mandalnilabja/goatrelay/internal/upstream"
)

func decode(t *testing.T, body string) map[string]any {
	t.Helper()
	p, err := DecodeObject(strings.NewReader(body))
	require.NoError(t, err)
	return p
}

func TestNormalizeChat_ClampsMaxTokens(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"above range", `{"max_tokens": 999999}`, MaxMaxTokens},
		{"zero", `{"max_tokens": 0}`, MinMaxTokens},
		{"negative", `{"max_tokens": -5}`, MinMaxTokens},
		{"lower bound", `{"max_tokens": 1}`, 1},
		{"upper bound", `{"max_tokens": 8192}`, 8192},
		{"inside range", `{"max_tokens": 512}`, 512},
		{"fractional truncates", `{"max_tokens": 100.9}`, 100},
		{"beyond float64 range", `{"max_tokens": 1e400}`, MaxMaxTokens},
		{"below float64 range", `{"max_tokens": -1e400}`, MinMaxTokens},
		{"huge integer", `{"max_tokens": 99999999999999999999999}`, MaxMaxTokens},
		{"absent uses default", `{}`, DefaultMaxTokens},
		{"null uses default", `{"max_tokens": null}`, DefaultMaxTokens},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := decode(t, tt.body)
			require.NoError(t, NormalizeChat(p, StreamPassthrough))
			assert.Equal(t, tt.want, p["max_tokens"])
		})
	}
}

func TestNormalizeChat_Scenario(t *testing.T) {
	p := decode(t, `{"model":"x","messages":[{"role":"user","content":"hi"}],"max_tokens":999999}`)

	require.NoError(t, NormalizeChat(p, StreamPassthrough))

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"model":"x","messages":[{"role":"user","content":"hi"}],"max_tokens":8192}`, string(out))
}

func TestNormalizeChat_StripsNullFields(t *testing.T) {
	p := decode(t, `{"model":"x","temperature":null,"top_p":null,"seed":7}`)

	require.NoError(t, NormalizeChat(p, StreamPassthrough))

	assert.NotContains(t, p, "temperature")
	assert.NotContains(t, p, "top_p")
	assert.Equal(t, json.Number("7"), p["seed"])
}

func TestNormalizeChat_StreamMode(t *testing.T) {
	for _, body := range []string{`{}`, `{"stream":false}`, `{"stream":true}`, `{"stream":null}`} {
		p := decode(t, body)
		require.NoError(t, NormalizeChat(p, StreamForce))
		assert.Equal(t, true, p["stream"], body)
	}

	p := decode(t, `{"stream":false}`)
	require.NoError(t, NormalizeChat(p, StreamPassthrough))
	assert.Equal(t, false, p["stream"])

	p = decode(t, `{}`)
	require.NoError(t, NormalizeChat(p, StreamPassthrough))
	assert.NotContains(t, p, "stream")
}

func TestNormalizeChat_TypeErrors(t *testing.T) {
	tests := []struct {
		body  string
		param string
	}{
		{`{"model": 3}`, "model"},
		{`{"messages": "hi"}`, "messages"},
		{`{"max_tokens": "lots"}`, "max_tokens"},
		{`{"temperature": "hot"}`, "temperature"},
		{`{"top_p": [1]}`, "top_p"},
		{`{"stream": "yes"}`, "stream"},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			err := NormalizeChat(decode(t, tt.body), StreamPassthrough)
			var reqErr *RequestError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, http.StatusBadRequest, reqErr.Status)
			assert.Equal(t, tt.param, reqErr.Param)
		})
	}
}

func TestDecodeObject_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty", ``, "empty"},
		{"malformed", `{"model":`, "invalid JSON body"},
		{"not an object", `[1,2]`, "expected an object"},
		{"trailing data", `{} {}`, "unexpected data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeObject(strings.NewReader(tt.body))
			var reqErr *RequestError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, http.StatusBadRequest, reqErr.Status)
			assert.Contains(t, reqErr.Message, tt.want)
		})
	}
}

func TestDecodeObject_TooLarge(t *testing.T) {
	rec := httptest.NewRecorder()
	body := http.MaxBytesReader(rec, io.NopCloser(strings.NewReader(`{"q":"`+strings.Repeat("a", 64)+`"}`)), 16)

	_, err := DecodeObject(body)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusRequestEntityTooLarge, reqErr.Status)
}

func TestAgentKwargs(t *testing.T) {
	kw, err := AgentKwargs(decode(t, `{"query":"  golang  ","email":"a@b.c","extra":1}`), true)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"query": "golang", "email": "a@b.c"}, kw)

	kw, err = AgentKwargs(decode(t, `{"query":"golang","email":"a@b.c"}`), false)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"query": "golang"}, kw)

	for _, body := range []string{`{}`, `{"query":""}`, `{"query":"   "}`, `{"query":null}`} {
		_, err := AgentKwargs(decode(t, body), false)
		require.Error(t, err, body)
		assert.Contains(t, err.Error(), "missing required field: query")
	}

	_, err = AgentKwargs(decode(t, `{"query":"q","email":5}`), true)
	require.Error(t, err)
}

// chunkRecorder records each Write separately and counts flushes.
type chunkRecorder struct {
	*httptest.ResponseRecorder
	writes  []string
	flushes int
}

func newChunkRecorder() *chunkRecorder {
	return &chunkRecorder{ResponseRecorder: httptest.NewRecorder()}
}

func (c *chunkRecorder) Write(b []byte) (int, error) {
	c.writes = append(c.writes, string(b))
	return c.ResponseRecorder.Write(b)
}

func (c *chunkRecorder) WriteString(s string) (int, error) {
	return c.Write([]byte(s))
}

func (c *chunkRecorder) Flush() {
	c.flushes++
	c.ResponseRecorder.Flush()
}

func TestStream_TwoChunksThenDone(t *testing.T) {
	pr, pw := io.Pipe()
	go func() {
		_, _ = pw.Write([]byte("data: {\"n\":1}\n\n"))
		_, _ = pw.Write([]byte("data: {\"n\":2}\n\n"))
		_ = pw.Close()
	}()

	rec := newChunkRecorder()
	res := Stream(context.Background(), rec, pr, time.Second)

	require.NoError(t, res.Err)
	assert.Equal(t, 2, res.Chunks)
	assert.Equal(t, []string{
		"data: {\"n\":1}\n\n",
		"data: {\"n\":2}\n\n",
		types.SSEDone,
	}, rec.writes)
	assert.Equal(t, 1, strings.Count(rec.Body.String(), "[DONE]"))
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.GreaterOrEqual(t, rec.flushes, 3)
}

func TestStream_PassesMalformedChunksThrough(t *testing.T) {
	rec := newChunkRecorder()
	Stream(context.Background(), rec, strings.NewReader("not sse at all"), time.Second)

	assert.Equal(t, "not sse at all"+types.SSEDone, rec.Body.String())
}

func TestStream_RelaysUpstreamSentinel(t *testing.T) {
	rec := newChunkRecorder()
	upstreamDone := "data: {\"n\":1}\n\n" + types.SSEDone
	res := Stream(context.Background(), rec, strings.NewReader(upstreamDone), time.Second)

	require.NoError(t, res.Err)
	assert.Equal(t, upstreamDone+types.SSEDone, rec.Body.String())
}

type failingReader struct {
	chunks []string
	err    error
}

func (f *failingReader) Read(p []byte) (int, error) {
	if len(f.chunks) == 0 {
		return 0, f.err
	}
	n := copy(p, f.chunks[0])
	f.chunks = f.chunks[1:]
	return n, nil
}

func TestStream_MidStreamFailure(t *testing.T) {
	rec := newChunkRecorder()
	res := Stream(context.Background(), rec, &failingReader{
		chunks: []string{"data: {\"n\":1}\n\n"},
		err:    errors.New("connection reset by peer"),
	}, time.Second)

	require.Error(t, res.Err)
	require.Len(t, rec.writes, 3)
	assert.Equal(t, "data: {\"n\":1}\n\n", rec.writes[0])
	assert.Contains(t, rec.writes[1], `"type":"stream_error"`)
	assert.Contains(t, rec.writes[1], "connection reset by peer")
	assert.Equal(t, types.SSEDone, rec.writes[2])
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStream_DeadlineMessage(t *testing.T) {
	rec := newChunkRecorder()
	Stream(context.Background(), rec, &failingReader{err: context.DeadlineExceeded}, 90*time.Second)

	assert.Contains(t, rec.Body.String(), "exceeded the 1m30s timeout")
	assert.True(t, strings.HasSuffix(rec.Body.String(), types.SSEDone))
}

func TestAttachMetadata(t *testing.T) {
	body := []byte(`{"id":"c1","choices":[{"message":{"role":"assistant","content":"<think>hmm</think>ok"}}]}`)
	meta := NewMetadata(time.Now().Add(-25*time.Millisecond), body, 12, "req-1")

	out := AttachMetadata(body, meta)

	var got map[string]any
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, "c1", got["id"])
	md, ok := got[MetadataKey].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, md["reasoning"])
	assert.Equal(t, float64(12), md["prompt_tokens_estimate"])
	assert.Equal(t, "req-1", md["request_id"])
	assert.GreaterOrEqual(t, md["elapsed_ms"].(float64), float64(25))
}

func TestAttachMetadata_NonObjectUnchanged(t *testing.T) {
	body := []byte(`["a","b"]`)
	assert.Equal(t, body, AttachMetadata(body, Metadata{}))
}

func TestDetectReasoning(t *testing.T) {
	assert.True(t, DetectReasoning([]byte(`{"choices":[{"message":{"reasoning_content":"step 1"}}]}`)))
	assert.True(t, DetectReasoning([]byte(`{"choices":[{"message":{"reasoning":"step 1"}}]}`)))
	assert.False(t, DetectReasoning([]byte(`{"choices":[{"message":{"content":"plain"}}]}`)))
	assert.False(t, DetectReasoning([]byte(`not json`)))
}

func TestReadJSON(t *testing.T) {
	data, err := ReadJSON(strings.NewReader(`{"ok":true}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(data))

	_, err = ReadJSON(strings.NewReader(`<html>`))
	assert.ErrorIs(t, err, ErrInvalidUpstreamJSON)

	_, err = ReadJSON(&failingReader{err: context.DeadlineExceeded})
	var ue *upstream.Error
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, upstream.KindTimeout, ue.Kind)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   ErrorKind
		wantText   string
	}{
		{"bad request", badRequest("query", "missing required field: query"), 400, KindBadRequest, "query"},
		{"missing config", &secrets.MissingError{Keys: []string{"INFERENCE_API_KEY"}}, 500, KindMissingConfig, "INFERENCE_API_KEY"},
		{"timeout", &upstream.Error{Kind: upstream.KindTimeout, Err: context.DeadlineExceeded}, 504, KindUpstreamTimeout, "timed out after 30s"},
		{"status", &upstream.Error{Kind: upstream.KindStatus, Status: 429, Body: "rate limited"}, 429, KindUpstreamStatus, "rate limited"},
		{"transport", &upstream.Error{Kind: upstream.KindTransport, Err: errors.New("dial tcp: refused")}, 502, KindTransport, "refused"},
		{"invalid upstream", ErrInvalidUpstreamJSON, 502, KindInvalidUpstream, "not JSON"},
		{"internal", errors.New("boom"), 500, KindInternal, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			m := WriteError(rec, tt.err, 30*time.Second)

			assert.Equal(t, tt.wantKind, m.Kind)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), tt.wantText)
		})
	}
}
