package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/mandalnilabja/goatrelay/internal/types"
)

// readBufferSize is the largest single read from the upstream body.
const readBufferSize = 32 * 1024

// StreamResult summarises a finished stream relay.
type StreamResult struct {
	Chunks int
	Bytes  int64
	// Err is the mid-stream failure that produced an in-band error chunk, if any.
	Err error
	// ClientGone is set when writing to the client failed.
	ClientGone bool
}

// WriteStreamHeaders commits the event-stream response headers.
func WriteStreamHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
}

// Stream relays body to w chunk by chunk. A reader goroutine hands each
// chunk over an unbuffered channel, so it never gets ahead of the client by
// more than one read. Chunks are written and flushed in arrival order and
// never inspected. The stream always ends with exactly one [DONE] sentinel
// of our own, preceded by a single error event when the upstream read fails.
// An upstream [DONE] is relayed like any other chunk, so OpenAI-compatible
// upstreams produce two sentinels; clients stop at the first.
//
// timeout is only used to word the error event when ctx's deadline expires.
func Stream(ctx context.Context, w http.ResponseWriter, body io.Reader, timeout time.Duration) StreamResult {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	WriteStreamHeaders(w)
	flusher, _ := w.(http.Flusher)
	flush := func() {
		if flusher != nil {
			flusher.Flush()
		}
	}
	flush()

	chunks := make(chan []byte)
	errc := make(chan error, 1)
	go produce(ctx, body, chunks, errc)

	var (
		res  StreamResult
		once sync.Once
	)
	finish := func(streamErr error) {
		once.Do(func() {
			if streamErr != nil {
				_, _ = w.Write(types.FormatSSEError(streamErrorMessage(streamErr, timeout)))
			}
			_, _ = w.Write([]byte(types.SSEDone))
			flush()
		})
	}

	for chunk := range chunks {
		if _, err := w.Write(chunk); err != nil {
			res.ClientGone = true
			return res
		}
		flush()
		res.Chunks++
		res.Bytes += int64(len(chunk))
	}

	select {
	case err := <-errc:
		res.Err = err
	default:
	}
	finish(res.Err)
	return res
}

// produce reads body until EOF, failure or cancellation. It reports at most
// one error on errc before closing chunks.
func produce(ctx context.Context, body io.Reader, chunks chan<- []byte, errc chan<- error) {
	defer close(chunks)

	buf := make([]byte, readBufferSize)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case chunks <- chunk:
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			errc <- err
			return
		}
	}
}

func streamErrorMessage(err error, timeout time.Duration) string {
	if errors.Is(err, context.DeadlineExceeded) && timeout > 0 {
		return fmt.Sprintf("upstream stream exceeded the %s timeout", timeout)
	}
	return "upstream stream failed: " + err.Error()
}
