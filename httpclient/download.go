package httpclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
)

// ProgressFunc receives download progress. total is -1 when the server did
// not send a Content-Length header.
type ProgressFunc func(received, total int64)

// Download fetches a (potentially large) resource with a streamed read loop,
// reporting fractional progress derived from the Content-Length header.
func (c *Client) Download(ctx context.Context, rawURL string, progress ProgressFunc) ([]byte, error) {
	httpReq, err := c.buildRequest(ctx, Request{Method: http.MethodGet, Path: rawURL})
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if statusErr := ClassifyStatusCode(resp.StatusCode, nil); statusErr != nil {
		return nil, statusErr
	}

	total := resp.ContentLength
	var buf bytes.Buffer
	if total > 0 {
		buf.Grow(int(total))
	}

	chunk := make([]byte, 32*1024)
	var received int64
	for {
		n, readErr := resp.Body.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			received += int64(n)
			if progress != nil {
				progress(received, total)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, classifyTransportError(readErr)
		}
	}

	return buf.Bytes(), nil
}
