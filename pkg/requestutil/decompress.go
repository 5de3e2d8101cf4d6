package requestutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/carlmjohnson/requests"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-logr/logr"
	"github.com/mholt/archives"
)

var ContentTypesGzip = []string{
	"application/gzip",
	"application/x-gzip",
}

var ContentTypesJSON = []string{
	"application/json",
	"text/json",
}

// ToJSON decodes the response body into v. Gzip-compressed
// bodies are decompressed first.
//
// Failures to read the body from the connection are returned
// as a *ReadError so that callers can tell them apart from
// bodies that are not valid json.
func ToJSON(v any) requests.ResponseHandler {
	return func(response *http.Response) error {
		log := logr.FromContextOrDiscard(response.Request.Context())

		tracked := &trackingReader{r: response.Body}
		response.Body = struct {
			io.Reader
			io.Closer
		}{tracked, response.Body}

		stream, err := Body(response)
		if err != nil {
			if tracked.err != nil {
				return &ReadError{Err: tracked.err}
			}
			return err
		}
		defer stream.Close()

		contentType := response.Header.Get("Content-Type")
		if !isGzipped(contentType) && !IsJSON(contentType) {
			log.V(1).Info("response does not look like json, decoding anyway", "contentType", contentType)
		}

		if err := json.NewDecoder(stream).Decode(v); err != nil {
			if tracked.err != nil {
				return &ReadError{Err: tracked.err}
			}
			return fmt.Errorf("decoding json: %w", err)
		}
		return nil
	}
}

// ReadError is a failure to read the response body, such as
// a timeout or a connection closed before the body was complete.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading response body: %s", e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// trackingReader records the first error returned by the
// underlying reader other than io.EOF.
type trackingReader struct {
	r   io.Reader
	err error
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && t.err == nil {
		t.err = err
	}
	return n, err
}

// Body returns a reader over the uncompressed response body.
func Body(response *http.Response) (io.ReadCloser, error) {
	log := logr.FromContextOrDiscard(response.Request.Context())

	// if it's a gzip response, decompress it
	if isGzipped(response.Header.Get("Content-Type")) {
		log.V(8).Info("decompressing gzip response")
		dec, err := archives.Gz{}.OpenReader(response.Body)
		if err != nil {
			return nil, fmt.Errorf("decompressing: %w", err)
		}
		return dec, nil
	}
	return io.NopCloser(response.Body), nil
}

// IsJSON returns true if the content type is a json type.
// Parameters such as the charset are ignored.
func IsJSON(s string) bool {
	return mimetype.EqualsAny(s, ContentTypesJSON...)
}

func isGzipped(s string) bool {
	return mimetype.EqualsAny(s, ContentTypesGzip...)
}
