package cf

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"log/slog"

	"github.com/andybalholm/brotli"
	"github.com/gocolly/colly"
)

// DecompressResponse decompresses a gzip or Brotli body of a colly response
// in place. It reports whether the body was changed.
//
// Call it from OnResponse; servers that honour the spoofed Accept-Encoding
// header may answer with Brotli, which net/http does not decode.
func DecompressResponse(r *colly.Response) (bool, error) {
	if r == nil || len(r.Body) == 0 {
		return false, nil
	}

	contentEncoding := ""
	if r.Headers != nil {
		contentEncoding = r.Headers.Get("Content-Encoding")
	}

	decompressed, changed, err := DecompressResponseBody(r.Body, contentEncoding)
	if err != nil {
		return false, err
	}
	if changed {
		slog.Debug("decompressed response", "url", r.Request.URL.String(), "from", len(r.Body), "to", len(decompressed))
		r.Body = decompressed
	}
	return changed, nil
}

// DecompressResponseBody returns body decompressed when it is gzip (by magic
// bytes) or Brotli (by Content-Encoding). Anything else is returned unchanged.
// A corrupt Brotli stream is an error.
func DecompressResponseBody(body []byte, contentEncoding string) ([]byte, bool, error) {
	if len(body) == 0 {
		return body, false, nil
	}

	// Try gzip
	if len(body) >= 2 && body[0] == 0x1f && body[1] == 0x8b {
		reader, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, false, err
		}
		defer reader.Close()

		decompressed, err := io.ReadAll(reader)
		if err != nil {
			return nil, false, err
		}
		return decompressed, true, nil
	}

	// Try Brotli
	if contentEncoding == "br" {
		decompressed, err := io.ReadAll(brotli.NewReader(bytes.NewReader(body)))
		if err != nil {
			return nil, false, fmt.Errorf("brotli: %w", err)
		}
		return decompressed, true, nil
	}

	// Not compressed
	return body, false, nil
}
