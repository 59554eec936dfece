package imagepkg

import (
	"encoding/base64"
	"errors"
	"net/url"
	"strings"
)

var ErrBadDataURI = errors.New("malformed data uri")

// ParseDataURI splits a data: URI into its media type and payload. Both
// base64 and percent-encoded payloads are accepted.
func ParseDataURI(s string) (string, []byte, error) {
	if !strings.HasPrefix(s, "data:") {
		return "", nil, ErrBadDataURI
	}
	meta, payload, ok := strings.Cut(s[len("data:"):], ",")
	if !ok {
		return "", nil, ErrBadDataURI
	}
	params := strings.Split(meta, ";")
	mime := strings.ToLower(strings.TrimSpace(params[0]))
	if mime == "" {
		mime = "text/plain"
	}
	isBase64 := false
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}
	if isBase64 {
		b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
		if err != nil {
			// Some encoders drop the padding.
			b, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(strings.TrimSpace(payload), "="))
			if err != nil {
				return "", nil, ErrBadDataURI
			}
		}
		return mime, b, nil
	}
	text, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, ErrBadDataURI
	}
	return mime, []byte(text), nil
}

// EncodeDataURI builds a base64 data: URI.
func EncodeDataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
