package imagepkg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/youruser/carouselapp/internal/util"
)

var (
	ErrEmptySource       = errors.New("empty image reference")
	ErrUnsupportedSource = errors.New("unsupported image reference")
	ErrHostNotAllowed    = errors.New("image host not allowed")
)

// qrSourceSize is the pixel size QR references are generated at.
const qrSourceSize = 512

// Loader resolves image references: data: URIs, http(s) URLs and qr: text.
type Loader struct {
	Client   *http.Client
	MaxBytes int64
	// AllowedHosts restricts http(s) fetches to these hosts and their
	// subdomains. Empty allows any host.
	AllowedHosts []string
}

func NewLoader(timeout time.Duration, maxBytes int64) *Loader {
	return &Loader{
		Client:   &http.Client{Timeout: timeout},
		MaxBytes: maxBytes,
	}
}

// Load decodes the image a reference points at.
func (l *Loader) Load(ctx context.Context, ref string) (image.Image, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return nil, ErrEmptySource
	case strings.HasPrefix(ref, "data:"):
		mime, data, err := ParseDataURI(ref)
		if err != nil {
			return nil, err
		}
		return Decode(mime, data)
	case strings.HasPrefix(ref, QRPrefix):
		return GenerateQRImage(strings.TrimPrefix(ref, QRPrefix), qrSourceSize)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return l.DownloadImage(ctx, ref)
	}
	return nil, ErrUnsupportedSource
}

// hostAllowed reports whether rawURL may be fetched.
func (l *Loader) hostAllowed(rawURL string) bool {
	if len(l.AllowedHosts) == 0 {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range l.AllowedHosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" && (host == h || strings.HasSuffix(host, "."+h)) {
			return true
		}
	}
	return false
}

// DownloadImage downloads an image from URL and returns image.Image (decoded).
func (l *Loader) DownloadImage(ctx context.Context, rawURL string) (image.Image, error) {
	if !l.hostAllowed(rawURL) {
		return nil, ErrHostNotAllowed
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	if len(l.AllowedHosts) > 0 {
		// redirects must stay on allowed hosts too
		c := *client
		c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if !l.hostAllowed(req.URL.String()) {
				return ErrHostNotAllowed
			}
			if len(via) >= 10 {
				return errors.New("stopped after 10 redirects")
			}
			return nil
		}
		client = &c
	}
	body, contentType, err := util.GetBytes(ctx, client, rawURL, l.MaxBytes)
	if err != nil {
		return nil, err
	}
	mime, _, _ := strings.Cut(contentType, ";")
	return Decode(strings.ToLower(strings.TrimSpace(mime)), body)
}

// Decode turns raw bytes into an image. SVG documents are rasterized,
// everything else goes through the registered image decoders.
func Decode(mime string, data []byte) (image.Image, error) {
	if isSVG(mime, data) {
		return RasterizeSVG(data, svgRasterWidth)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", mime, err)
	}
	return img, nil
}
