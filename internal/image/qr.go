package imagepkg

import (
	"image"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// QRPrefix marks an image reference that is rendered as a QR code of the
// text that follows, e.g. "qr:https://example.com/me".
const QRPrefix = "qr:"

// qrCode builds a QR code in the slide ink colour on white, so QR stickers
// match the text drawn around them.
func qrCode(text string) (*qrcode.QRCode, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptySource
	}
	q, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	q.ForegroundColor = colorInk
	q.BackgroundColor = colorWhite
	return q, nil
}

// GenerateQRPNG returns PNG bytes of a QR code for the given text.
func GenerateQRPNG(text string, size int) ([]byte, error) {
	q, err := qrCode(text)
	if err != nil {
		return nil, err
	}
	return q.PNG(size)
}

// GenerateQRImage returns an image.Image for further composition.
func GenerateQRImage(text string, size int) (image.Image, error) {
	q, err := qrCode(text)
	if err != nil {
		return nil, err
	}
	return q.Image(size), nil
}
