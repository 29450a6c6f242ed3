package render

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/disintegration/imaging"
)

const (
	logoMaxWidth  = 360
	logoMaxHeight = 160
)

var (
	ErrInvalidLogo    = errors.New("invalid_logo")
	ErrInvalidDataURI = errors.New("invalid_data_uri")
)

// DecodeDataURI decodes a "data:<mime>;base64,<payload>" string or bare
// base64, padded or not.
func DecodeDataURI(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "data:") {
		_, payload, ok := strings.Cut(raw, ",")
		if !ok {
			return nil, ErrInvalidDataURI
		}
		raw = payload
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		if data, err = base64.RawStdEncoding.DecodeString(raw); err != nil {
			return nil, ErrInvalidDataURI
		}
	}
	return data, nil
}

// DecodeLogo accepts a data URI or bare base64 image and returns a PNG
// scaled down to fit the document header.
func DecodeLogo(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	data, err := DecodeDataURI(raw)
	if err != nil {
		return nil, ErrInvalidLogo
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidLogo
	}
	b := img.Bounds()
	if b.Dx() > logoMaxWidth || b.Dy() > logoMaxHeight {
		img = imaging.Fit(img, logoMaxWidth, logoMaxHeight, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LogoDataURI is DecodeLogo re-encoded for an <img> tag. Invalid logos are
// dropped.
func LogoDataURI(raw string) string {
	png, err := DecodeLogo(raw)
	if err != nil || len(png) == 0 {
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
