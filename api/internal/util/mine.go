package util

import (
	"encoding/base64"
	"path/filepath"
	"strings"
)

// MIMEFromExt maps a file name to the content type sent with the image.
// Only PNG is told apart; everything else goes out as JPEG.
func MIMEFromExt(name string) string {
	if strings.ToLower(filepath.Ext(name)) == ".png" {
		return "image/png"
	}
	return "image/jpeg"
}

func MakeDataURL(mime, b64 string) string {
	return "data:" + mime + ";base64," + b64
}

// EncodeDataURL base64-encodes img into a data: URI.
func EncodeDataURL(mime string, img []byte) string {
	return MakeDataURL(mime, base64.StdEncoding.EncodeToString(img))
}

// DecodeDataURL splits data:<mime>;base64,<payload> back into its parts.
func DecodeDataURL(s string) ([]byte, string, error) {
	s = strings.TrimSpace(s)
	var mime string
	if strings.HasPrefix(s, "data:") {
		if idx := strings.IndexByte(s, ','); idx > 0 {
			meta := s[len("data:"):idx]
			if semi := strings.IndexByte(meta, ';'); semi >= 0 {
				mime = meta[:semi]
			} else {
				mime = meta
			}
			s = s[idx+1:]
		}
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, "", err
	}
	return b, mime, nil
}
