package models

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"mime"
	"strings"
)

// ContentHash returns the content id of an object: the hex SHA-256 digest of
// its canonical encoding.
func ContentHash(canonical []byte) string {
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}

// ContentHashOf streams r through the same digest as ContentHash and also
// returns the number of bytes read.
func ContentHashOf(r io.Reader) (string, int64, error) {
	h := sha256.New()
	n, err := io.Copy(h, r)
	if err != nil {
		return "", n, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// common types first so the result does not depend on the host mime table
var knownExtensions = map[string]string{
	"image/jpeg":       "jpg",
	"image/png":        "png",
	"image/gif":        "gif",
	"image/webp":       "webp",
	"video/mp4":        "mp4",
	"video/3gpp":       "3gp",
	"video/webm":       "webm",
	"audio/mpeg":       "mp3",
	"audio/ogg":        "ogg",
	"audio/aac":        "aac",
	"text/plain":       "txt",
	"application/pdf":  "pdf",
	"application/zip":  "zip",
	"application/json": "json",
}

// ExtensionForMIME maps a MIME type to a file extension without the dot,
// falling back to "bin".
func ExtensionForMIME(mimeType string) string {
	base, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		base = strings.ToLower(strings.TrimSpace(mimeType))
	}
	if ext, ok := knownExtensions[base]; ok {
		return ext
	}
	if exts, err := mime.ExtensionsByType(base); err == nil && len(exts) > 0 {
		return strings.TrimPrefix(exts[0], ".")
	}
	return "bin"
}

// CacheFileName is "{hash}.{ext}", the canonical cache file of an object.
func CacheFileName(o *Object) string {
	return o.ContentHash + "." + ExtensionForMIME(o.MIME)
}
