package dav

import (
	"net/url"
	"strings"
)

// NormalizePath makes sure path starts with "/". An empty path is the root.
func NormalizePath(p string) string {
	if len(p) == 0 {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	return p
}

// EncodePath percent encodes every segment of p and keeps the "/" separators.
func EncodePath(p string) string {
	segs := strings.Split(p, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return strings.Join(segs, "/")
}

func DecodePath(p string) (string, error) {
	return url.PathUnescape(p)
}

// FileName returns the last non empty segment of p.
func FileName(p string) string {
	segs := strings.Split(p, "/")
	for i := len(segs) - 1; i >= 0; i-- {
		if len(segs[i]) != 0 {
			return segs[i]
		}
	}
	return ""
}
