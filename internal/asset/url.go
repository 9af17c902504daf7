package asset

import (
	"fmt"
	"path"
	"strings"
)

// Schemes accepted for hub URLs.
const (
	Scheme      = "stage"
	SchemeLong  = "stagelink"
	urlSeparator = "://"
)

// URL is a parsed hub location. Plain filesystem paths parse into a URL
// with an empty scheme and host.
type URL struct {
	Scheme string
	Host   string
	Path   string
}

// ParseURL splits a raw location into scheme, host and path. It accepts
// stage:// URLs and plain local paths; the latter keep their path verbatim.
func ParseURL(raw string) (URL, error) {
	if raw == "" {
		return URL{}, fmt.Errorf("empty URL")
	}
	scheme, rest, found := strings.Cut(raw, urlSeparator)
	if !found {
		return URL{Path: raw}, nil
	}
	if scheme != Scheme && scheme != SchemeLong {
		return URL{}, fmt.Errorf("unsupported scheme %q in %q", scheme, raw)
	}
	host, p, _ := strings.Cut(rest, "/")
	if host == "" {
		return URL{}, fmt.Errorf("missing host in %q", raw)
	}
	return URL{Scheme: scheme, Host: host, Path: "/" + p}, nil
}

// IsHubURL reports whether the raw location addresses a hub server rather
// than the local filesystem. Mirrors the original URL validity check: the
// samples warn, but continue, when given a plain path.
func IsHubURL(raw string) bool {
	u, err := ParseURL(raw)
	return err == nil && u.Scheme != ""
}

// String renders the URL back into its raw form.
func (u URL) String() string {
	if u.Scheme == "" {
		return u.Path
	}
	return u.Scheme + urlSeparator + u.Host + u.Path
}

// Join appends path elements to the URL.
func (u URL) Join(elems ...string) URL {
	joined := u
	joined.Path = path.Join(append([]string{u.Path}, elems...)...)
	return joined
}

// Parent returns the URL of the containing folder.
func (u URL) Parent() URL {
	parent := u
	parent.Path = path.Dir(u.Path)
	return parent
}

// Base returns the last path element.
func (u URL) Base() string {
	return path.Base(u.Path)
}

// JoinURL is a convenience for joining raw location strings.
func JoinURL(base string, elems ...string) string {
	u, err := ParseURL(base)
	if err != nil {
		return path.Join(append([]string{base}, elems...)...)
	}
	return u.Join(elems...).String()
}
