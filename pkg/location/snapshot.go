package location

import (
	"net/url"
	"strings"
)

// SnapshotOf splits href into its location components the way a browser
// does: an absolute URL with no path has pathname "/", and a bare "#" or
// "?" yields an empty fragment or query.
func SnapshotOf(href string) Snapshot {
	s := Snapshot{Href: href}

	rest := href
	if i := strings.Index(rest, FragmentDelimiter); i > -1 {
		if i+1 < len(rest) {
			s.Hash = rest[i:]
		}
		rest = rest[:i]
	}
	if i := strings.Index(rest, "?"); i > -1 {
		if i+1 < len(rest) {
			s.Search = rest[i:]
		}
		rest = rest[:i]
	}

	u, err := url.Parse(rest)
	if err != nil {
		s.Pathname = rest
		return s
	}
	s.Pathname = u.EscapedPath()
	if s.Pathname == "" && (u.Host != "" || u.Scheme != "") {
		s.Pathname = "/"
	}
	return s
}

// Resolve returns ref resolved against the absolute URL base. A ref that
// cannot be parsed is returned unchanged.
func Resolve(base, ref string) string {
	// Fragment-only references keep the fragment verbatim; ResolveReference
	// would re-escape it and keeps the base fragment for a bare "#".
	if strings.HasPrefix(ref, FragmentDelimiter) {
		return WithoutFragment(base) + ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

// WithoutFragment returns href with any fragment removed.
func WithoutFragment(href string) string {
	if i := strings.Index(href, FragmentDelimiter); i > -1 {
		return href[:i]
	}
	return href
}
