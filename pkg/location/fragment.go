package location

import (
	"net/url"
	"strings"
)

// FragmentDelimiter separates a URL from its fragment.
const FragmentDelimiter = "#"

// FragmentOf returns the part of rawURL after the first "#".
// A URL without a fragment yields "".
func FragmentOf(rawURL string) string {
	i := strings.Index(rawURL, FragmentDelimiter)
	if i < 0 {
		return ""
	}
	return rawURL[i+1:]
}

// Compose joins the path, query and fragment of loc.
func Compose(loc Snapshot) string {
	return loc.Pathname + loc.Search + loc.Hash
}

// ReplaceFragmentURL returns href with its fragment set to target.
//
// When href already has a fragment, everything after the "#" is replaced.
// Otherwise "#"+target is appended; an href with no path at all
// ("http://example.com") first gets a "/" so the result is
// "http://example.com/#"+target.
func ReplaceFragmentURL(href, target string) string {
	if i := strings.Index(href, FragmentDelimiter); i > -1 {
		return href[:i+1] + target
	}
	if hasEmptyPath(href) {
		href += "/"
	}
	return href + FragmentDelimiter + target
}

// hasEmptyPath reports whether href is an absolute URL that ends at its
// authority, so a "/" must be added before a fragment.
func hasEmptyPath(href string) bool {
	u, err := url.Parse(href)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Path == "" && u.RawQuery == "" && !u.ForceQuery
}
