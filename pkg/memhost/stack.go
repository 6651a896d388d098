package memhost

// Stack is a back/forward navigation stack of URLs.
type Stack struct {
	entries []string
	pos     int // current position in the stack
	limit   int
}

// NewStack creates an empty stack holding at most limit entries.
// A limit of zero or less means unlimited.
func NewStack(limit int) *Stack {
	return &Stack{pos: -1, limit: limit}
}

// Push adds url after the current entry, truncating any forward entries.
func (s *Stack) Push(url string) {
	if s.pos < len(s.entries)-1 {
		s.entries = s.entries[:s.pos+1]
	}
	s.entries = append(s.entries, url)
	if s.limit > 0 && len(s.entries) > s.limit {
		s.entries = s.entries[len(s.entries)-s.limit:]
	}
	s.pos = len(s.entries) - 1
}

// Replace overwrites the current entry. On an empty stack it pushes.
func (s *Stack) Replace(url string) {
	if s.pos < 0 {
		s.Push(url)
		return
	}
	s.entries[s.pos] = url
}

// Move shifts the current position by delta. It reports false and leaves
// the position unchanged when the target is out of range or delta is 0.
func (s *Stack) Move(delta int) bool {
	target := s.pos + delta
	if delta == 0 || target < 0 || target >= len(s.entries) {
		return false
	}
	s.pos = target
	return true
}

// Current returns the current URL, or "" if the stack is empty.
func (s *Stack) Current() string {
	if s.pos < 0 || s.pos >= len(s.entries) {
		return ""
	}
	return s.entries[s.pos]
}

// CanGoBack reports whether there is a previous entry.
func (s *Stack) CanGoBack() bool {
	return s.pos > 0
}

// CanGoForward reports whether there is a next entry.
func (s *Stack) CanGoForward() bool {
	return s.pos < len(s.entries)-1
}

// Len returns the total number of entries.
func (s *Stack) Len() int {
	return len(s.entries)
}

// Entries returns a copy of the entries and the current position.
func (s *Stack) Entries() ([]string, int) {
	out := make([]string, len(s.entries))
	copy(out, s.entries)
	return out, s.pos
}
