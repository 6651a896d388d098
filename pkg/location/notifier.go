package location

// Subscriber receives the current location after every change.
type Subscriber func(path string)

// subscription is one registration. Its address is the identity used
// for removal, so the same Subscriber may be registered more than once.
type subscription struct {
	fn Subscriber
}

// notifier is an ordered list of subscriptions.
type notifier struct {
	subs []*subscription
}

// add appends fn and returns a function removing that registration.
// Calling the returned function more than once has no further effect.
func (n *notifier) add(fn Subscriber) func() {
	s := &subscription{fn: fn}
	n.subs = append(n.subs, s)

	removed := false
	return func() {
		if removed {
			return
		}
		removed = true
		n.remove(s)
	}
}

// remove deletes s, keeping the order of the remaining subscriptions.
// The backing array is copied so a notify in progress keeps its snapshot.
func (n *notifier) remove(s *subscription) {
	for i, cur := range n.subs {
		if cur != s {
			continue
		}
		next := make([]*subscription, 0, len(n.subs)-1)
		next = append(next, n.subs[:i]...)
		next = append(next, n.subs[i+1:]...)
		n.subs = next
		return
	}
}

// notify calls every subscription in registration order. Subscriptions
// added or removed by a subscriber take effect on the next notify.
// A panicking subscriber stops the iteration and the panic propagates.
func (n *notifier) notify(path string) {
	subs := n.subs
	for _, s := range subs {
		s.fn(path)
	}
}

// len returns the number of registrations.
func (n *notifier) len() int {
	return len(n.subs)
}
