package location_test

import (
	"reflect"
	"testing"

	"github.com/vango-dev/lokation/pkg/location"
	"github.com/vango-dev/lokation/pkg/memhost"
)

// recorder collects notifications.
type recorder struct {
	got []string
}

func (r *recorder) fn(path string) {
	r.got = append(r.got, path)
}

func TestNew_Mode(t *testing.T) {
	tests := []struct {
		name    string
		history bool
		opts    []location.Option
		want    bool
	}{
		{"default with history", true, nil, true},
		{"prefer stack with history", true, []location.Option{location.WithPreferStack(true)}, true},
		{"prefer fragment with history", true, []location.Option{location.WithPreferStack(false)}, false},
		{"default without history", false, nil, false},
		{"prefer stack without history", false, []location.Option{location.WithPreferStack(true)}, false},
		{"prefer fragment without history", false, []location.Option{location.WithPreferStack(false)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hostOpts []memhost.Option
			if !tt.history {
				hostOpts = append(hostOpts, memhost.WithoutHistory())
			}
			a := location.New(memhost.New("http://example.com/", hostOpts...), tt.opts...)
			if a.HTML5() != tt.want {
				t.Errorf("HTML5() = %v, want %v", a.HTML5(), tt.want)
			}
			wantMode := location.ModeFragment
			if tt.want {
				wantMode = location.ModeStack
			}
			if a.Mode() != wantMode {
				t.Errorf("Mode() = %v, want %v", a.Mode(), wantMode)
			}
		})
	}
}

func TestMode_String(t *testing.T) {
	if s := location.ModeStack.String(); s != "stack" {
		t.Errorf("ModeStack.String() = %q", s)
	}
	if s := location.ModeFragment.String(); s != "fragment" {
		t.Errorf("ModeFragment.String() = %q", s)
	}
}

func TestURL(t *testing.T) {
	t.Run("stack mode composes path query and hash", func(t *testing.T) {
		h := memhost.New("http://www.example.com/full-path?and=query#top")
		a := location.New(h)
		if got := a.URL(); got != "/full-path?and=query#top" {
			t.Errorf("URL() = %q, want %q", got, "/full-path?and=query#top")
		}
	})

	t.Run("fragment mode returns fragment", func(t *testing.T) {
		h := memhost.New("http://example.com/#/hash", memhost.WithoutHistory())
		a := location.New(h)
		if got := a.URL(); got != "/hash" {
			t.Errorf("URL() = %q, want %q", got, "/hash")
		}
	})

	t.Run("fragment mode without fragment", func(t *testing.T) {
		h := memhost.New("http://example.com/about", memhost.WithoutHistory())
		a := location.New(h)
		if got := a.URL(); got != "" {
			t.Errorf("URL() = %q, want empty", got)
		}
	})

	t.Run("read does not mutate or notify", func(t *testing.T) {
		h := memhost.New("http://example.com/a#b")
		a := location.New(h)
		var rec recorder
		a.OnChange(rec.fn)

		for i := 0; i < 3; i++ {
			a.URL()
			a.Hash()
		}

		if len(rec.got) != 0 {
			t.Errorf("notifications = %v, want none", rec.got)
		}
		if len(h.Pushes())+len(h.Replaces())+len(h.URLReplaces())+len(h.HashWrites()) != 0 {
			t.Error("URL() wrote to the host")
		}
		if h.Href() != "http://example.com/a#b" {
			t.Errorf("Href() = %q", h.Href())
		}
	})
}

func TestSetURL_Stack(t *testing.T) {
	h := memhost.New("http://example.com/")
	a := location.New(h)
	var rec recorder
	a.OnChange(rec.fn)

	if ret := a.SetURL("/foo/bar"); ret != a {
		t.Error("SetURL should return the adapter")
	}

	if want := []string{"/foo/bar"}; !reflect.DeepEqual(h.Pushes(), want) {
		t.Errorf("Pushes() = %v, want %v", h.Pushes(), want)
	}
	if want := []string{"/foo/bar"}; !reflect.DeepEqual(rec.got, want) {
		t.Errorf("notifications = %v, want %v", rec.got, want)
	}
	if h.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0 (pushState fires no event)", h.Pending())
	}
}

func TestSetURL_Fragment(t *testing.T) {
	h := memhost.New("http://example.com/", memhost.WithoutHistory())
	a := location.New(h)
	var rec recorder
	a.OnChange(rec.fn)

	a.SetURL("/docs")

	if want := []string{"/docs"}; !reflect.DeepEqual(h.HashWrites(), want) {
		t.Errorf("HashWrites() = %v, want %v", h.HashWrites(), want)
	}
	if want := []string{"/docs"}; !reflect.DeepEqual(rec.got, want) {
		t.Errorf("notifications = %v, want %v", rec.got, want)
	}
	if h.Href() != "http://example.com/#/docs" {
		t.Errorf("Href() = %q", h.Href())
	}
}

func TestSetHash_EchoSuppression(t *testing.T) {
	t.Run("suppressed by default", func(t *testing.T) {
		h := memhost.New("http://example.com/", memhost.WithoutHistory())
		a := location.New(h)
		var rec recorder
		a.OnChange(rec.fn)
		a.Listen()
		rec.got = nil

		a.SetHash("/a")
		h.Flush()

		if want := []string{"/a"}; !reflect.DeepEqual(rec.got, want) {
			t.Errorf("notifications = %v, want %v", rec.got, want)
		}
	})

	t.Run("disabled notifies twice", func(t *testing.T) {
		h := memhost.New("http://example.com/", memhost.WithoutHistory())
		a := location.New(h, location.WithEchoSuppression(false))
		var rec recorder
		a.OnChange(rec.fn)
		a.Listen()
		rec.got = nil

		a.SetHash("/a")
		h.Flush()

		if want := []string{"/a", "/a"}; !reflect.DeepEqual(rec.got, want) {
			t.Errorf("notifications = %v, want %v", rec.got, want)
		}
	})

	t.Run("later user change is not swallowed", func(t *testing.T) {
		h := memhost.New("http://example.com/", memhost.WithoutHistory())
		a := location.New(h)
		var rec recorder
		a.OnChange(rec.fn)
		a.Listen()
		rec.got = nil

		a.SetHash("/a")
		h.SetHash("/b") // user edits the fragment before the echo arrives
		h.Flush()

		if want := []string{"/a", "/b"}; !reflect.DeepEqual(rec.got, want) {
			t.Errorf("notifications = %v, want %v", rec.got, want)
		}
	})

	t.Run("unchanged value expects no echo", func(t *testing.T) {
		h := memhost.New("http://example.com/#/a", memhost.WithoutHistory())
		a := location.New(h)
		var rec recorder
		a.OnChange(rec.fn)
		a.Listen()
		rec.got = nil

		a.SetHash("/a")
		h.Flush()
		h.SetHash("/b")
		h.Flush()

		if want := []string{"/a", "/b"}; !reflect.DeepEqual(rec.got, want) {
			t.Errorf("notifications = %v, want %v", rec.got, want)
		}
	})

	t.Run("two writes in one turn", func(t *testing.T) {
		h := memhost.New("http://example.com/", memhost.WithoutHistory())
		a := location.New(h)
		var rec recorder
		a.OnChange(rec.fn)
		a.Listen()
		rec.got = nil

		a.SetHash("/a")
		a.SetHash("/b")
		h.Flush()

		if want := []string{"/a", "/b"}; !reflect.DeepEqual(rec.got, want) {
			t.Errorf("notifications = %v, want %v", rec.got, want)
		}
	})

	t.Run("write and replace in one turn", func(t *testing.T) {
		h := memhost.New("http://example.com/", memhost.WithoutHistory())
		a := location.New(h)
		var rec recorder
		a.OnChange(rec.fn)
		a.Listen()
		rec.got = nil

		a.SetHash("/a").Replace("/b")
		h.Flush()
		h.SetHash("/c")
		h.Flush()

		if want := []string{"/a", "/b", "/c"}; !reflect.DeepEqual(rec.got, want) {
			t.Errorf("notifications = %v, want %v", rec.got, want)
		}
	})

	t.Run("write before listen", func(t *testing.T) {
		h := memhost.New("http://example.com/", memhost.WithoutHistory())
		a := location.New(h)
		var rec recorder
		a.OnChange(rec.fn)

		a.SetHash("/a")
		a.Listen()
		h.Flush()

		if want := []string{"/a", "/a"}; !reflect.DeepEqual(rec.got, want) {
			t.Errorf("notifications = %v, want %v (write, then listen)", rec.got, want)
		}
	})
}

func TestSetHash_Stack(t *testing.T) {
	h := memhost.New("http://example.com/docs?x=1")
	a := location.New(h)
	var rec recorder
	a.OnChange(rec.fn)

	a.SetHash("intro")

	if want := []string{"/docs?x=1#intro"}; !reflect.DeepEqual(rec.got, want) {
		t.Errorf("notifications = %v, want %v", rec.got, want)
	}
	if a.Hash() != "intro" {
		t.Errorf("Hash() = %q, want %q", a.Hash(), "intro")
	}
}

func TestSetHash_StackPopStateEcho(t *testing.T) {
	tests := []struct {
		name     string
		suppress bool
		writes   []string
		want     []string
	}{
		{"suppressed", true, []string{"intro"}, []string{"/docs#intro"}},
		{"disabled", false, []string{"intro"}, []string{"/docs#intro", "/docs#intro"}},
		{"two writes", true, []string{"a", "b"}, []string{"/docs#a", "/docs#b"}},
		{"unchanged", true, []string{""}, []string{"/docs"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := memhost.New("http://example.com/docs")
			a := location.New(h, location.WithEchoSuppression(tt.suppress))
			var rec recorder
			a.OnChange(rec.fn)
			a.Listen()
			rec.got = nil

			for _, w := range tt.writes {
				a.SetHash(w)
			}
			h.Flush()

			if !reflect.DeepEqual(rec.got, tt.want) {
				t.Errorf("notifications = %v, want %v", rec.got, tt.want)
			}
		})
	}

	t.Run("user back is still reported", func(t *testing.T) {
		h := memhost.New("http://example.com/docs")
		a := location.New(h)
		var rec recorder
		a.OnChange(rec.fn)
		a.Listen()
		a.SetHash("intro")
		h.Flush()
		rec.got = nil

		h.Back()
		h.Flush()

		if want := []string{"/docs"}; !reflect.DeepEqual(rec.got, want) {
			t.Errorf("notifications = %v, want %v", rec.got, want)
		}
	})
}

func TestReplace_Fragment(t *testing.T) {
	tests := []struct {
		name     string
		href     string
		target   string
		opts     []location.Option
		wantHref string
		wantNote string
	}{
		{
			name:     "default root on bare origin",
			href:     "http://example.com",
			wantHref: "http://example.com/#/",
			wantNote: "/",
		},
		{
			name:     "target replaces existing fragment",
			href:     "http://example.com/#/about",
			target:   "/contact",
			wantHref: "http://example.com/#/contact",
			wantNote: "/contact",
		},
		{
			name:     "path with fragment",
			href:     "http://example.com/foo#bar",
			target:   "baz",
			wantHref: "http://example.com/foo#baz",
			wantNote: "baz",
		},
		{
			name:     "no target keeps current fragment",
			href:     "http://example.com/#/keep",
			wantHref: "http://example.com/#/keep",
			wantNote: "/keep",
		},
		{
			name:     "configured empty default",
			href:     "http://example.com/app",
			opts:     []location.Option{location.WithDefaultFragment("")},
			wantHref: "http://example.com/app#",
			wantNote: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := memhost.New(tt.href, memhost.WithoutHistory())
			a := location.New(h, tt.opts...)
			var rec recorder
			a.OnChange(rec.fn)

			a.Replace(tt.target)

			if want := []string{tt.wantHref}; !reflect.DeepEqual(h.URLReplaces(), want) {
				t.Errorf("URLReplaces() = %v, want %v", h.URLReplaces(), want)
			}
			if want := []string{tt.wantNote}; !reflect.DeepEqual(rec.got, want) {
				t.Errorf("notifications = %v, want %v", rec.got, want)
			}
			entries, _ := h.Entries()
			if len(entries) != 1 {
				t.Errorf("history length = %d, want 1", len(entries))
			}
		})
	}
}

func TestReplace_FragmentEcho(t *testing.T) {
	h := memhost.New("http://example.com/#/a", memhost.WithoutHistory())
	a := location.New(h)
	var rec recorder
	a.OnChange(rec.fn)
	a.Listen()
	rec.got = nil

	a.Replace("/b")
	if n := h.Pending(); n != 1 {
		t.Fatalf("Pending() = %d, want 1 hashchange from the host", n)
	}
	h.Flush()

	if want := []string{"/b"}; !reflect.DeepEqual(rec.got, want) {
		t.Errorf("notifications = %v, want %v", rec.got, want)
	}
}

func TestReplace_Stack(t *testing.T) {
	t.Run("target", func(t *testing.T) {
		h := memhost.New("http://example.com/a")
		a := location.New(h)
		var rec recorder
		a.OnChange(rec.fn)

		a.Replace("/b?x=1")

		if want := []string{"/b?x=1"}; !reflect.DeepEqual(h.Replaces(), want) {
			t.Errorf("Replaces() = %v, want %v", h.Replaces(), want)
		}
		if want := []string{"/b?x=1"}; !reflect.DeepEqual(rec.got, want) {
			t.Errorf("notifications = %v, want %v", rec.got, want)
		}
		entries, pos := h.Entries()
		if len(entries) != 1 || pos != 0 {
			t.Errorf("Entries() = %v at %d, want a single entry", entries, pos)
		}
	})

	t.Run("default is current location", func(t *testing.T) {
		h := memhost.New("http://example.com/a?q=1#s")
		a := location.New(h)
		var rec recorder
		a.OnChange(rec.fn)

		a.Replace("")

		if want := []string{"/a?q=1#s"}; !reflect.DeepEqual(h.Replaces(), want) {
			t.Errorf("Replaces() = %v, want %v", h.Replaces(), want)
		}
		if want := []string{"/a?q=1#s"}; !reflect.DeepEqual(rec.got, want) {
			t.Errorf("notifications = %v, want %v", rec.got, want)
		}
	})
}

func TestListen(t *testing.T) {
	t.Run("stack mode registers popstate once", func(t *testing.T) {
		h := memhost.New("http://www.example.com/full-path?and=query")
		a := location.New(h)
		var rec recorder
		a.OnChange(rec.fn)

		if a.Listening() {
			t.Fatal("Listening() before Listen")
		}
		a.Listen()
		a.Listen()

		if n := h.Listeners(location.EventPopState); n != 1 {
			t.Errorf("popstate listeners = %d, want 1", n)
		}
		if n := h.Listeners(location.EventHashChange); n != 0 {
			t.Errorf("hashchange listeners = %d, want 0", n)
		}
		if want := []string{"/full-path?and=query"}; !reflect.DeepEqual(rec.got, want) {
			t.Errorf("notifications = %v, want %v", rec.got, want)
		}
		if !a.Listening() {
			t.Error("Listening() = false after Listen")
		}
	})

	t.Run("fragment mode registers hashchange once", func(t *testing.T) {
		h := memhost.New("http://example.com/#/home", memhost.WithoutHistory())
		a := location.New(h)
		var rec recorder
		a.OnChange(rec.fn)

		a.Listen().Listen()

		if n := h.Listeners(location.EventHashChange); n != 1 {
			t.Errorf("hashchange listeners = %d, want 1", n)
		}
		if n := h.Listeners(location.EventPopState); n != 0 {
			t.Errorf("popstate listeners = %d, want 0", n)
		}
		if want := []string{"/home"}; !reflect.DeepEqual(rec.got, want) {
			t.Errorf("notifications = %v, want %v", rec.got, want)
		}
	})
}

func TestListen_Gating(t *testing.T) {
	h := memhost.New("http://example.com/", memhost.WithoutHistory())
	a := location.New(h)
	var rec recorder
	a.OnChange(rec.fn)

	h.SetHash("/early")
	h.Flush()
	if len(rec.got) != 0 {
		t.Fatalf("notifications before Listen = %v, want none", rec.got)
	}

	a.Listen()
	rec.got = nil

	h.SetHash("/late")
	h.Flush()
	if want := []string{"/late"}; !reflect.DeepEqual(rec.got, want) {
		t.Errorf("notifications after Listen = %v, want %v", rec.got, want)
	}
}

func TestMutators_NotGatedByListen(t *testing.T) {
	h := memhost.New("http://example.com/", memhost.WithoutHistory())
	a := location.New(h)
	var rec recorder
	a.OnChange(rec.fn)

	a.SetHash("/x").Replace("/y")

	if want := []string{"/x", "/y"}; !reflect.DeepEqual(rec.got, want) {
		t.Errorf("notifications = %v, want %v", rec.got, want)
	}
}

func TestBackForward(t *testing.T) {
	t.Run("stack mode", func(t *testing.T) {
		h := memhost.New("http://example.com/")
		a := location.New(h)
		var rec recorder
		a.OnChange(rec.fn)
		a.Listen()
		a.SetURL("/a").SetURL("/b?page=2")
		rec.got = nil

		h.Back()
		h.Flush()
		h.Back()
		h.Flush()
		h.Forward()
		h.Flush()

		if want := []string{"/a", "/", "/a"}; !reflect.DeepEqual(rec.got, want) {
			t.Errorf("notifications = %v, want %v", rec.got, want)
		}
	})

	t.Run("fragment mode", func(t *testing.T) {
		h := memhost.New("http://example.com/", memhost.WithoutHistory())
		a := location.New(h)
		var rec recorder
		a.OnChange(rec.fn)
		a.Listen()
		a.SetURL("/a")
		h.Flush()
		a.SetURL("/b")
		h.Flush()
		rec.got = nil

		h.Back()
		h.Flush()

		if want := []string{"/a"}; !reflect.DeepEqual(rec.got, want) {
			t.Errorf("notifications = %v, want %v", rec.got, want)
		}
	})
}

func TestOnChange_Unsubscribe(t *testing.T) {
	h := memhost.New("http://example.com/")
	a := location.New(h)

	var calls []string
	f1 := func(string) { calls = append(calls, "f1") }
	f2 := func(string) { calls = append(calls, "f2") }
	f3 := func(string) { calls = append(calls, "f3") }

	a.OnChange(f1)
	a.OnChange(f2)
	second := a.OnChange(f1)
	a.OnChange(f3)
	a.OnChange(f1)

	second()

	a.SetURL("/x")
	if want := []string{"f1", "f2", "f3", "f1"}; !reflect.DeepEqual(calls, want) {
		t.Errorf("calls = %v, want %v", calls, want)
	}
	if a.Subscribers() != 4 {
		t.Errorf("Subscribers() = %d, want 4", a.Subscribers())
	}

	second()
	if a.Subscribers() != 4 {
		t.Errorf("Subscribers() after repeated unsubscribe = %d, want 4", a.Subscribers())
	}
}

func TestOnChange_UnsubscribeDuringNotify(t *testing.T) {
	h := memhost.New("http://example.com/")
	a := location.New(h)

	var calls []string
	var unsubB func()
	a.OnChange(func(string) {
		calls = append(calls, "a")
		unsubB()
	})
	unsubB = a.OnChange(func(string) { calls = append(calls, "b") })

	a.SetURL("/1")
	a.SetURL("/2")

	if want := []string{"a", "b", "a"}; !reflect.DeepEqual(calls, want) {
		t.Errorf("calls = %v, want %v", calls, want)
	}
}

func TestNotify_SubscriberPanicPropagates(t *testing.T) {
	h := memhost.New("http://example.com/")
	a := location.New(h)

	var after bool
	a.OnChange(func(string) { panic("boom") })
	a.OnChange(func(string) { after = true })

	defer func() {
		r := recover()
		if r != "boom" {
			t.Errorf("recover() = %v, want boom", r)
		}
		if after {
			t.Error("subscriber after the panicking one was called")
		}
		if want := []string{"/x"}; !reflect.DeepEqual(h.Pushes(), want) {
			t.Errorf("Pushes() = %v, want %v", h.Pushes(), want)
		}
	}()

	a.SetURL("/x")
	t.Fatal("SetURL returned despite panicking subscriber")
}
