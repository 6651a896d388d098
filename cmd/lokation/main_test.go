package main

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/lokation/internal/errors"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func errCode(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version", "--short")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("version --short = %q, want %q", out, version)
	}

	out, _ = run(t, "version")
	if !strings.Contains(out, "Go version:") {
		t.Errorf("version output missing Go version:\n%s", out)
	}
}

func TestResolve(t *testing.T) {
	out, err := run(t, "resolve", "http://example.com/docs?q=1#/intro", "--target", "/b")
	if err != nil {
		t.Fatalf("resolve error = %v", err)
	}
	for _, want := range []string{
		"pathname:  /docs",
		"search:    ?q=1",
		"hash:      #/intro",
		"stack:     /docs?q=1#/intro",
		"fragment:  /intro",
		"push:      http://example.com/b",
		"replace:   http://example.com/docs?q=1#/b",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("resolve output missing %q:\n%s", want, out)
		}
	}
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"resolve"}, "E141"},
		{[]string{"resolve", "/relative"}, "E100"},
		{[]string{"resolve", "http://[::1"}, "E100"},
	}
	for _, tt := range tests {
		if _, err := run(t, tt.args...); errCode(err) != tt.want {
			t.Errorf("%v error = %v, want %s", tt.args, err, tt.want)
		}
	}
}

func TestSimulate(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "stack mode",
			args: []string{"http://example.com/", "listen", "push:/a", "push:/b", "back"},
			want: []string{
				"mode: stack",
				`listen               "/"`,
				`push:/a              "/a"`,
				`push:/b              "/b"`,
				`back                 "/a"`,
				"href:    http://example.com/a",
				"history: 3 entries, at 1",
			},
		},
		{
			name: "fragment mode suppresses echo",
			args: []string{"--no-history", "http://example.com/", "listen", "hash:/x", "replace"},
			want: []string{
				"mode: fragment",
				`listen               ""`,
				`hash:/x              "/x"`,
				`replace              "/x"`,
				"url:     /x",
			},
		},
		{
			name: "stack mode suppresses popstate echo",
			args: []string{"http://example.com/", "listen", "hash:a", "hash:b"},
			want: []string{
				"mode: stack",
				`hash:a               "/#a"`,
				`hash:b               "/#b"`,
				"history: 3 entries, at 2",
			},
		},
		{
			name: "fragment mode reports echo",
			args: []string{"--force-fragment", "--no-echo-suppression", "http://example.com/", "listen", "hash:/x"},
			want: []string{
				"mode: fragment",
				`hash:/x              "/x" "/x"`,
			},
		},
		{
			name: "back at start",
			args: []string{"http://example.com/", "back"},
			want: []string{
				"back: already at the first entry",
				"back                 -",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"simulate"}, tt.args...)...)
			if err != nil {
				t.Fatalf("simulate error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestParseSteps(t *testing.T) {
	tests := []struct {
		step    string
		wantErr bool
	}{
		{"listen", false},
		{"push:/a", false},
		{"replace", false},
		{"replace:/a", false},
		{"go:-2", false},
		{"navigate:#/x", false},
		{"push", true},
		{"back:1", true},
		{"go:x", true},
		{"jump", true},
	}
	for _, tt := range tests {
		_, err := parseSteps([]string{tt.step})
		if (err != nil) != tt.wantErr {
			t.Errorf("parseSteps(%q) error = %v, wantErr %v", tt.step, err, tt.wantErr)
		}
		if err != nil && errCode(err) != "E140" {
			t.Errorf("parseSteps(%q) code = %q, want E140", tt.step, errCode(err))
		}
	}
}

func TestExplain(t *testing.T) {
	errors.DisableColors()
	defer errors.EnableColors()

	out, err := run(t, "explain", "e123")
	if err != nil {
		t.Fatalf("explain error = %v", err)
	}
	if !strings.Contains(out, "E123: Configuration file not found") {
		t.Errorf("explain output = %q", out)
	}

	out, _ = run(t, "explain")
	if i, j := strings.Index(out, "E060"), strings.Index(out, "E141"); i < 0 || j < i {
		t.Errorf("explain list not sorted:\n%s", out)
	}

	if _, err := run(t, "explain", "E999"); err == nil {
		t.Error("explain E999 should fail")
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lokation.toml")
	content := "[server]\naddress = \":9000\"\n\n[log]\nformat = \"json\"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(serveOptions{configPath: path, forceFragment: true})
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Server.Address != ":9000" || !cfg.Server.ForceFragment {
		t.Errorf("Server = %+v", cfg.Server)
	}

	cfg, err = loadConfig(serveOptions{configPath: path, addr: ":7000"})
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Server.Address != ":7000" {
		t.Errorf("Address = %q, flag should win", cfg.Server.Address)
	}

	if _, err := loadConfig(serveOptions{configPath: filepath.Join(dir, "missing.toml")}); errCode(err) != "E123" {
		t.Errorf("missing config error = %v, want E123", err)
	}
}

func TestNewServer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lokation.yaml")
	if err := os.WriteFile(path, []byte("server:\n  forceFragment: true\n  title: demo\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var logs bytes.Buffer
	srv, err := newServer(serveOptions{configPath: path}, &logs)
	if err != nil {
		t.Fatalf("newServer() error = %v", err)
	}
	if c := srv.Config(); !c.ForceFragment || c.Title != "demo" {
		t.Errorf("Config() = %+v", c)
	}
}
