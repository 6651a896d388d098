package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/lokation/internal/errors"
	"github.com/vango-dev/lokation/pkg/location"
	"github.com/vango-dev/lokation/pkg/memhost"
)

type simulateOptions struct {
	noHistory     bool
	forceFragment bool
	noEcho        bool
}

func simulateCmd() *cobra.Command {
	var opts simulateOptions

	cmd := &cobra.Command{
		Use:   "simulate <href> [step...]",
		Short: "Replay navigation steps against an in-memory tab",
		Long: `Open an in-memory browser tab at href, attach a location adapter and
apply each step in order, printing every notification subscribers see.

Steps:
  listen            start following the tab
  push:<url>        SetURL(url)
  hash:<fragment>   SetHash(fragment)
  replace:<target>  Replace(target)
  replace           Replace("")
  navigate:<url>    the user follows a link
  back, forward     the user presses a history button
  go:<n>            history.go(n)

Events the tab fires are delivered after each step.

Examples:
  lokation simulate http://example.com/ listen push:/a push:/b back
  lokation simulate --no-history http://example.com/ listen hash:/x replace`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("E141").
					WithDetail("simulate needs a starting URL").
					WithExample("lokation simulate http://example.com/ listen push:/a")
			}
			return runSimulation(cmd.OutOrStdout(), opts, args[0], args[1:])
		},
	}

	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "Simulate a tab without window.history")
	cmd.Flags().BoolVar(&opts.forceFragment, "force-fragment", false, "Use fragment mode even with history")
	cmd.Flags().BoolVar(&opts.noEcho, "no-echo-suppression", false, "Report hashchange echoes of the adapter's own writes")

	return cmd
}

type step struct {
	raw string
	op  string
	arg string
	n   int
}

func parseSteps(raw []string) ([]step, error) {
	steps := make([]step, 0, len(raw))
	for _, r := range raw {
		op, arg, hasArg := strings.Cut(r, ":")
		s := step{raw: r, op: op, arg: arg}
		switch op {
		case "listen", "back", "forward":
			if hasArg {
				return nil, badStep(r)
			}
		case "replace":
		case "push", "hash", "navigate":
			if !hasArg {
				return nil, badStep(r)
			}
		case "go":
			n, err := strconv.Atoi(arg)
			if err != nil {
				return nil, badStep(r)
			}
			s.n = n
		default:
			return nil, badStep(r)
		}
		steps = append(steps, s)
	}
	return steps, nil
}

func badStep(raw string) error {
	return errors.New("E140").
		WithDetail(fmt.Sprintf("%q is not a step. Steps are push:<url>, hash:<fragment>, replace:<target>, replace, back, forward, go:<n>, navigate:<url> or listen.", raw)).
		WithExample("lokation simulate http://example.com/ listen push:/a back")
}

func runSimulation(w io.Writer, opts simulateOptions, href string, raw []string) error {
	href, err := absoluteURL(href)
	if err != nil {
		return err
	}
	steps, err := parseSteps(raw)
	if err != nil {
		return err
	}

	var hostOpts []memhost.Option
	if opts.noHistory {
		hostOpts = append(hostOpts, memhost.WithoutHistory())
	}
	host := memhost.New(href, hostOpts...)
	loc := location.New(host,
		location.WithPreferStack(!opts.forceFragment),
		location.WithEchoSuppression(!opts.noEcho),
	)

	var seen []string
	loc.OnChange(func(path string) { seen = append(seen, path) })

	fmt.Fprintf(w, "mode: %s\n", loc.Mode())
	for _, s := range steps {
		switch s.op {
		case "listen":
			loc.Listen()
		case "push":
			loc.SetURL(s.arg)
		case "hash":
			loc.SetHash(s.arg)
		case "replace":
			loc.Replace(s.arg)
		case "navigate":
			host.Navigate(s.arg)
		case "back":
			if !host.Back() {
				warn(w, "%s: already at the first entry", s.raw)
			}
		case "forward":
			if !host.Forward() {
				warn(w, "%s: already at the last entry", s.raw)
			}
		case "go":
			if !host.Go(s.n) {
				warn(w, "%s: out of range", s.raw)
			}
		}
		host.Flush()

		notes := "-"
		if len(seen) > 0 {
			notes = strings.Join(quoteAll(seen), " ")
		}
		fmt.Fprintf(w, "%-20s %s\n", s.raw, notes)
		seen = seen[:0]
	}

	entries, cur := host.Entries()
	fmt.Fprintf(w, "\nurl:     %s\n", loc.URL())
	fmt.Fprintf(w, "href:    %s\n", host.Href())
	fmt.Fprintf(w, "history: %d entries, at %d\n", len(entries), cur)
	return nil
}

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strconv.Quote(s)
	}
	return out
}
