package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/vango-dev/lokation/internal/errors"
	"github.com/vango-dev/lokation/pkg/location"
)

func resolveCmd() *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "resolve <href>",
		Short: "Show how a URL reads in stack and fragment mode",
		Long: `Split an absolute URL into the parts a location adapter reads, and
show what each mode reports as the current location.

With --target, also show where SetURL and Replace would lead from href.

Examples:
  lokation resolve 'http://example.com/docs?q=1#/intro'
  lokation resolve http://example.com/ --target /settings`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("E141").
					WithDetail("resolve needs an absolute URL").
					WithExample("lokation resolve http://example.com/#/home")
			}
			href, err := absoluteURL(args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			snap := location.SnapshotOf(href)
			fmt.Fprintf(w, "href:      %s\n", snap.Href)
			fmt.Fprintf(w, "pathname:  %s\n", snap.Pathname)
			fmt.Fprintf(w, "search:    %s\n", snap.Search)
			fmt.Fprintf(w, "hash:      %s\n", snap.Hash)
			fmt.Fprintf(w, "stack:     %s\n", location.Compose(snap))
			fmt.Fprintf(w, "fragment:  %s\n", location.FragmentOf(href))

			if target != "" {
				fmt.Fprintln(w)
				fmt.Fprintf(w, "push:      %s\n", location.Resolve(href, target))
				fmt.Fprintf(w, "replace:   %s\n", location.ReplaceFragmentURL(href, target))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "", "Navigation target to resolve against href")

	return cmd
}

// absoluteURL returns raw if it parses as an absolute URL.
func absoluteURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", errors.New("E100").WithDetail(raw + " is not a valid URL").Wrap(err)
	}
	if !u.IsAbs() || u.Host == "" {
		return "", errors.New("E100").
			WithDetail(raw + " is not absolute").
			WithExample("http://example.com" + raw)
	}
	return raw, nil
}
