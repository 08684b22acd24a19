package main

import (
	"fmt"

	"github.com/alvmarrod/content-weaver/internal/config"
	"github.com/alvmarrod/content-weaver/internal/crawler"
	"github.com/spf13/cobra"
)

// NewLinksCmd creates the links command, which lists every anchor on one page
func NewLinksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "links <url>",
		Short: "Fetch one page and print every link on it",
		Args:  cobra.ExactArgs(1),
		RunE:  runLinks,
	}

	cmd.Flags().Bool("same-domain", false, "Only print resolved links on the page's own domain")
	cmd.Flags().Duration("timeout", crawler.DefaultRequestTimeout, "Request timeout")
	cmd.Flags().String("user-agent", config.DefaultUserAgent, "User-Agent header")

	return cmd
}

func runLinks(cmd *cobra.Command, args []string) error {
	pageURL := args[0]
	timeout, _ := cmd.Flags().GetDuration("timeout")
	userAgent, _ := cmd.Flags().GetString("user-agent")
	sameDomain, _ := cmd.Flags().GetBool("same-domain")

	body, err := crawler.NewCollyFetcher(userAgent, timeout).Fetch(pageURL)
	if err != nil {
		return err
	}

	var links []string
	if sameDomain {
		links, err = crawler.ExtractLinks(body, pageURL)
	} else {
		links, err = crawler.ExtractAnchors(body)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, link := range links {
		fmt.Fprintln(out, link)
	}
	return nil
}
