/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package roster

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/mikeb26/bracketmaker/internal"
)

// Fetcher retrieves rosters published on the web. HTML pages are parsed
// with Table; anything else is treated as a plain list.
type Fetcher struct {
	Client *http.Client
	Table  TableSpec
}

// NewFetcher returns a Fetcher using client, typically one made by
// internal.NewCachedHttpClient so that repeated fetches of a registration
// page during an event do not hammer the origin.
func NewFetcher(client *http.Client, table TableSpec) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{Client: client, Table: table}
}

// Fetch returns the names published at url.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", internal.UserAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d fetching %s", resp.StatusCode, url)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "html") {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", url, err)
		}
		names, err := parseTable(doc, f.Table)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", url, err)
		}
		return names, nil
	}

	names, err := ParseList(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", url, err)
	}
	return names, nil
}

// FetchAll fetches several rosters concurrently and concatenates them in
// the order the urls were given. Duplicates are left for
// bracket.CreateTournament to report.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) ([]string, error) {
	results := make([][]string, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	for i, url := range urls {
		g.Go(func() error {
			names, err := f.Fetch(gctx, url)
			if err != nil {
				return fmt.Errorf("unable to fetch roster %v: %w", url, err)
			}
			results[i] = names
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []string
	for _, names := range results {
		all = append(all, names...)
	}
	return all, nil
}
