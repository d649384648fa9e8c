/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package roster

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/mikeb26/meetday/internal"
	"github.com/mikeb26/meetday/schedule"
)

// Rosters maps a group name to the athletes registered for it. Rows of a
// registration list without a group column land under "".
type Rosters map[string][]schedule.RosterEntry

var ErrNoRoster = errors.New("no registration table found")

type column int

const (
	colName column = iota
	colSurname
	colGroup
	colAgeGroup
	colUnknown
)

// headerColumn maps a header cell to the column it holds.
func headerColumn(h string) column {
	switch strings.ToLower(strings.TrimSpace(h)) {
	case "name", "vorname", "first name", "firstname":
		return colName
	case "surname", "nachname", "last name", "lastname":
		return colSurname
	case "group", "gruppe", "riege":
		return colGroup
	case "age group", "agegroup", "altersklasse", "ak":
		return colAgeGroup
	}
	return colUnknown
}

type layout map[column]int

func newLayout(headers []string) (layout, bool) {
	l := make(layout)
	for idx, h := range headers {
		c := headerColumn(h)
		if c == colUnknown {
			continue
		}
		if _, dup := l[c]; !dup {
			l[c] = idx
		}
	}
	_, hasName := l[colName]
	_, hasSurname := l[colSurname]
	return l, hasName && hasSurname
}

func (l layout) add(out Rosters, cells []string) {
	cell := func(c column) string {
		idx, ok := l[c]
		if !ok || idx >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[idx])
	}
	entry := schedule.RosterEntry{
		Name:     internal.NormalizeName(cell(colName)),
		Surname:  internal.NormalizeName(cell(colSurname)),
		AgeGroup: strings.ToUpper(cell(colAgeGroup)),
	}
	if entry.Name == "" && entry.Surname == "" {
		return
	}
	group := cell(colGroup)
	out[group] = append(out[group], entry)
}

// ParseHTML extracts athletes from the first table whose header names a
// first and last name column.
func ParseHTML(r io.Reader) (Rosters, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("unable to parse roster page: %w", err)
	}

	var out Rosters
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		var headers []string
		table.Find("tr").First().Find("th, td").Each(func(_ int, s *goquery.Selection) {
			headers = append(headers, s.Text())
		})
		l, ok := newLayout(headers)
		if !ok {
			return true
		}

		out = make(Rosters)
		table.Find("tr").Each(func(idx int, row *goquery.Selection) {
			if idx == 0 {
				return
			}
			var cells []string
			row.Find("td").Each(func(_ int, s *goquery.Selection) {
				cells = append(cells, s.Text())
			})
			if len(cells) == 0 {
				return
			}
			l.add(out, cells)
		})
		return false
	})

	if out == nil {
		return nil, ErrNoRoster
	}
	return out, nil
}

// ParseCSV extracts athletes from a CSV registration list. The first record
// is the header. Semicolon separated files are detected from the header.
func ParseCSV(r io.Reader) (Rosters, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read roster: %w", err)
	}
	rdr := csv.NewReader(strings.NewReader(string(data)))
	firstLine, _, _ := strings.Cut(string(data), "\n")
	if strings.Count(firstLine, ";") > strings.Count(firstLine, ",") {
		rdr.Comma = ';'
	}
	rdr.FieldsPerRecord = -1
	rdr.TrimLeadingSpace = true

	headers, err := rdr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoRoster
		}
		return nil, fmt.Errorf("unable to parse roster header: %w", err)
	}
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}
	l, ok := newLayout(headers)
	if !ok {
		return nil, fmt.Errorf("%w: header %v lacks name columns", ErrNoRoster,
			headers)
	}

	out := make(Rosters)
	for {
		rec, err := rdr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to parse roster: %w", err)
		}
		l.add(out, rec)
	}
	return out, nil
}

// Fetch downloads a registration list and parses it as CSV or HTML
// depending on the response content type.
func Fetch(ctx context.Context, client *http.Client, url string) (Rosters, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch roster (new): %w", err)
	}
	req.Header.Set("User-Agent", internal.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch roster (do): %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unable to fetch roster (http): %v", resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	if strings.Contains(ct, "csv") || strings.HasSuffix(strings.ToLower(url), ".csv") {
		return ParseCSV(resp.Body)
	}
	return ParseHTML(resp.Body)
}

// FetchAll downloads several registration lists concurrently and merges
// them. Lists are merged in the order of urls so the result does not depend
// on download order.
func FetchAll(ctx context.Context, client *http.Client, urls []string) (Rosters, error) {
	results := make([]Rosters, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	for idx, u := range urls {
		g.Go(func() error {
			r, err := Fetch(gctx, client, u)
			if err != nil {
				return fmt.Errorf("%v: %w", u, err)
			}
			results[idx] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(Rosters)
	for _, r := range results {
		out.Merge(r)
	}
	return out, nil
}

// Merge appends the athletes of other to r, group by group.
func (r Rosters) Merge(other Rosters) {
	for group, entries := range other {
		r[group] = append(r[group], entries...)
	}
}

// Assign moves the athletes without a group to def.
func (r Rosters) Assign(def string) {
	if entries, ok := r[""]; ok && def != "" {
		r[def] = append(r[def], entries...)
		delete(r, "")
	}
}
