// Package sections pre-fetches page content locally so a book can be
// published from sections instead of asking the service to resolve urls.
package sections

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/billmal071/epubpress/internal/press"
)

// Fetcher turns urls into sections, preserving order.
type Fetcher interface {
	Fetch(ctx context.Context, urls []string) (*Result, error)
}

// Result holds fetched sections plus the title of the first page, which is
// a reasonable default book title. Titles holds every page title by index.
type Result struct {
	Title    string
	Titles   []string
	Sections []press.Section
}

// strippedTags never make it into a section.
const strippedTags = "script, style, noscript, iframe"

// Clean removes active content from a page and returns its title.
func Clean(html string) (title, cleaned string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", err
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())
	doc.Find(strippedTags).Remove()

	cleaned, err = doc.Html()
	if err != nil {
		return "", "", err
	}
	return title, cleaned, nil
}

func buildResult(urls, pages []string) (*Result, error) {
	res := &Result{
		Titles:   make([]string, len(urls)),
		Sections: make([]press.Section, len(urls)),
	}
	for i, u := range urls {
		title, html, err := Clean(pages[i])
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", u, err)
		}
		if i == 0 {
			res.Title = title
		}
		res.Titles[i] = title
		res.Sections[i] = press.Section{URL: u, HTML: html}
	}
	return res, nil
}
