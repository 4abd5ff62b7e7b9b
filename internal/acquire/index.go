package acquire

import (
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// pdfLinkRe matches hrefs pointing at a PDF, ignoring query and fragment.
var pdfLinkRe = regexp.MustCompile(`(?i)\.pdf(?:[?#].*)?$`)

// stampRe matches the MM_DD_YYYY publication stamp in report file names.
var stampRe = regexp.MustCompile(`(\d{2})_(\d{2})_(\d{4})`)

// ParseIndex returns the absolute URLs of every PDF link in an HTML page,
// in document order and without duplicates. Relative links are resolved
// against base.
func ParseIndex(r io.Reader, base *url.URL) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var (
		links []string
		seen  = make(map[string]bool)
		walk  func(*html.Node)
	)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				href := strings.TrimSpace(attr.Val)
				if !pdfLinkRe.MatchString(href) {
					continue
				}
				ref, err := url.Parse(href)
				if err != nil {
					continue
				}
				abs := base.ResolveReference(ref).String()
				if !seen[abs] {
					seen[abs] = true
					links = append(links, abs)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

// PublicationStamp parses the MM_DD_YYYY stamp in a report URL or file
// name.
func PublicationStamp(name string) (time.Time, error) {
	m := stampRe.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, fmt.Errorf("no date stamp in %q", name)
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, fmt.Errorf("invalid date stamp in %q", name)
	}
	return t, nil
}

// FilterSince keeps the links stamped on or after since. Links without a
// readable stamp are kept; the report header dates them later. A zero
// since keeps everything.
func FilterSince(links []string, since time.Time) []string {
	if since.IsZero() {
		return links
	}
	var out []string
	for _, l := range links {
		t, err := PublicationStamp(l)
		if err != nil || !t.Before(since) {
			out = append(out, l)
		}
	}
	return out
}
