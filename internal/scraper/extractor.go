package scraper

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	titleSelectors       = []string{"h2", "h3", "h4"}
	descriptionSelectors = []string{"p", "div.description"}
)

// Extractor turns raw listing elements into filtered postings.
type Extractor struct {
	keywords Keywords
	now      func() time.Time
}

func NewExtractor(keywords Keywords) *Extractor {
	return &Extractor{
		keywords: keywords,
		now:      time.Now,
	}
}

// Extract keeps only elements that mention a remote keyword (title or
// description) and a full-stack keyword (title only).
func (x *Extractor) Extract(siteURL string, elements []*html.Node) []JobPosting {
	scrapedAt := x.now()
	jobs := make([]JobPosting, 0, len(elements))
	for _, el := range elements {
		if el == nil {
			continue
		}
		sel := goquery.NewDocumentFromNode(el).Selection

		title := CleanText(firstMatch(sel, titleSelectors))
		description := CleanText(firstMatch(sel, descriptionSelectors))
		titleLower := lower(title)
		descLower := lower(description)

		isRemote := MatchesKeywords(titleLower, x.keywords.Remote) || MatchesKeywords(descLower, x.keywords.Remote)
		isFullStack := MatchesKeywords(titleLower, x.keywords.FullStack)
		if !isRemote || !isFullStack {
			continue
		}

		href, _ := sel.Find("a[href]").First().Attr("href")

		jobs = append(jobs, JobPosting{
			Title:        title,
			Link:         resolveLink(siteURL, strings.TrimSpace(href)),
			Technologies: MatchingKeywords(descLower, x.keywords.Technologies),
			IsRemote:     isRemote,
			ScrapedAt:    scrapedAt,
		})
	}
	return jobs
}

// firstMatch returns the first descendant matching the earliest selector in
// order, falling back to the element itself.
func firstMatch(sel *goquery.Selection, selectors []string) *html.Node {
	for _, s := range selectors {
		if found := sel.Find(s).First(); found.Length() > 0 {
			return found.Get(0)
		}
	}
	return sel.Get(0)
}

// resolveLink joins a relative href onto the site URL by plain concatenation,
// so "/jobs/1" on "https://example.com/careers" becomes
// "https://example.com/careers/jobs/1".
func resolveLink(siteURL, href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http") {
		return href
	}
	return strings.TrimRight(siteURL, "/") + "/" + strings.TrimLeft(href, "/")
}
