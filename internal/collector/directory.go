package collector

import (
	"context"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/scope-cli/internal/model"
)

// companySelectors are tried in order on the directory page.
var companySelectors = []string{
	`a[href*="/Company/"]`,
	`.company-name a`,
	`.list-unstyled a`,
	`table tbody tr td:first-child a`,
}

const (
	// genericPassBelow triggers a scan of every link when selectors find fewer companies.
	genericPassBelow = 20
	minNameRunes     = 4
	minGenericHref   = 11
	unknownCompany   = "Unknown Company"
)

// DocumentFetcher fetches and parses HTML pages.
type DocumentFetcher interface {
	GetDocument(ctx context.Context, url string) (*goquery.Document, error)
}

// Sources counts where the company roster came from.
type Sources struct {
	Discovered int `json:"discovered"`
	Fallback   int `json:"fallback"`
}

// Directory resolves the list of companies to collect.
type Directory struct {
	fetcher  DocumentFetcher
	base     *url.URL
	fallback []model.Company
	years    YearRange
}

// NewDirectory creates a Directory rooted at baseURL accepting reports
// from years.
func NewDirectory(f DocumentFetcher, baseURL string, fallback []model.Company, years YearRange) (*Directory, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, eris.Errorf("collector: invalid base url %q", baseURL)
	}
	if years.Min == 0 && years.Max == 0 {
		years = DefaultYears
	}
	return &Directory{fetcher: f, base: base, fallback: fallback, years: years}, nil
}

// Companies returns up to target companies: those discovered on the directory
// page first, topped up from the fallback list. A directory page that
// cannot be fetched counts as zero discoveries.
func (d *Directory) Companies(ctx context.Context, target int) ([]model.Company, Sources) {
	listURL := d.base.ResolveReference(&url.URL{Path: "/Companies"}).String()
	seen := make(map[string]bool)

	var companies []model.Company
	doc, err := d.fetcher.GetDocument(ctx, listURL)
	if err != nil {
		zap.L().Warn("collector: directory page unavailable", zap.String("url", listURL), zap.Error(err))
	} else {
		companies = discover(doc, d.base, target, seen)
	}
	src := Sources{Discovered: len(companies)}
	zap.L().Info("collector: discovered companies", zap.Int("count", src.Discovered))

	if len(companies) < target {
		for _, c := range d.fallback {
			if len(companies) >= target {
				break
			}
			abs := d.resolve(c.URL)
			if abs == "" || seen[abs] {
				continue
			}
			seen[abs] = true
			c.URL = abs
			companies = append(companies, c)
			src.Fallback++
		}
		zap.L().Info("collector: topped up from fallback list",
			zap.Int("added", src.Fallback),
			zap.Int("available", len(d.fallback)),
		)
	}

	if len(companies) > target {
		companies = companies[:target]
	}
	return companies, src
}

func (d *Directory) resolve(href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return d.base.ResolveReference(ref).String()
}

// discover extracts company links from the directory page, recording their
// URLs in seen.
func discover(doc *goquery.Document, base *url.URL, target int, seen map[string]bool) []model.Company {
	var companies []model.Company
	add := func(name, href string) {
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref).String()
		if seen[abs] || utf8.RuneCountInString(name) < minNameRunes {
			return
		}
		seen[abs] = true
		companies = append(companies, model.Company{Name: name, URL: abs})
	}

	for _, sel := range companySelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			href, ok := s.Attr("href")
			if !ok || !strings.Contains(href, "/Company/") {
				return
			}
			add(linkText(s), href)
		})
		if len(companies) >= target {
			return companies
		}
	}

	if len(companies) < genericPassBelow {
		doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
			href, _ := s.Attr("href")
			if !strings.Contains(href, "/Company/") || len(href) < minGenericHref {
				return
			}
			name := linkText(s)
			if name == "" {
				name = unknownCompany
			}
			add(name, href)
		})
	}
	return companies
}

// linkText returns the element's text with whitespace collapsed.
func linkText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}
