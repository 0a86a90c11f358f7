package collector

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/sells-group/scope-cli/internal/model"
)

// exchangePatterns are checked in order against lower-cased page text.
var exchangePatterns = []struct {
	exchange model.Exchange
	patterns []*regexp.Regexp
}{
	{model.ExchangeNYSE, []*regexp.Regexp{regexp.MustCompile(`nyse[:\s]`), regexp.MustCompile(`new york stock`)}},
	{model.ExchangeNASDAQ, []*regexp.Regexp{regexp.MustCompile(`nasdaq[:\s]`), regexp.MustCompile(`nasd`)}},
	{model.ExchangeLSE, []*regexp.Regexp{regexp.MustCompile(`lse[:\s]`), regexp.MustCompile(`london stock`)}},
	{model.ExchangeASX, []*regexp.Regexp{regexp.MustCompile(`asx[:\s]`), regexp.MustCompile(`australian`)}},
	{model.ExchangeTSX, []*regexp.Regexp{regexp.MustCompile(`tsx[:\s]`), regexp.MustCompile(`toronto`)}},
}

// skipKeywords mark quarterly and proxy filings.
var skipKeywords = []string{"q1", "q2", "q3", "q4", "quarter", "quarterly", "proxy", "def_14a", "def-14a"}

var (
	yearPattern = regexp.MustCompile(`202[0-5]`)
	pdfSuffix   = regexp.MustCompile(`(?i)\.pdf$`)
)

// YearRange bounds accepted report years, inclusive.
type YearRange struct {
	Min int
	Max int
}

// DefaultYears covers every year ExtractYear can return.
var DefaultYears = YearRange{Min: 2020, Max: 2025}

// Contains reports whether year lies within the range.
func (r YearRange) Contains(year int) bool {
	return year >= r.Min && year <= r.Max
}

// matchExchange returns the first exchange whose pattern occurs in text.
func matchExchange(text string) (model.Exchange, bool) {
	lower := strings.ToLower(text)
	for _, ep := range exchangePatterns {
		for _, re := range ep.patterns {
			if re.MatchString(lower) {
				return ep.exchange, true
			}
		}
	}
	return "", false
}

// DetectExchange names the exchange a company page mentions, defaulting to NYSE.
func DetectExchange(pageText string) model.Exchange {
	if ex, ok := matchExchange(pageText); ok {
		return ex
	}
	return model.DefaultExchange
}

// IsAnnualReportLink reports whether a link looks like an annual report PDF:
// a .pdf href, non-empty link text, and no quarterly or proxy keyword in
// either.
func IsAnnualReportLink(text, href string) bool {
	text = strings.ToLower(strings.TrimSpace(text))
	href = strings.ToLower(href)
	if !strings.Contains(href, ".pdf") || text == "" {
		return false
	}
	for _, kw := range skipKeywords {
		if strings.Contains(text, kw) || strings.Contains(href, kw) {
			return false
		}
	}
	return true
}

// ExtractYear returns the first year 2020-2025 found in text, else in href,
// else 0.
func ExtractYear(text, href string) int {
	for _, s := range []string{text, href} {
		if m := yearPattern.FindString(s); m != "" {
			year, _ := strconv.Atoi(m)
			return year
		}
	}
	return 0
}

// FindReports lists annual report PDFs linked or embedded on a company page.
// Links are resolved against pageURL and deduplicated; years outside years
// are dropped.
func FindReports(doc *goquery.Document, pageURL *url.URL, years YearRange) []model.ReportLink {
	var reports []model.ReportLink
	seen := make(map[string]bool)
	add := func(href string, year int) {
		if !years.Contains(year) {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := pageURL.ResolveReference(ref).String()
		if seen[abs] {
			return
		}
		seen[abs] = true
		reports = append(reports, model.ReportLink{URL: abs, Year: year})
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !pdfSuffix.MatchString(href) {
			return
		}
		text := strings.ToLower(strings.TrimSpace(s.Text()))
		if !IsAnnualReportLink(text, href) {
			return
		}
		add(href, ExtractYear(text, href))
	})

	doc.Find("iframe[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if src == "" || !pdfSuffix.MatchString(src) {
			return
		}
		add(src, ExtractYear("", src))
	})

	return reports
}

// Details fetches a company's listing page and returns its name, exchange
// and report links. A page without reports yields nil.
func (d *Directory) Details(ctx context.Context, company model.Company) (*model.CompanyDetails, error) {
	pageURL, err := url.Parse(company.URL)
	if err != nil {
		return nil, eris.Wrapf(err, "collector: parse company url %s", company.URL)
	}
	doc, err := d.fetcher.GetDocument(ctx, company.URL)
	if err != nil {
		return nil, eris.Wrapf(err, "collector: fetch company page %s", company.URL)
	}

	name := company.Name
	if h1 := linkText(doc.Find("h1").First()); h1 != "" {
		name = h1
	}

	exchange, ok := matchExchange(doc.Text())
	switch {
	case ok:
	case company.Exchange != "":
		exchange = company.Exchange
	default:
		exchange = model.DefaultExchange
	}

	reports := FindReports(doc, pageURL, d.years)
	if len(reports) == 0 {
		return nil, nil
	}

	return &model.CompanyDetails{
		Name:     name,
		Exchange: exchange,
		URL:      company.URL,
		Reports:  reports,
	}, nil
}
