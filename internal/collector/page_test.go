package collector

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/scope-cli/internal/model"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestDetectExchange(t *testing.T) {
	tests := []struct {
		text string
		want model.Exchange
	}{
		{"Ticker NYSE: KO", model.ExchangeNYSE},
		{"Listed on the New York Stock Exchange", model.ExchangeNYSE},
		{"NASDAQ: AAPL", model.ExchangeNASDAQ},
		{"traded on NASDAQ", model.ExchangeNASDAQ},
		{"LSE: BP", model.ExchangeLSE},
		{"London Stock Exchange plc", model.ExchangeLSE},
		{"ASX: BHP", model.ExchangeASX},
		{"an Australian company", model.ExchangeASX},
		{"TSX: RY", model.ExchangeTSX},
		{"headquartered in Toronto", model.ExchangeTSX},
		{"no exchange mentioned", model.ExchangeNYSE},
		// NYSE patterns win when several exchanges appear.
		{"NASDAQ: X and NYSE: Y", model.ExchangeNYSE},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectExchange(tt.text), tt.text)
	}
}

func TestIsAnnualReportLink(t *testing.T) {
	tests := []struct {
		text, href string
		want       bool
	}{
		{"2023 Annual Report", "/pdf/ar-2023.pdf", true},
		{"10-K", "/files/10K_2022.PDF", true},
		{"", "/pdf/ar-2023.pdf", false},
		{"2023 Annual Report", "/pdf/ar-2023.html", false},
		{"Q1 2023 Results", "/pdf/results.pdf", false},
		{"Quarterly Report", "/pdf/2023.pdf", false},
		{"Proxy Statement 2023", "/pdf/2023.pdf", false},
		{"Filing", "/sec/def_14a_2023.pdf", false},
		{"Filing", "/sec/DEF-14A-2023.pdf", false},
		{"Report", "/pdf/2023_q4.pdf", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsAnnualReportLink(tt.text, tt.href), "%q %q", tt.text, tt.href)
	}
}

func TestExtractYear(t *testing.T) {
	assert.Equal(t, 2023, ExtractYear("2023 annual report", "/pdf/ar-2021.pdf"))
	assert.Equal(t, 2021, ExtractYear("annual report", "/pdf/ar-2021.pdf"))
	assert.Equal(t, 2020, ExtractYear("fy2019-2020", ""))
	assert.Equal(t, 0, ExtractYear("2019 annual report", "/pdf/ar-2019.pdf"))
	assert.Equal(t, 0, ExtractYear("2026 annual report", "/pdf/ar-2030.pdf"))
}

func TestFindReports(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<a href="/pdf/ar-2023.pdf">2023 Annual Report</a>
		<a href="/pdf/ar-2023.pdf">Download 2023</a>
		<a href="https://cdn.example.com/ar_2022.PDF">Annual Report</a>
		<a href="/pdf/q2-2023.pdf">Second quarter 2023</a>
		<a href="/pdf/ar-2019.pdf">2019 Annual Report</a>
		<a href="/pdf/ar-2021.pdf?download=1">2021 Annual Report</a>
		<a href="/pdf/ar-2024.pdf"></a>
		<iframe src="/embed/report_2021.pdf"></iframe>
		<iframe src="/embed/viewer.html"></iframe>
	</body></html>`)
	page, _ := url.Parse("https://www.annualreports.com/Company/acme")

	reports := FindReports(doc, page, DefaultYears)
	assert.Equal(t, []model.ReportLink{
		{URL: "https://www.annualreports.com/pdf/ar-2023.pdf", Year: 2023},
		{URL: "https://cdn.example.com/ar_2022.PDF", Year: 2022},
		{URL: "https://www.annualreports.com/embed/report_2021.pdf", Year: 2021},
	}, reports)
}

func TestFindReports_YearRange(t *testing.T) {
	doc := mustDoc(t, `<a href="/a-2021.pdf">2021 Annual Report</a><a href="/a-2024.pdf">2024 Annual Report</a>`)
	page, _ := url.Parse("https://www.annualreports.com/Company/acme")

	reports := FindReports(doc, page, YearRange{Min: 2023, Max: 2025})
	require.Len(t, reports, 1)
	assert.Equal(t, 2024, reports[0].Year)
}

func TestSafeName(t *testing.T) {
	assert.Equal(t, "Apple Inc", SafeName("Apple Inc."))
	assert.Equal(t, "JPMorgan Chase  Co", SafeName("JPMorgan Chase & Co."))
	assert.Equal(t, "McDonalds Corporation", SafeName("McDonald's Corporation"))
	assert.Equal(t, "Coca-Cola Company", SafeName("Coca-Cola Company"))
	assert.Equal(t, "Nestlé SA", SafeName("Nestlé S.A."))
	assert.Len(t, []rune(SafeName(strings.Repeat("a", 80))), 50)
}

func TestYearRange_Contains(t *testing.T) {
	assert.True(t, DefaultYears.Contains(2020))
	assert.True(t, DefaultYears.Contains(2025))
	assert.False(t, DefaultYears.Contains(2019))
	assert.False(t, DefaultYears.Contains(2026))
}
