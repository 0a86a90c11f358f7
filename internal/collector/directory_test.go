package collector

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/scope-cli/internal/model"
)

type pageFetcher struct {
	pages map[string]string
}

func (p *pageFetcher) GetDocument(_ context.Context, u string) (*goquery.Document, error) {
	html, ok := p.pages[u]
	if !ok {
		return nil, errors.New("fetch: unexpected status 404")
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func companyLinks(n int) string {
	var sb strings.Builder
	for i := range n {
		fmt.Fprintf(&sb, `<a href="/Company/company-%d">Company Number %d</a>`, i, i)
	}
	return sb.String()
}

func TestLoadFallback_Embedded(t *testing.T) {
	companies, err := LoadFallback("")
	require.NoError(t, err)
	assert.Len(t, companies, 54)
	assert.Equal(t, "Apple Inc.", companies[0].Name)
	assert.Equal(t, "/Company/apple-inc", companies[0].URL)
	assert.Equal(t, model.ExchangeNASDAQ, companies[0].Exchange)
}

func TestLoadFallback_File(t *testing.T) {
	path := t.TempDir() + "/companies.yaml"
	require.NoError(t, os.WriteFile(path, []byte("- name: BHP Group\n  url: /Company/bhp-group\n  exchange: ASX\n"), 0o644))

	companies, err := LoadFallback(path)
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, model.ExchangeASX, companies[0].Exchange)
}

func TestLoadFallback_Invalid(t *testing.T) {
	path := t.TempDir() + "/companies.yaml"
	require.NoError(t, os.WriteFile(path, []byte("- name: Missing URL\n"), 0o644))
	_, err := LoadFallback(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs name and url")

	_, err = LoadFallback(t.TempDir() + "/absent.yaml")
	require.Error(t, err)
}

func TestNewDirectory_InvalidBase(t *testing.T) {
	_, err := NewDirectory(&pageFetcher{}, "not a url", nil, YearRange{})
	require.Error(t, err)
}

func TestDiscover_Selectors(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<a href="/Company/apple-inc">  Apple
			Inc </a>
		<a href="/Company/apple-inc">Apple duplicate</a>
		<a href="/Company/ibm">IBM</a>
		<div class="company-name"><a href="/Company/tesla-inc">Tesla Inc</a></div>
		<ul class="list-unstyled"><a href="/about">About Us</a></ul>
	</body></html>`)
	base, _ := url.Parse("https://www.annualreports.com")

	got := discover(doc, base, 50, map[string]bool{})
	assert.Equal(t, []model.Company{
		{Name: "Apple Inc", URL: "https://www.annualreports.com/Company/apple-inc"},
		{Name: "Tesla Inc", URL: "https://www.annualreports.com/Company/tesla-inc"},
	}, got)
}

func TestDiscover_GenericPassNamesUnknown(t *testing.T) {
	doc := mustDoc(t, `<a href="/Company/blank-name"><img src="logo.png"></a>`)
	base, _ := url.Parse("https://www.annualreports.com")

	got := discover(doc, base, 50, map[string]bool{})
	require.Len(t, got, 1)
	assert.Equal(t, unknownCompany, got[0].Name)
}

func TestCompanies_TopsUpFromFallback(t *testing.T) {
	f := &pageFetcher{pages: map[string]string{
		"https://www.annualreports.com/Companies": companyLinks(2),
	}}
	fallback := []model.Company{
		{Name: "Company Number 0", URL: "/Company/company-0"},
		{Name: "Apple Inc.", URL: "/Company/apple-inc", Exchange: model.ExchangeNASDAQ},
		{Name: "Chevron Corporation", URL: "/Company/chevron-corp"},
	}
	d, err := NewDirectory(f, "https://www.annualreports.com", fallback, YearRange{})
	require.NoError(t, err)

	companies, src := d.Companies(context.Background(), 3)
	require.Len(t, companies, 3)
	assert.Equal(t, Sources{Discovered: 2, Fallback: 1}, src)
	assert.Equal(t, "https://www.annualreports.com/Company/apple-inc", companies[2].URL)
	assert.Equal(t, model.ExchangeNASDAQ, companies[2].Exchange)
}

func TestCompanies_FetchFailureUsesFallback(t *testing.T) {
	fallback, err := LoadFallback("")
	require.NoError(t, err)
	d, err := NewDirectory(&pageFetcher{}, "https://www.annualreports.com", fallback, YearRange{})
	require.NoError(t, err)

	companies, src := d.Companies(context.Background(), 50)
	assert.Len(t, companies, 50)
	assert.Equal(t, 0, src.Discovered)
	assert.Equal(t, 50, src.Fallback)
}

func TestCompanies_TruncatesToTarget(t *testing.T) {
	f := &pageFetcher{pages: map[string]string{
		"https://www.annualreports.com/Companies": companyLinks(60),
	}}
	d, err := NewDirectory(f, "https://www.annualreports.com", nil, YearRange{})
	require.NoError(t, err)

	companies, src := d.Companies(context.Background(), 50)
	assert.Len(t, companies, 50)
	assert.Equal(t, 60, src.Discovered)
}

func TestDetails(t *testing.T) {
	f := &pageFetcher{pages: map[string]string{
		"https://www.annualreports.com/Company/acme": `<h1> Acme Corporation </h1>
			<p>Ticker: NASDAQ: ACME</p>
			<a href="/pdf/acme-2023.pdf">2023 Annual Report</a>`,
		"https://www.annualreports.com/Company/plain": `<p>Nothing about listing</p>
			<a href="/pdf/plain-2022.pdf">2022 Annual Report</a>`,
		"https://www.annualreports.com/Company/empty": `<h1>Empty Co</h1>`,
	}}
	d, err := NewDirectory(f, "https://www.annualreports.com", nil, YearRange{})
	require.NoError(t, err)
	ctx := context.Background()

	got, err := d.Details(ctx, model.Company{Name: "Acme", URL: "https://www.annualreports.com/Company/acme"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Acme Corporation", got.Name)
	assert.Equal(t, model.ExchangeNASDAQ, got.Exchange)
	assert.Equal(t, []model.ReportLink{{URL: "https://www.annualreports.com/pdf/acme-2023.pdf", Year: 2023}}, got.Reports)

	// Listing name and fallback exchange are used when the page has neither.
	got, err = d.Details(ctx, model.Company{Name: "Plain Holdings", URL: "https://www.annualreports.com/Company/plain", Exchange: model.ExchangeLSE})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Plain Holdings", got.Name)
	assert.Equal(t, model.ExchangeLSE, got.Exchange)

	got, err = d.Details(ctx, model.Company{Name: "Empty Co", URL: "https://www.annualreports.com/Company/empty"})
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = d.Details(ctx, model.Company{Name: "Gone", URL: "https://www.annualreports.com/Company/gone"})
	require.Error(t, err)
}
