package model

import "strconv"

// Exchange is a stock exchange code such as NYSE or LSE.
type Exchange string

const (
	ExchangeNYSE   Exchange = "NYSE"
	ExchangeNASDAQ Exchange = "NASDAQ"
	ExchangeLSE    Exchange = "LSE"
	ExchangeASX    Exchange = "ASX"
	ExchangeTSX    Exchange = "TSX"
)

// DefaultExchange is assumed when a company page names no exchange.
const DefaultExchange = ExchangeNYSE

// Company is a company whose report-listing page will be visited.
type Company struct {
	Name     string   `json:"name" yaml:"name"`
	URL      string   `json:"url" yaml:"url"`
	Exchange Exchange `json:"exchange,omitempty" yaml:"exchange,omitempty"`
}

// ReportLink is a candidate annual report PDF found on a listing page.
type ReportLink struct {
	URL  string `json:"url"`
	Year int    `json:"year"`
}

// CompanyDetails holds what was learned from a company's listing page.
type CompanyDetails struct {
	Name     string       `json:"name"`
	Exchange Exchange     `json:"exchange"`
	URL      string       `json:"url"`
	Reports  []ReportLink `json:"reports"`
}

// Report is one downloaded annual report with its extracted text on disk.
// It is the row type of the metadata table written by the collector.
type Report struct {
	Company  string   `json:"company"`
	Exchange Exchange `json:"exchange"`
	Year     int      `json:"year"`
	URL      string   `json:"url,omitempty"`
	PDFPath  string   `json:"pdf_path"`
	TextPath string   `json:"text_path"`
}

// MetadataColumns is the header of the collector's metadata CSV.
var MetadataColumns = []string{"company", "exchange", "year", "pdf_path", "text_path"}

// Record renders the report as a metadata CSV row.
func (r Report) Record() []string {
	return []string{r.Company, string(r.Exchange), strconv.Itoa(r.Year), r.PDFPath, r.TextPath}
}
