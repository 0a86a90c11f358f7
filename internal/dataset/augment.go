package dataset

import "github.com/sells-group/scope-cli/internal/model"

// curatedExamples are hand-written full-disclosure excerpts in the style of
// corporate sustainability reports. Scraped data rarely contains enough of
// them to train on.
var curatedExamples = []model.DatasetRow{
	{CompanyName: "Microsoft Corporation", Exchange: model.ExchangeNASDAQ, Year: 2023, Label: model.LabelFull,
		TextExcerpt: "During fiscal year 2023, we measured and reported our Scope 1, Scope 2, and Scope 3 emissions in accordance with the GHG Protocol. Our Scope 3 emissions totaled 13.9 million metric tons of CO2e, representing 98% of our total carbon footprint."},
	{CompanyName: "Apple Inc", Exchange: model.ExchangeNASDAQ, Year: 2023, Label: model.LabelFull,
		TextExcerpt: "We disclose all three scopes of greenhouse gas emissions. Scope 3 emissions, which include our value chain emissions, were 22.5 million metric tons CO2e in 2023, down 5% from the prior year."},
	{CompanyName: "Unilever PLC", Exchange: model.ExchangeLSE, Year: 2022, Label: model.LabelFull,
		TextExcerpt: "Our total Scope 1 and 2 emissions were 2.1 million tonnes CO2e, while Scope 3 emissions across our value chain were calculated at 64.3 million tonnes CO2e, covering all 15 categories of the GHG Protocol."},
	{CompanyName: "Salesforce Inc", Exchange: model.ExchangeNYSE, Year: 2023, Label: model.LabelFull,
		TextExcerpt: "We achieved net zero across Scope 1, 2, and 3 emissions. Our Scope 3 emissions were measured at 1.2 million metric tons CO2e, primarily from purchased goods and services, business travel, and employee commuting."},
	{CompanyName: "Google LLC", Exchange: model.ExchangeNASDAQ, Year: 2022, Label: model.LabelFull,
		TextExcerpt: "We report Scope 1, 2, and 3 greenhouse gas emissions annually. In 2022, our Scope 3 emissions totaled 10.2 million tCO2e, with the majority stemming from purchased goods and capital investments."},
	{CompanyName: "Amazon.com Inc", Exchange: model.ExchangeNASDAQ, Year: 2023, Label: model.LabelFull,
		TextExcerpt: "Our carbon footprint includes Scope 1, 2, and 3 emissions. Scope 3 emissions were disclosed at 51.17 million metric tons of CO2e, accounting for approximately 71% of our total carbon footprint."},
	{CompanyName: "BP PLC", Exchange: model.ExchangeLSE, Year: 2022, Label: model.LabelFull,
		TextExcerpt: "We measured and reported emissions across all three scopes. Our Scope 3 emissions, primarily from the use of sold products, totaled 360 million tonnes CO2e in 2022."},
	{CompanyName: "Walmart Inc", Exchange: model.ExchangeNYSE, Year: 2023, Label: model.LabelFull,
		TextExcerpt: "We disclose Scope 1, Scope 2, and Scope 3 emissions in our annual sustainability report. Scope 3 emissions were calculated at approximately 1.5 billion metric tons CO2e, with significant contributions from our supply chain."},
	{CompanyName: "Nike Inc", Exchange: model.ExchangeNYSE, Year: 2022, Label: model.LabelFull,
		TextExcerpt: "Our comprehensive GHG inventory covers Scopes 1, 2, and 3. We reported Scope 3 emissions of 8.4 million metric tons CO2e, primarily from manufacturing and logistics activities."},
	{CompanyName: "Nestle SA", Exchange: model.ExchangeNYSE, Year: 2023, Label: model.LabelFull,
		TextExcerpt: "We report all three scopes of greenhouse gas emissions. In 2023, Scope 3 emissions represented 95% of our total footprint at 99.1 million tonnes CO2e, mostly from raw materials and packaging."},
	{CompanyName: "HSBC Holdings", Exchange: model.ExchangeLSE, Year: 2022, Label: model.LabelFull,
		TextExcerpt: "Our Scope 1 and 2 emissions totaled 387,000 tCO2e. We also calculated and disclosed our Scope 3 financed emissions at 33.1 million tCO2e across our lending and investment portfolios."},
	{CompanyName: "Tesla Inc", Exchange: model.ExchangeNASDAQ, Year: 2023, Label: model.LabelFull,
		TextExcerpt: "We measure Scope 1, 2, and 3 emissions comprehensively. Our Scope 3 emissions were reported at 29.4 million metric tons CO2e, with vehicle use phase being the largest contributor."},
	{CompanyName: "Procter & Gamble", Exchange: model.ExchangeNYSE, Year: 2022, Label: model.LabelFull,
		TextExcerpt: "We report emissions across Scopes 1, 2, and 3. Our Scope 3 emissions totaled approximately 165 million metric tons CO2e, representing over 99% of our total carbon footprint."},
	{CompanyName: "Coca-Cola Company", Exchange: model.ExchangeNYSE, Year: 2023, Label: model.LabelFull,
		TextExcerpt: "Our greenhouse gas emissions reporting includes all three scopes. Scope 3 emissions were disclosed at 25.3 million metric tons of CO2e, primarily from ingredients and packaging."},
	{CompanyName: "IBM Corporation", Exchange: model.ExchangeNYSE, Year: 2022, Label: model.LabelFull,
		TextExcerpt: "We calculated and reported Scope 1, 2, and 3 greenhouse gas emissions. Our Scope 3 emissions totaled 23.4 million metric tons CO2e, mainly from purchased goods, services, and use of sold products."},
}

// CuratedExamples returns a copy of the built-in full-disclosure examples.
func CuratedExamples() []model.DatasetRow {
	out := make([]model.DatasetRow, len(curatedExamples))
	copy(out, curatedExamples)
	return out
}

// Augment returns rows followed by the curated full-disclosure examples
// whose excerpt is not already present. rows is not modified.
func Augment(rows []model.DatasetRow) []model.DatasetRow {
	have := make(map[string]bool, len(rows))
	for _, r := range rows {
		have[r.TextExcerpt] = true
	}

	out := make([]model.DatasetRow, 0, len(rows)+len(curatedExamples))
	out = append(out, rows...)
	for _, ex := range curatedExamples {
		if have[ex.TextExcerpt] {
			continue
		}
		out = append(out, ex)
	}
	return out
}
