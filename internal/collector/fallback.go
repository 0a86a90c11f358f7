package collector

import (
	_ "embed"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/scope-cli/internal/model"
)

//go:embed companies.yaml
var embeddedCompanies []byte

// LoadFallback returns the fallback company list. An empty path selects the
// embedded list.
func LoadFallback(path string) ([]model.Company, error) {
	data := embeddedCompanies
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "collector: read fallback %s", path)
		}
	}
	return parseCompanies(data)
}

func parseCompanies(data []byte) ([]model.Company, error) {
	var companies []model.Company
	if err := yaml.Unmarshal(data, &companies); err != nil {
		return nil, eris.Wrap(err, "collector: parse fallback companies")
	}
	for i, c := range companies {
		if c.Name == "" || c.URL == "" {
			return nil, eris.Errorf("collector: fallback company %d needs name and url", i)
		}
	}
	return companies, nil
}
