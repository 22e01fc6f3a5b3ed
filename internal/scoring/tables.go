// Package scoring converts audit signals and contact info into the three
// bounded quality dimensions (need, value, reachability) and the qualified
// vs junk decision boundary.
package scoring

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Tables holds the lookup data behind the value dimension. The lists are
// configuration, not code: deployments tune them via a YAML file without a
// rebuild.
type Tables struct {
	// HighValueCategories are industry terms matched case-insensitively as
	// substrings of a candidate's category.
	HighValueCategories []string `yaml:"high_value_categories"`
	// RecognizedCMS are content-management hints that earn the CMS bonus.
	RecognizedCMS []string `yaml:"recognized_cms"`
}

// DefaultTables returns the compiled-in lookup tables used when no tables
// file is configured.
func DefaultTables() Tables {
	return Tables{
		HighValueCategories: []string{
			"dental", "dentist", "orthodont", "medical", "doctor", "clinic",
			"chiropract", "dermatolog", "veterinar", "physical therapy",
			"therapy", "wellness", "med spa", "massage", "salon", "spa",
			"law", "attorney", "legal", "accounting", "cpa",
		},
		RecognizedCMS: []string{
			"wordpress", "wix", "squarespace", "godaddy", "weebly",
			"joomla", "drupal", "shopify",
		},
	}
}

// LoadTables reads scoring tables from a YAML file. Missing lists fall back
// to the defaults so a partial file stays valid.
func LoadTables(path string) (Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, eris.Wrapf(err, "scoring: read tables %s", path)
	}

	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tables{}, eris.Wrapf(err, "scoring: parse tables %s", path)
	}

	defaults := DefaultTables()
	if len(t.HighValueCategories) == 0 {
		t.HighValueCategories = defaults.HighValueCategories
	}
	if len(t.RecognizedCMS) == 0 {
		t.RecognizedCMS = defaults.RecognizedCMS
	}
	return t, nil
}
