// Package catalog serves the static test catalog: the list of available lab
// tests supplied by configuration. The core consumes it, never mutates it.
package catalog

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/jwalitptl/lims-api/internal/model"
)

// Catalog is an immutable lookup over the configured tests.
type Catalog struct {
	tests  []model.Test
	byID   map[string]model.Test
	byCode map[string]model.Test
}

// Load reads the catalog from a YAML file with a top-level `tests` list.
// An empty path falls back to the built-in default catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return New(DefaultTests()), nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	var tests []model.Test
	if err := v.UnmarshalKey("tests", &tests); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}
	if len(tests) == 0 {
		return nil, fmt.Errorf("catalog file %s contains no tests", path)
	}
	return New(tests), nil
}

func New(tests []model.Test) *Catalog {
	c := &Catalog{
		tests:  append([]model.Test(nil), tests...),
		byID:   make(map[string]model.Test, len(tests)),
		byCode: make(map[string]model.Test, len(tests)),
	}
	for _, t := range c.tests {
		c.byID[t.ID] = t
		c.byCode[t.Code] = t
	}
	return c
}

// List returns the catalog entries in configured order.
func (c *Catalog) List() []model.Test {
	return append([]model.Test(nil), c.tests...)
}

func (c *Catalog) GetByID(id string) (model.Test, bool) {
	t, ok := c.byID[id]
	return t, ok
}

func (c *Catalog) GetByCode(code string) (model.Test, bool) {
	t, ok := c.byCode[code]
	return t, ok
}

// DefaultTests is the catalog shipped with the service, used when no catalog
// file is configured.
func DefaultTests() []model.Test {
	return []model.Test{
		{ID: "1", Name: "Complete Blood Count (CBC)", Code: "CBC", Category: "Hematology", Price: 25, ReferenceRange: "Various"},
		{ID: "2", Name: "Thyroid Profile (T3, T4, TSH)", Code: "THYROID", Category: "Endocrinology", Price: 45, ReferenceRange: "Various"},
		{ID: "3", Name: "Liver Function Test (LFT)", Code: "LFT", Category: "Biochemistry", Price: 35, ReferenceRange: "Various"},
		{ID: "4", Name: "Kidney Function Test (KFT)", Code: "KFT", Category: "Biochemistry", Price: 35, ReferenceRange: "Various"},
		{ID: "5", Name: "Lipid Profile", Code: "LIPID", Category: "Biochemistry", Price: 30, ReferenceRange: "Various"},
		{ID: "6", Name: "Blood Sugar Fasting", Code: "BSF", Category: "Biochemistry", Price: 10, ReferenceRange: "70-100 mg/dL"},
		{ID: "7", Name: "Blood Sugar PP", Code: "BSPP", Category: "Biochemistry", Price: 10, ReferenceRange: "<140 mg/dL"},
		{ID: "8", Name: "HbA1c", Code: "HBA1C", Category: "Biochemistry", Price: 40, ReferenceRange: "<5.7%"},
		{ID: "9", Name: "Urine Routine", Code: "URINE", Category: "Pathology", Price: 15, ReferenceRange: "Various"},
		{ID: "10", Name: "Vitamin D", Code: "VITD", Category: "Biochemistry", Price: 50, ReferenceRange: "30-100 ng/mL"},
		{ID: "11", Name: "Vitamin B12", Code: "VITB12", Category: "Biochemistry", Price: 45, ReferenceRange: "200-900 pg/mL"},
		{ID: "12", Name: "Iron Studies", Code: "IRON", Category: "Biochemistry", Price: 40, ReferenceRange: "Various"},
	}
}
