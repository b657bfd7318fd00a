package model

// Test is a catalog entry. The catalog is static reference data supplied by
// configuration; the core never mutates it.
type Test struct {
	ID             string  `json:"id" yaml:"id" mapstructure:"id"`
	Name           string  `json:"name" yaml:"name" mapstructure:"name"`
	Code           string  `json:"code" yaml:"code" mapstructure:"code"`
	Category       string  `json:"category" yaml:"category" mapstructure:"category"`
	Price          float64 `json:"price" yaml:"price" mapstructure:"price"`
	ReferenceRange string  `json:"reference_range,omitempty" yaml:"reference_range,omitempty" mapstructure:"reference_range"`
}
