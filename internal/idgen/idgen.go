// Package idgen produces order identifiers and sample barcodes.
//
// The order identifier is a display identifier: its 4-digit suffix is random
// and is not checked against existing orders, so same-day collisions are
// possible. That matches the documented behavior of the order numbering
// scheme; the store's opaque UUID is the identity that must be unique.
package idgen

import (
	"fmt"
	"math/rand"
	"time"
)

// Generator creates order ids and barcodes. Now and Intn are overridable so
// tests can pin the clock and the random source and assert exact output.
type Generator struct {
	Now  func() time.Time
	Intn func(n int) int
}

func New() *Generator {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Generator{
		Now:  time.Now,
		Intn: rng.Intn,
	}
}

// OrderID returns a human-readable order identifier, ORD-YYYYMMDD-NNNN.
func (g *Generator) OrderID() string {
	return fmt.Sprintf("ORD-%s-%04d", g.Now().Format("20060102"), g.Intn(10000))
}

// Barcode returns a sample-tracking token, BC<unix-millis><0-999 suffix>.
func (g *Generator) Barcode() string {
	return fmt.Sprintf("BC%d%d", g.Now().UnixMilli(), g.Intn(1000))
}
