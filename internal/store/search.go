package store

import (
	"strings"

	"github.com/jwalitptl/lims-api/internal/model"
)

// GetOrdersByStatus returns copies of every order currently in status.
func (s *Store) GetOrdersByStatus(status model.OrderStatus) []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Order
	for i := range s.orders {
		if s.orders[i].Status == status {
			out = append(out, *s.orders[i].Clone())
		}
	}
	return out
}

// ListOrders returns copies of all orders in insertion order.
func (s *Store) ListOrders() []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Order, 0, len(s.orders))
	for i := range s.orders {
		out = append(out, *s.orders[i].Clone())
	}
	return out
}

// ListPatients returns copies of all patients in insertion order.
func (s *Store) ListPatients() []model.Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Patient, len(s.patients))
	copy(out, s.patients)
	return out
}

// SearchPatients matches the query case-insensitively against patient name,
// phone and email.
func (s *Store) SearchPatients(query string) []model.Patient {
	q := strings.ToLower(query)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Patient
	for i := range s.patients {
		p := s.patients[i]
		if containsFold(p.Name, q) || containsFold(p.Phone, q) || containsFold(p.Email, q) {
			out = append(out, p)
		}
	}
	return out
}

// SearchOrders matches the query case-insensitively against the order
// identifier, the barcode and the embedded patient name.
func (s *Store) SearchOrders(query string) []model.Order {
	q := strings.ToLower(query)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Order
	for i := range s.orders {
		o := &s.orders[i]
		if containsFold(o.OrderID, q) || containsFold(o.Barcode, q) || containsFold(o.Patient.Name, q) {
			out = append(out, *o.Clone())
		}
	}
	return out
}

func containsFold(s, loweredQuery string) bool {
	return strings.Contains(strings.ToLower(s), loweredQuery)
}
