package store

import (
	"context"
	"fmt"

	"github.com/jwalitptl/lims-api/internal/model"
	apperrors "github.com/jwalitptl/lims-api/pkg/errors"
)

// transitions is the authoritative map of allowed status changes. rejected
// and delivered are terminal. report_created and on_hold are mutually
// reachable so a held report can go back for rework before verification.
var transitions = map[model.OrderStatus][]model.OrderStatus{
	model.StatusBooked:         {model.StatusSampleReceived},
	model.StatusSampleReceived: {model.StatusAccepted, model.StatusRejected},
	model.StatusAccepted:       {model.StatusWorkInProgress},
	model.StatusWorkInProgress: {model.StatusResultSaved},
	model.StatusResultSaved:    {model.StatusReportCreated},
	model.StatusReportCreated:  {model.StatusOnHold, model.StatusVerified},
	model.StatusOnHold:         {model.StatusReportCreated, model.StatusVerified},
	model.StatusVerified:       {model.StatusDelivered},
	model.StatusRejected:       {},
	model.StatusDelivered:      {},
}

func transitionAllowed(from, to model.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StatusUpdate carries the payload a transition may require. Fields that the
// target status does not use are ignored.
type StatusUpdate struct {
	SampleReceivedBy string
	RejectionReason  string
	Results          []model.TestResult
	ReportContent    string
	VerifiedBy       string
}

// UpdateOrderStatus moves an order to target if the transition table allows
// it and the required payload is present. On any error the order is left
// exactly as it was.
func (s *Store) UpdateOrderStatus(ctx context.Context, id string, target model.OrderStatus, update StatusUpdate) (order *model.Order, err error) {
	defer func() { s.metrics.ObserveMutation("update_order_status", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.orderIndexLocked(id)
	if idx < 0 {
		return nil, apperrors.NotFound("order", id)
	}

	current := s.orders[idx].Status
	if !target.Valid() {
		return nil, apperrors.InvalidTransition(string(current), string(target), "unknown target status")
	}
	if !transitionAllowed(current, target) {
		return nil, apperrors.InvalidTransition(string(current), string(target), "")
	}

	// Stage the change on a copy; commit only after the guard passed.
	staged := s.orders[idx].Clone()
	if err = s.applyTransition(staged, target, update); err != nil {
		return nil, err
	}
	staged.Status = target

	s.orders[idx] = *staged
	s.refreshStatusCounts()
	s.markDirty()
	return staged.Clone(), nil
}

func (s *Store) applyTransition(o *model.Order, target model.OrderStatus, update StatusUpdate) error {
	now := s.now().UTC()
	from := string(o.Status)
	o.UpdatedAt = now

	switch target {
	case model.StatusSampleReceived:
		if update.SampleReceivedBy == "" {
			return apperrors.InvalidTransition(from, string(target), "receiver name is required")
		}
		o.SampleReceivedAt = &now
		o.SampleReceivedBy = update.SampleReceivedBy

	case model.StatusAccepted:
		o.AcceptedAt = &now

	case model.StatusRejected:
		if update.RejectionReason == "" {
			return apperrors.InvalidTransition(from, string(target), "rejection reason is required")
		}
		o.RejectedAt = &now
		o.RejectionReason = update.RejectionReason

	case model.StatusWorkInProgress:
		// no payload

	case model.StatusResultSaved:
		if err := validateResults(o.Tests, update.Results); err != nil {
			return apperrors.InvalidTransition(from, string(target), err.Error())
		}
		o.Results = append([]model.TestResult(nil), update.Results...)

	case model.StatusReportCreated:
		// Returning from on_hold keeps the report already attached; the
		// initial transition out of result_saved must bring the content.
		if o.Status == model.StatusResultSaved {
			if update.ReportContent == "" {
				return apperrors.InvalidTransition(from, string(target), "report content is required")
			}
			o.ReportContent = update.ReportContent
		}

	case model.StatusOnHold:
		// no payload

	case model.StatusVerified:
		if update.VerifiedBy == "" {
			return apperrors.InvalidTransition(from, string(target), "verifier name is required")
		}
		o.VerifiedAt = &now
		o.VerifiedBy = update.VerifiedBy

	case model.StatusDelivered:
		o.DeliveredAt = &now
	}
	return nil
}

// validateResults checks that results cover every ordered test exactly once
// and that no value is empty.
func validateResults(tests []model.Test, results []model.TestResult) error {
	if len(results) == 0 {
		return fmt.Errorf("results are required")
	}
	if len(results) != len(tests) {
		return fmt.Errorf("expected %d results, got %d", len(tests), len(results))
	}
	seen := make(map[string]bool, len(results))
	for _, r := range results {
		if r.Value == "" {
			return fmt.Errorf("result for test %s has an empty value", r.TestID)
		}
		seen[r.TestID] = true
	}
	for _, t := range tests {
		if !seen[t.ID] {
			return fmt.Errorf("missing result for test %s", t.ID)
		}
	}
	return nil
}
