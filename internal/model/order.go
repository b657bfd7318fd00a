package model

import (
	"time"

	apperrors "github.com/jwalitptl/lims-api/pkg/errors"
)

type OrderStatus string

const (
	StatusBooked         OrderStatus = "booked"
	StatusSampleReceived OrderStatus = "sample_received"
	StatusAccepted       OrderStatus = "accepted"
	StatusRejected       OrderStatus = "rejected"
	StatusWorkInProgress OrderStatus = "work_in_progress"
	StatusResultSaved    OrderStatus = "result_saved"
	StatusReportCreated  OrderStatus = "report_created"
	StatusVerified       OrderStatus = "verified"
	StatusOnHold         OrderStatus = "on_hold"
	StatusDelivered      OrderStatus = "delivered"
)

// AllStatuses lists every status an order may hold, in lifecycle order.
var AllStatuses = []OrderStatus{
	StatusBooked,
	StatusSampleReceived,
	StatusAccepted,
	StatusRejected,
	StatusWorkInProgress,
	StatusResultSaved,
	StatusReportCreated,
	StatusVerified,
	StatusOnHold,
	StatusDelivered,
}

// StatusLabels maps statuses to their display names.
var StatusLabels = map[OrderStatus]string{
	StatusBooked:         "Booked",
	StatusSampleReceived: "Sample Received",
	StatusAccepted:       "Accepted",
	StatusRejected:       "Rejected",
	StatusWorkInProgress: "Work In Progress",
	StatusResultSaved:    "Result Saved",
	StatusReportCreated:  "Report Created",
	StatusVerified:       "Verified",
	StatusOnHold:         "On Hold",
	StatusDelivered:      "Delivered",
}

func (s OrderStatus) Valid() bool {
	_, ok := StatusLabels[s]
	return ok
}

func (s OrderStatus) Label() string {
	return StatusLabels[s]
}

// TestResult is one measurement belonging to an order. It has no identity of
// its own and exists only while its parent order exists.
type TestResult struct {
	TestID         string `json:"test_id"`
	TestName       string `json:"test_name"`
	Value          string `json:"value"`
	Unit           string `json:"unit"`
	ReferenceRange string `json:"reference_range"`
	IsAbnormal     bool   `json:"is_abnormal"`
}

// Order is the central aggregate: a booked set of tests for one patient,
// tracked through the ten-state lifecycle. The patient is embedded by value,
// the test list is fixed at booking, OrderID and Barcode are assigned once at
// creation and never change.
type Order struct {
	ID               string       `json:"id"`
	OrderID          string       `json:"order_id"`
	Barcode          string       `json:"barcode"`
	Patient          Patient      `json:"patient"`
	Tests            []Test       `json:"tests"`
	Status           OrderStatus  `json:"status"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
	SampleReceivedAt *time.Time   `json:"sample_received_at,omitempty"`
	SampleReceivedBy string       `json:"sample_received_by,omitempty"`
	AcceptedAt       *time.Time   `json:"accepted_at,omitempty"`
	RejectedAt       *time.Time   `json:"rejected_at,omitempty"`
	RejectionReason  string       `json:"rejection_reason,omitempty"`
	Results          []TestResult `json:"results,omitempty"`
	ReportContent    string       `json:"report_content,omitempty"`
	VerifiedAt       *time.Time   `json:"verified_at,omitempty"`
	VerifiedBy       string       `json:"verified_by,omitempty"`
	DeliveredAt      *time.Time   `json:"delivered_at,omitempty"`
}

func (o *Order) Validate() error {
	if len(o.Tests) == 0 {
		return apperrors.Validation("order must contain at least one test")
	}
	if !o.Status.Valid() {
		return apperrors.Validationf("unknown order status %q", o.Status)
	}
	return nil
}

// Clone returns a deep copy so callers can never alias store-owned slices.
func (o *Order) Clone() *Order {
	clone := *o
	if o.Tests != nil {
		clone.Tests = append([]Test(nil), o.Tests...)
	}
	if o.Results != nil {
		clone.Results = append([]TestResult(nil), o.Results...)
	}
	clone.SampleReceivedAt = cloneTime(o.SampleReceivedAt)
	clone.AcceptedAt = cloneTime(o.AcceptedAt)
	clone.RejectedAt = cloneTime(o.RejectedAt)
	clone.VerifiedAt = cloneTime(o.VerifiedAt)
	clone.DeliveredAt = cloneTime(o.DeliveredAt)
	return &clone
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
