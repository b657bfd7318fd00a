// Package store owns all patient and order state and enforces the order
// lifecycle. It is the only writer of that state; presentation code mutates
// through it and reads through its query methods.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/lims-api/internal/idgen"
	"github.com/jwalitptl/lims-api/internal/model"
	"github.com/jwalitptl/lims-api/internal/snapshot"
	apperrors "github.com/jwalitptl/lims-api/pkg/errors"
	"github.com/jwalitptl/lims-api/pkg/logger"
	"github.com/jwalitptl/lims-api/pkg/metrics"
)

// Store holds every patient and order in memory and snapshots the full state
// through its adapter after each mutation. Collections are append-only:
// updates mutate an existing entry in place, nothing is ever deleted.
//
// The logical model is one actor issuing one mutation at a time, but the HTTP
// surface serves requests concurrently, so access is mutex-guarded.
type Store struct {
	mu       sync.RWMutex
	patients []model.Patient
	orders   []model.Order

	adapter snapshot.Adapter
	idgen   *idgen.Generator
	log     *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	dirty chan struct{}
	stop  chan struct{}
	done  chan struct{}
	once  sync.Once
}

type Option func(*Store)

func WithIDGenerator(g *idgen.Generator) Option {
	return func(s *Store) { s.idgen = g }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l *logger.Logger) Option {
	return func(s *Store) { s.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// New restores state from the adapter and starts the snapshot writer. A
// missing or corrupt snapshot degrades to an empty store with a warning;
// startup never fails on load errors.
func New(ctx context.Context, adapter snapshot.Adapter, opts ...Option) *Store {
	s := &Store{
		adapter: adapter,
		idgen:   idgen.New(),
		log:     logger.NewLogger(nil),
		now:     time.Now,
		dirty:   make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	state, err := adapter.Load(ctx)
	if err != nil {
		s.log.Warn("failed to restore snapshot, starting empty", "error", err.Error())
		state = snapshot.Empty()
	}
	s.restore(state)

	go s.persistLoop()
	return s
}

func (s *Store) restore(state *snapshot.State) {
	s.patients = append(s.patients, state.Patients...)
	for _, o := range state.Orders {
		if !o.Status.Valid() {
			s.log.Warn("dropping order with unknown status from snapshot",
				"order_id", o.OrderID, "status", string(o.Status))
			continue
		}
		s.orders = append(s.orders, *o.Clone())
	}
	s.refreshStatusCounts()
}

// Close flushes a final snapshot and releases the adapter.
func (s *Store) Close() error {
	s.once.Do(func() { close(s.stop) })
	<-s.done
	s.saveSnapshot()
	return s.adapter.Close()
}

// AddPatient validates, assigns identity and timestamp, appends and persists.
// The stored entity is returned.
func (s *Store) AddPatient(ctx context.Context, p model.Patient) (patient *model.Patient, err error) {
	defer func() { s.metrics.ObserveMutation("add_patient", err) }()

	if err = p.Validate(); err != nil {
		return nil, err
	}
	p.ID = uuid.New().String()
	p.CreatedAt = s.now().UTC()

	s.mu.Lock()
	s.patients = append(s.patients, p)
	s.mu.Unlock()

	s.markDirty()
	return &p, nil
}

// AddOrder books a new order for an existing patient. The patient is embedded
// by value so the order keeps the details as they were at booking time. The
// order starts in booked with freshly generated identifiers.
func (s *Store) AddOrder(ctx context.Context, patientID string, tests []model.Test) (order *model.Order, err error) {
	defer func() { s.metrics.ObserveMutation("add_order", err) }()

	patient, ok := s.GetPatient(patientID)
	if !ok {
		return nil, apperrors.NotFound("patient", patientID)
	}

	now := s.now().UTC()
	o := model.Order{
		ID:        uuid.New().String(),
		OrderID:   s.idgen.OrderID(),
		Barcode:   s.idgen.Barcode(),
		Patient:   *patient,
		Tests:     append([]model.Test(nil), tests...),
		Status:    model.StatusBooked,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err = o.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.orders = append(s.orders, *o.Clone())
	s.refreshStatusCounts()
	s.mu.Unlock()

	s.markDirty()
	return &o, nil
}

// UpdateOrder merges non-status fields into an existing order, for attaching
// results or report content ahead of the corresponding transition.
func (s *Store) UpdateOrder(ctx context.Context, id string, update OrderUpdate) (order *model.Order, err error) {
	defer func() { s.metrics.ObserveMutation("update_order", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.orderIndexLocked(id)
	if idx < 0 {
		return nil, apperrors.NotFound("order", id)
	}

	o := &s.orders[idx]
	if update.Results != nil {
		o.Results = append([]model.TestResult(nil), update.Results...)
	}
	if update.ReportContent != nil {
		o.ReportContent = *update.ReportContent
	}
	o.UpdatedAt = s.now().UTC()

	s.markDirty()
	return o.Clone(), nil
}

// OrderUpdate is a partial update of non-status order fields. Nil fields are
// left untouched.
type OrderUpdate struct {
	Results       []model.TestResult
	ReportContent *string
}

// GetPatient returns a copy of the patient, or ok=false when absent.
func (s *Store) GetPatient(id string) (*model.Patient, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.patients {
		if s.patients[i].ID == id {
			p := s.patients[i]
			return &p, true
		}
	}
	return nil, false
}

// GetOrder returns a copy of the order, or ok=false when absent.
func (s *Store) GetOrder(id string) (*model.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.orderIndexLocked(id); idx >= 0 {
		return s.orders[idx].Clone(), true
	}
	return nil, false
}

func (s *Store) orderIndexLocked(id string) int {
	for i := range s.orders {
		if s.orders[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) markDirty() {
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

func (s *Store) persistLoop() {
	for {
		select {
		case <-s.dirty:
			s.saveSnapshot()
		case <-s.stop:
			close(s.done)
			return
		}
	}
}

// saveSnapshot writes the current state. A failure is surfaced through the
// log and metrics but never propagated to the caller of the mutation: the
// in-memory change already succeeded, and the next mutation retries the write.
func (s *Store) saveSnapshot() {
	state := s.snapshotState()
	start := time.Now()
	err := s.adapter.Save(context.Background(), state)
	s.metrics.ObserveSnapshotSave(time.Since(start), err)
	if err != nil {
		s.log.Error(err, "snapshot save failed")
	}
}

func (s *Store) snapshotState() *snapshot.State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := &snapshot.State{
		Version:  snapshot.Version,
		SavedAt:  s.now().UTC(),
		Patients: make([]model.Patient, len(s.patients)),
		Orders:   make([]model.Order, 0, len(s.orders)),
	}
	copy(state.Patients, s.patients)
	for i := range s.orders {
		state.Orders = append(state.Orders, *s.orders[i].Clone())
	}
	return state
}

func (s *Store) refreshStatusCounts() {
	if s.metrics == nil {
		return
	}
	counts := make(map[model.OrderStatus]int, len(model.AllStatuses))
	for i := range s.orders {
		counts[s.orders[i].Status]++
	}
	for _, status := range model.AllStatuses {
		s.metrics.SetOrderStatusCount(string(status), counts[status])
	}
}
