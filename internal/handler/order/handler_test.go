package order_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/lims-api/internal/catalog"
	"github.com/jwalitptl/lims-api/internal/handler"
	"github.com/jwalitptl/lims-api/internal/handler/order"
	"github.com/jwalitptl/lims-api/internal/model"
	"github.com/jwalitptl/lims-api/internal/snapshot"
	"github.com/jwalitptl/lims-api/internal/store"
)

type recordingNotifier struct {
	mu     sync.Mutex
	orders []string
	err    error
}

func (n *recordingNotifier) OrderDelivered(ctx context.Context, o *model.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, o.OrderID)
	return n.err
}

func (n *recordingNotifier) delivered() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.orders...)
}

type fixture struct {
	router   *gin.Engine
	store    *store.Store
	notifier *recordingNotifier
}

func setup(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	handler.RegisterValidations()

	s := store.New(context.Background(), snapshot.NewMemory())
	t.Cleanup(func() { s.Close() })

	cat, err := catalog.Load("")
	require.NoError(t, err)

	n := &recordingNotifier{}
	r := gin.New()
	order.NewHandler(s, cat, n).RegisterRoutes(r.Group("/api/v1"))
	return &fixture{router: r, store: s, notifier: n}
}

func (f *fixture) doJSON(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeOrder(t *testing.T, w *httptest.ResponseRecorder) model.Order {
	t.Helper()
	var resp struct {
		Status string      `json:"status"`
		Data   model.Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "success", resp.Status)
	return resp.Data
}

func (f *fixture) addPatient(t *testing.T) *model.Patient {
	t.Helper()
	p, err := f.store.AddPatient(context.Background(), model.Patient{
		Name: "Jane Doe", Age: 34, Gender: model.GenderFemale, Phone: "555-0100",
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) bookOrder(t *testing.T) model.Order {
	t.Helper()
	p := f.addPatient(t)
	w := f.doJSON(t, http.MethodPost, "/api/v1/orders", gin.H{
		"patient_id": p.ID,
		"test_codes": []string{"CBC"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	return decodeOrder(t, w)
}

func TestCreateOrder(t *testing.T) {
	f := setup(t)
	created := f.bookOrder(t)

	assert.Equal(t, model.StatusBooked, created.Status)
	assert.NotEmpty(t, created.OrderID)
	assert.NotEmpty(t, created.Barcode)
	require.Len(t, created.Tests, 1)
	assert.Equal(t, "CBC", created.Tests[0].Code)
}

func TestCreateOrderUnknownTestCode(t *testing.T) {
	f := setup(t)
	p := f.addPatient(t)

	w := f.doJSON(t, http.MethodPost, "/api/v1/orders", gin.H{
		"patient_id": p.ID,
		"test_codes": []string{"NOPE"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown test code")
}

func TestCreateOrderUnknownPatient(t *testing.T) {
	f := setup(t)

	w := f.doJSON(t, http.MethodPost, "/api/v1/orders", gin.H{
		"patient_id": "nonexistent",
		"test_codes": []string{"CBC"},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateOrderBindingErrors(t *testing.T) {
	f := setup(t)
	p := f.addPatient(t)

	cases := []struct {
		name string
		body gin.H
	}{
		{"missing patient", gin.H{"test_codes": []string{"CBC"}}},
		{"missing tests", gin.H{"patient_id": p.ID}},
		{"empty tests", gin.H{"patient_id": p.ID, "test_codes": []string{}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := f.doJSON(t, http.MethodPost, "/api/v1/orders", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestUpdateOrderStatusHappyPath(t *testing.T) {
	f := setup(t)
	created := f.bookOrder(t)

	w := f.doJSON(t, http.MethodPost, "/api/v1/orders/"+created.ID+"/status", gin.H{
		"status":             "sample_received",
		"sample_received_by": "tech",
	})
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeOrder(t, w)
	assert.Equal(t, model.StatusSampleReceived, got.Status)
	assert.Equal(t, "tech", got.SampleReceivedBy)
}

func TestUpdateOrderStatusRejectsBadTransitions(t *testing.T) {
	f := setup(t)
	created := f.bookOrder(t)

	// Unknown status fails request binding.
	w := f.doJSON(t, http.MethodPost, "/api/v1/orders/"+created.ID+"/status", gin.H{
		"status": "archived",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Skipping ahead is a conflict.
	w = f.doJSON(t, http.MethodPost, "/api/v1/orders/"+created.ID+"/status", gin.H{
		"status":      "verified",
		"verified_by": "Dr. Lee",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Missing required payload is a conflict too.
	w = f.doJSON(t, http.MethodPost, "/api/v1/orders/"+created.ID+"/status", gin.H{
		"status": "sample_received",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.doJSON(t, http.MethodPost, "/api/v1/orders/nonexistent/status", gin.H{
		"status":             "sample_received",
		"sample_received_by": "tech",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateOrderStatusFillsResultMetadata(t *testing.T) {
	f := setup(t)
	created := f.bookOrder(t)
	f.walk(t, created.ID, "sample_received", gin.H{"sample_received_by": "tech"})
	f.walk(t, created.ID, "accepted", gin.H{})
	f.walk(t, created.ID, "work_in_progress", gin.H{})

	w := f.doJSON(t, http.MethodPost, "/api/v1/orders/"+created.ID+"/status", gin.H{
		"status": "result_saved",
		"results": []gin.H{{
			"test_id": created.Tests[0].ID,
			"value":   "5.0",
			"unit":    "g/dL",
		}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeOrder(t, w)
	require.Len(t, got.Results, 1)
	assert.Equal(t, created.Tests[0].Name, got.Results[0].TestName)
	assert.Equal(t, created.Tests[0].ReferenceRange, got.Results[0].ReferenceRange)
}

func (f *fixture) walk(t *testing.T, id, status string, extra gin.H) model.Order {
	t.Helper()
	body := gin.H{"status": status}
	for k, v := range extra {
		body[k] = v
	}
	w := f.doJSON(t, http.MethodPost, "/api/v1/orders/"+id+"/status", body)
	require.Equal(t, http.StatusOK, w.Code, "transition to %s: %s", status, w.Body.String())
	return decodeOrder(t, w)
}

func TestDeliveryTriggersNotification(t *testing.T) {
	f := setup(t)
	created := f.bookOrder(t)

	f.walk(t, created.ID, "sample_received", gin.H{"sample_received_by": "tech"})
	f.walk(t, created.ID, "accepted", gin.H{})
	f.walk(t, created.ID, "work_in_progress", gin.H{})
	f.walk(t, created.ID, "result_saved", gin.H{"results": []gin.H{{
		"test_id": created.Tests[0].ID, "value": "5.0", "unit": "g/dL",
	}}})
	f.walk(t, created.ID, "report_created", gin.H{"report_content": "<p>report</p>"})
	f.walk(t, created.ID, "verified", gin.H{"verified_by": "Dr. Lee"})
	got := f.walk(t, created.ID, "delivered", gin.H{})
	assert.Equal(t, model.StatusDelivered, got.Status)

	require.Eventually(t, func() bool {
		return len(f.notifier.delivered()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, created.OrderID, f.notifier.delivered()[0])
}

func TestNotificationFailureDoesNotAffectResponse(t *testing.T) {
	f := setup(t)
	f.notifier.err = errors.New("smtp unreachable")
	created := f.bookOrder(t)

	f.walk(t, created.ID, "sample_received", gin.H{"sample_received_by": "tech"})
	f.walk(t, created.ID, "accepted", gin.H{})
	f.walk(t, created.ID, "work_in_progress", gin.H{})
	f.walk(t, created.ID, "result_saved", gin.H{"results": []gin.H{{
		"test_id": created.Tests[0].ID, "value": "5.0",
	}}})
	f.walk(t, created.ID, "report_created", gin.H{"report_content": "<p>report</p>"})
	f.walk(t, created.ID, "verified", gin.H{"verified_by": "Dr. Lee"})
	got := f.walk(t, created.ID, "delivered", gin.H{})
	assert.Equal(t, model.StatusDelivered, got.Status)
}

func TestListOrdersByStatusAndSearch(t *testing.T) {
	f := setup(t)
	created := f.bookOrder(t)

	w := f.doJSON(t, http.MethodGet, "/api/v1/orders?status=booked", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data []model.Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, created.ID, resp.Data[0].ID)

	w = f.doJSON(t, http.MethodGet, "/api/v1/orders?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.doJSON(t, http.MethodGet, "/api/v1/orders?search="+created.OrderID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data)

	w = f.doJSON(t, http.MethodGet, "/api/v1/orders/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = f.doJSON(t, http.MethodGet, "/api/v1/orders/nonexistent", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPatchOrder(t *testing.T) {
	f := setup(t)
	created := f.bookOrder(t)

	w := f.doJSON(t, http.MethodPatch, "/api/v1/orders/"+created.ID, gin.H{
		"report_content": "<h1>draft</h1>",
	})
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeOrder(t, w)
	assert.Equal(t, "<h1>draft</h1>", got.ReportContent)
	assert.Equal(t, model.StatusBooked, got.Status)

	w = f.doJSON(t, http.MethodPatch, "/api/v1/orders/nonexistent", gin.H{})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
