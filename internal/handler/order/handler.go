package order

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/lims-api/internal/catalog"
	"github.com/jwalitptl/lims-api/internal/handler"
	"github.com/jwalitptl/lims-api/internal/model"
	"github.com/jwalitptl/lims-api/internal/notify"
	"github.com/jwalitptl/lims-api/internal/store"
)

type Handler struct {
	store    *store.Store
	catalog  *catalog.Catalog
	notifier notify.Notifier
}

func NewHandler(s *store.Store, c *catalog.Catalog, n notify.Notifier) *Handler {
	if n == nil {
		n = notify.NopNotifier{}
	}
	return &Handler{store: s, catalog: c, notifier: n}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	orders := r.Group("/orders")
	{
		orders.POST("", h.CreateOrder)
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.POST("/:id/status", h.UpdateOrderStatus)
		orders.PATCH("/:id", h.UpdateOrder)
	}
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req model.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	tests := make([]model.Test, 0, len(req.TestCodes))
	for _, code := range req.TestCodes {
		t, ok := h.catalog.GetByCode(code)
		if !ok {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("unknown test code "+code))
			return
		}
		tests = append(tests, t)
	}

	order, err := h.store.AddOrder(c.Request.Context(), req.PatientID, tests)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(order))
}

func (h *Handler) GetOrder(c *gin.Context) {
	id := c.Param("id")
	order, ok := h.store.GetOrder(id)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("order not found"))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(order))
}

func (h *Handler) ListOrders(c *gin.Context) {
	if status := c.Query("status"); status != "" {
		s := model.OrderStatus(status)
		if !s.Valid() {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("unknown status "+status))
			return
		}
		c.JSON(http.StatusOK, handler.NewSuccessResponse(h.store.GetOrdersByStatus(s)))
		return
	}
	if q := c.Query("search"); q != "" {
		c.JSON(http.StatusOK, handler.NewSuccessResponse(h.store.SearchOrders(q)))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(h.store.ListOrders()))
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id := c.Param("id")

	var req model.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	update := store.StatusUpdate{
		SampleReceivedBy: req.SampleReceivedBy,
		RejectionReason:  req.RejectionReason,
		ReportContent:    req.ReportContent,
		VerifiedBy:       req.VerifiedBy,
	}
	if len(req.Results) > 0 {
		update.Results = h.mapResults(id, req.Results)
	}

	target := model.OrderStatus(req.Status)
	order, err := h.store.UpdateOrderStatus(c.Request.Context(), id, target, update)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	if target == model.StatusDelivered {
		go h.sendDeliveryNotification(order)
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(order))
}

func (h *Handler) UpdateOrder(c *gin.Context) {
	id := c.Param("id")

	var req model.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	update := store.OrderUpdate{ReportContent: req.ReportContent}
	if len(req.Results) > 0 {
		update.Results = h.mapResults(id, req.Results)
	}

	order, err := h.store.UpdateOrder(c.Request.Context(), id, update)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(order))
}

// mapResults converts request results, filling test name and reference range
// from the order's test list when the caller left them out.
func (h *Handler) mapResults(orderID string, in []model.TestResultRequest) []model.TestResult {
	testsByID := make(map[string]model.Test)
	if order, ok := h.store.GetOrder(orderID); ok {
		for _, t := range order.Tests {
			testsByID[t.ID] = t
		}
	}

	out := make([]model.TestResult, 0, len(in))
	for _, r := range in {
		result := model.TestResult{
			TestID:         r.TestID,
			Value:          r.Value,
			Unit:           r.Unit,
			ReferenceRange: r.ReferenceRange,
			IsAbnormal:     r.IsAbnormal,
		}
		if t, ok := testsByID[r.TestID]; ok {
			result.TestName = t.Name
			if result.ReferenceRange == "" {
				result.ReferenceRange = t.ReferenceRange
			}
		}
		out = append(out, result)
	}
	return out
}

func (h *Handler) sendDeliveryNotification(order *model.Order) {
	if err := h.notifier.OrderDelivered(context.Background(), order); err != nil {
		log.Error().Err(err).Str("order_id", order.OrderID).Msg("delivery notification failed")
	}
}
