package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/lims-api/internal/handler"
	"github.com/jwalitptl/lims-api/internal/model"
	"github.com/jwalitptl/lims-api/internal/store"
)

type Handler struct {
	store *store.Store
}

func NewHandler(s *store.Store) *Handler {
	return &Handler{store: s}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.CreatePatient)
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
	}
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	patient, err := h.store.AddPatient(c.Request.Context(), model.Patient{
		Name:    req.Name,
		Age:     req.Age,
		Gender:  model.Gender(req.Gender),
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
	})
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(patient))
}

func (h *Handler) GetPatient(c *gin.Context) {
	id := c.Param("id")
	patient, ok := h.store.GetPatient(id)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("patient not found"))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(patient))
}

func (h *Handler) ListPatients(c *gin.Context) {
	var patients []model.Patient
	if q := c.Query("search"); q != "" {
		patients = h.store.SearchPatients(q)
	} else {
		patients = h.store.ListPatients()
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(patients))
}
