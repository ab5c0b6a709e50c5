package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/link-catalog-backend/internal/pkg/request"
	"github.com/nekogravitycat/link-catalog-backend/internal/pkg/response"
	"github.com/nekogravitycat/link-catalog-backend/internal/resource"
)

const (
	paginationWindowHeader = "X-Pagination-Window"
	paginationWindowExact  = "exact"
)

type Handler struct {
	service resource.Service
}

func NewHandler(service resource.Service) *Handler {
	return &Handler{service: service}
}

// filterSpec collects filters from the query string. Both the bracketed form
// (filters[email]=x) and bare keys (email=x) are accepted; bracketed wins.
func filterSpec(c *gin.Context) resource.FilterSpec {
	spec := resource.FilterSpec{}
	for key, values := range c.Request.URL.Query() {
		if strings.HasPrefix(key, "filters[") || len(values) == 0 {
			continue
		}
		spec[key] = values[0]
	}
	for key, value := range c.QueryMap("filters") {
		spec[key] = value
	}
	return spec
}

func (h *Handler) List(c *gin.Context) {
	result, err := h.service.List(c.Request.Context(), filterSpec(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ListingResponse, len(result.Data))
	for i, l := range result.Data {
		items[i] = NewResponse(l)
	}

	c.Header(paginationWindowHeader, paginationWindowExact)
	c.JSON(http.StatusOK, response.NewPageResponse(items, response.PageMeta{
		Total:         result.Total,
		TotalFiltered: result.TotalFiltered,
		Limit:         result.Limit,
		Page:          result.Page,
		SortBy:        result.SortBy,
		Order:         result.Order,
	}))
}

func (h *Handler) Export(c *gin.Context) {
	rows, err := h.service.Export(c.Request.Context(), filterSpec(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	buf, err := writeWorkbook(rows)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, BatchResponse{
			Status:  resource.StatusError,
			Code:    http.StatusBadRequest,
			Message: "invalid request body",
		})
		return
	}

	result, err := h.service.CreateBatch(c.Request.Context(), body.Data)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "store resource batch failed", "error", err, "size", len(body.Data))
		c.JSON(http.StatusInternalServerError, BatchResponse{
			Status:  resource.StatusError,
			Code:    http.StatusInternalServerError,
			Message: "internal server error",
		})
		return
	}

	c.JSON(result.Code, NewBatchResponse(result))
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	l, err := h.service.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewResponse(l))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var body UpdateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	req, err := body.ToDomain()
	if err != nil {
		response.BadRequest(c, "invalid metrics_update_date", err)
		return
	}

	l, err := h.service.Update(c.Request.Context(), uri.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewResponse(l))
}

func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var q request.DeleteRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), uri.ID, q.Force); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, CategoriesResponse{Items: resource.Categories()})
}
