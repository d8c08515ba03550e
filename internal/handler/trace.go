package handler

import (
	"net/http"

	"haccptrace/internal/lineage"
	"haccptrace/internal/service"

	"github.com/gin-gonic/gin"
)

type TraceHandler struct{ svc service.TraceService }

func NewTraceHandler(svc service.TraceService) *TraceHandler { return &TraceHandler{svc: svc} }

// TraceLot godoc
// @Summary Full genealogy of a lot: origin, destinations, parties and warnings
// @Tags trace
// @Produce json
// @Param kind path string true "Lot type" Enums(incoming, outgoing)
// @Param id path string true "Lot ID"
// @Success 200 {object} dto.TraceReport
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Failure 503 {object} apierror.APIError
// @Router /v1/trace/lots/{kind}/{id} [get]
func (h *TraceHandler) TraceLot(c *gin.Context) {
	kind, err := lineage.ParseKind(c.Param("kind"))
	if err != nil {
		respondError(c, err)
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	report, err := h.svc.TraceLot(c.Request.Context(), id, kind)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// TraceChain godoc
// @Summary Forward chain from a lot or package down to the sales
// @Tags trace
// @Produce json
// @Param id path string true "Lot or package ID"
// @Success 200 {object} dto.ChainReport
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Failure 503 {object} apierror.APIError
// @Router /v1/trace/chain/{id} [get]
func (h *TraceHandler) TraceChain(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	report, err := h.svc.TraceChain(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// TraceCustomer godoc
// @Summary Every sale of a customer traced back to its raw lots and suppliers
// @Tags trace
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} dto.CustomerTraceReport
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Failure 503 {object} apierror.APIError
// @Router /v1/trace/customers/{id} [get]
func (h *TraceHandler) TraceCustomer(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	report, err := h.svc.TraceCustomer(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// TraceBarcode godoc
// @Summary Forward chain of the lot or package a printed barcode points to
// @Tags trace
// @Produce json
// @Param code path string true "Barcode value"
// @Success 200 {object} dto.ChainReport
// @Failure 404 {object} apierror.APIError
// @Failure 503 {object} apierror.APIError
// @Router /v1/trace/barcodes/{code} [get]
func (h *TraceHandler) TraceBarcode(c *gin.Context) {
	report, err := h.svc.TraceBarcode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
