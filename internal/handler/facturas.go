package handler

import (
	"net/http"

	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/apierror"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FacturasHandler struct{ svc service.FacturaService }

func NewFacturasHandler(svc service.FacturaService) *FacturasHandler {
	return &FacturasHandler{svc: svc}
}

// PorVenta godoc
// @Summary      Factura de una venta
// @Description  Retorna el registro inmutable de la factura emitida, con código CAI y fecha límite.
// @Tags         facturas
// @Produce      json
// @Security     BearerAuth
// @Param        venta_id path string true "UUID de la venta"
// @Success      200 {object} dto.FacturaResponse
// @Failure      404 {object} apierror.Error
// @Router       /v1/facturas/{venta_id} [get]
func (h *FacturasHandler) PorVenta(c *gin.Context) {
	ventaID, err := uuid.Parse(c.Param("venta_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodeValidacion, "ID invalido"))
		return
	}
	resp, err := h.svc.PorVenta(c.Request.Context(), ventaID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PDF godoc
// @Summary      Recibo PDF de una factura
// @Description  Sirve el recibo generado por el worker. 404 mientras no exista.
// @Tags         facturas
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path string true "UUID de la factura"
// @Success      200 {file} file
// @Failure      404 {object} apierror.Error
// @Router       /v1/facturas/pdf/{id} [get]
func (h *FacturasHandler) PDF(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodeValidacion, "ID invalido"))
		return
	}
	path, err := h.svc.RutaPDF(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(path, "recibo.pdf")
}
