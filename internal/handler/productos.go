package handler

import (
	"net/http"

	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/apierror"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/dto"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProductosHandler struct{ svc service.ProductoService }

func NewProductosHandler(svc service.ProductoService) *ProductosHandler {
	return &ProductosHandler{svc: svc}
}

// Crear godoc
// @Summary      Crear producto
// @Tags         productos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearProductoRequest true "Datos del producto"
// @Success      201  {object} dto.ProductoResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/productos [post]
func (h *ProductosHandler) Crear(c *gin.Context) {
	var req dto.CrearProductoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Actualizar godoc
// @Summary      Actualizar producto
// @Tags         productos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID del producto"
// @Param        body body dto.ActualizarProductoRequest true "Campos a modificar"
// @Success      200  {object} dto.ProductoResponse
// @Failure      404  {object} apierror.Error
// @Router       /v1/productos/{id} [patch]
func (h *ProductosHandler) Actualizar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodeValidacion, "ID invalido"))
		return
	}
	var req dto.ActualizarProductoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Obtener godoc
// @Summary      Obtener producto por ID
// @Tags         productos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del producto"
// @Success      200 {object} dto.ProductoResponse
// @Failure      404 {object} apierror.Error
// @Router       /v1/productos/{id} [get]
func (h *ProductosHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodeValidacion, "ID invalido"))
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PorBarcode godoc
// @Summary      Buscar producto por código de barras
// @Description  Búsqueda exacta para la pantalla de venta (lector de códigos).
// @Tags         productos
// @Produce      json
// @Security     BearerAuth
// @Param        codigo path string true "Código de barras"
// @Success      200 {object} dto.ProductoResponse
// @Failure      404 {object} apierror.Error
// @Router       /v1/productos/barcode/{codigo} [get]
func (h *ProductosHandler) PorBarcode(c *gin.Context) {
	resp, err := h.svc.ObtenerPorBarcode(c.Request.Context(), c.Param("codigo"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary      Listar productos
// @Tags         productos
// @Produce      json
// @Security     BearerAuth
// @Param        nombre  query string false "Búsqueda parcial por nombre"
// @Param        barcode query string false "Código de barras exacto"
// @Param        activo  query string false "false | all (default: solo activos)"
// @Param        page    query int    false "Página (default 1)"
// @Param        limit   query int    false "Registros por página (default 50)"
// @Success      200 {object} dto.ProductoListResponse
// @Router       /v1/productos [get]
func (h *ProductosHandler) Listar(c *gin.Context) {
	var filter dto.ProductoFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodeValidacion, err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AjustarStock godoc
// @Summary      Ajuste manual de stock
// @Description  Aplica un delta supervisado al stock y registra el movimiento. Un delta negativo nunca puede dejar stock negativo.
// @Tags         productos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID del producto"
// @Param        body body dto.AjustarStockRequest true "Delta y motivo"
// @Success      200  {object} dto.ProductoResponse
// @Failure      409  {object} apierror.Error
// @Router       /v1/productos/{id}/stock [patch]
func (h *ProductosHandler) AjustarStock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodeValidacion, "ID invalido"))
		return
	}
	var req dto.AjustarStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AjustarStock(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
