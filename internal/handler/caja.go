package handler

import (
	"net/http"

	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/apierror"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/dto"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/middleware"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/model"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CajaHandler struct{ svc service.CajaService }

func NewCajaHandler(svc service.CajaService) *CajaHandler { return &CajaHandler{svc: svc} }

// Abrir godoc
// @Summary      Abrir sesión de caja
// @Description  Abre la sesión de caja del operador con el fondo inicial declarado. Solo una sesión abierta por operador.
// @Tags         caja
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.AbrirCajaRequest true "Fondo inicial"
// @Success      201  {object} dto.SesionCajaResponse
// @Failure      409  {object} apierror.Error
// @Router       /v1/caja/abrir [post]
func (h *CajaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Abrir(c.Request.Context(), usuarioID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Cerrar godoc
// @Summary      Cerrar sesión de caja
// @Description  Cierra la sesión abierta del operador y calcula la conciliación: esperado = fondo inicial + efectivo vendido; diferencia = contado - esperado.
// @Tags         caja
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CerrarCajaRequest true "Efectivo contado"
// @Success      200  {object} dto.SesionCajaResponse
// @Failure      409  {object} apierror.Error
// @Router       /v1/caja/cerrar [post]
func (h *CajaHandler) Cerrar(c *gin.Context) {
	var req dto.CerrarCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Cerrar(c.Request.Context(), usuarioID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Estado godoc
// @Summary      Estado de la caja
// @Description  Retorna la sesión abierta del operador. Con ?usuario_id, supervisores pueden consultar la caja de otro operador.
// @Tags         caja
// @Produce      json
// @Security     BearerAuth
// @Param        usuario_id query string false "UUID de otro operador (requiere supervisor)"
// @Success      200 {object} dto.SesionCajaResponse
// @Failure      409 {object} apierror.Error
// @Router       /v1/caja/estado [get]
func (h *CajaHandler) Estado(c *gin.Context) {
	claims := middleware.GetClaims(c)
	propioID, _ := uuid.Parse(claims.UserID)

	objetivoID := propioID
	if otro := c.Query("usuario_id"); otro != "" {
		id, err := uuid.Parse(otro)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New(apierror.CodeValidacion, "usuario_id invalido"))
			return
		}
		objetivoID = id
	}

	solicitante := &model.Usuario{ID: propioID, Rol: claims.Rol}
	resp, err := h.svc.Estado(c.Request.Context(), solicitante, objetivoID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Historial godoc
// @Summary      Historial de sesiones de caja
// @Description  Lista paginada de sesiones cerradas con sus conciliaciones, filtrable por rango de fechas y operador.
// @Tags         caja
// @Produce      json
// @Security     BearerAuth
// @Param        desde      query string false "Fecha YYYY-MM-DD"
// @Param        hasta      query string false "Fecha YYYY-MM-DD"
// @Param        usuario_id query string false "UUID del operador"
// @Param        estado     query string false "abierta | cerrada | all (default cerrada)"
// @Param        page       query int    false "Página (default 1)"
// @Param        limit      query int    false "Registros por página (default 20)"
// @Success      200 {object} dto.HistorialCajaResponse
// @Failure      400 {object} apierror.Error
// @Router       /v1/caja/historial [get]
func (h *CajaHandler) Historial(c *gin.Context) {
	var filter dto.HistorialCajaFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodeValidacion, err.Error()))
		return
	}
	resp, err := h.svc.Historial(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Movimientos godoc
// @Summary      Movimientos de una sesión de caja
// @Description  Retorna el ledger inmutable de movimientos de la sesión indicada.
// @Tags         caja
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la sesión"
// @Success      200 {array}  dto.MovimientoCajaResponse
// @Failure      404 {object} apierror.Error
// @Router       /v1/caja/{id}/movimientos [get]
func (h *CajaHandler) Movimientos(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodeValidacion, "ID invalido"))
		return
	}
	resp, err := h.svc.Movimientos(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
