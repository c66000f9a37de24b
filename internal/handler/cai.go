package handler

import (
	"net/http"

	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/apierror"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/dto"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CAIHandler struct{ svc service.CAIService }

func NewCAIHandler(svc service.CAIService) *CAIHandler { return &CAIHandler{svc: svc} }

// Registrar godoc
// @Summary      Registrar autorización CAI
// @Description  Registra un nuevo bloque de numeración fiscal. Con activar=true desactiva el bloque vigente en la misma transacción.
// @Tags         cai
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RegistrarCAIRequest true "Datos de la autorización"
// @Success      201  {object} dto.CAIResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/cai [post]
func (h *CAIHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarCAIRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// SetActiva godoc
// @Summary      Activar o desactivar un CAI
// @Description  Cambia el bloque que emite numeración. Activar uno desactiva cualquier otro; no se puede activar un bloque vencido o agotado.
// @Tags         cai
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID del CAI"
// @Param        body body dto.SetActivaCAIRequest true "Estado deseado"
// @Success      200  {object} dto.CAIResponse
// @Failure      404  {object} apierror.Error
// @Router       /v1/cai/{id}/activar [patch]
func (h *CAIHandler) SetActiva(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.CodeValidacion, "ID invalido"))
		return
	}
	var req dto.SetActivaCAIRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SetActiva(c.Request.Context(), id, req.Activo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Activa godoc
// @Summary      CAI activo
// @Description  Retorna el bloque vigente con su correlativo y números restantes.
// @Tags         cai
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.CAIResponse
// @Failure      409 {object} apierror.Error
// @Router       /v1/cai/activa [get]
func (h *CAIHandler) Activa(c *gin.Context) {
	resp, err := h.svc.Activa(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary      Listar autorizaciones CAI
// @Tags         cai
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.CAIResponse
// @Router       /v1/cai [get]
func (h *CAIHandler) Listar(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
