package service

import (
	"context"
	"time"

	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/apierror"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/authz"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/dto"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/model"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CajaService interface {
	Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.SesionCajaResponse, error)
	Cerrar(ctx context.Context, usuarioID uuid.UUID, req dto.CerrarCajaRequest) (*dto.SesionCajaResponse, error)
	Estado(ctx context.Context, solicitante *model.Usuario, usuarioID uuid.UUID) (*dto.SesionCajaResponse, error)
	Historial(ctx context.Context, filter dto.HistorialCajaFilter) (*dto.HistorialCajaResponse, error)
	Movimientos(ctx context.Context, sesionID uuid.UUID) ([]dto.MovimientoCajaResponse, error)
}

type cajaService struct {
	repo      repository.CajaRepository
	ventaRepo repository.VentaRepository
}

func NewCajaService(repo repository.CajaRepository, ventaRepo repository.VentaRepository) CajaService {
	return &cajaService{repo: repo, ventaRepo: ventaRepo}
}

// Abrir opens a drawer session for the operator. The check-then-insert runs
// inside one transaction and the partial unique index on
// (usuario_id) WHERE estado = 'abierta' backstops concurrent opens: the loser
// hits a 23505 which traducirErrorDB reports as a conflict.
func (s *cajaService) Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.SesionCajaResponse, error) {
	var sesion model.SesionCaja

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		_, err := s.repo.FindSesionAbiertaPorUsuarioTx(tx, usuarioID)
		if err == nil {
			return apierror.CajaYaAbierta()
		}
		if !esNoEncontrado(err) {
			return err
		}
		sesion = model.SesionCaja{
			UsuarioID:    usuarioID,
			MontoInicial: req.MontoInicial,
			Estado:       "abierta",
			OpenedAt:     time.Now(),
		}
		return s.repo.CreateSesionTx(tx, &sesion)
	})
	if err != nil {
		return nil, traducirErrorDB(err)
	}
	return sesionToResponse(&sesion), nil
}

// Cerrar reconciles and closes the operator's open session. The session row
// is taken FOR UPDATE, which waits out the shared locks held by in-flight
// sales, so the aggregation sees every sale that commits into the session and
// later sales find it closed.
//
//	efectivo_esperado = monto_inicial + total_efectivo
//	diferencia        = efectivo_contado - efectivo_esperado
func (s *cajaService) Cerrar(ctx context.Context, usuarioID uuid.UUID, req dto.CerrarCajaRequest) (*dto.SesionCajaResponse, error) {
	var sesion *model.SesionCaja

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		sesion, err = s.repo.FindSesionAbiertaPorUsuarioTx(tx, usuarioID)
		if err != nil {
			if esNoEncontrado(err) {
				return apierror.SinCajaAbierta()
			}
			return err
		}

		resumen, err := s.ventaRepo.SumPorSesionTx(tx, sesion.ID)
		if err != nil {
			return err
		}

		esperado := sesion.MontoInicial.Add(resumen.TotalEfectivo)
		diferencia := req.EfectivoContado.Sub(esperado)
		ahora := time.Now()

		sesion.Estado = "cerrada"
		sesion.TotalVentas = &resumen.TotalVentas
		sesion.TotalEfectivo = &resumen.TotalEfectivo
		sesion.TotalTarjeta = &resumen.TotalTarjeta
		sesion.EfectivoEsperado = &esperado
		sesion.EfectivoContado = &req.EfectivoContado
		sesion.Diferencia = &diferencia
		sesion.Observaciones = req.Observaciones
		sesion.ClosedAt = &ahora

		return s.repo.UpdateSesionTx(tx, sesion)
	})
	if err != nil {
		return nil, traducirErrorDB(err)
	}
	return sesionToResponse(sesion), nil
}

// Estado returns the open session of usuarioID. Looking at another operator's
// drawer requires the caja:ver_ajena capability (supervisors and admins).
func (s *cajaService) Estado(ctx context.Context, solicitante *model.Usuario, usuarioID uuid.UUID) (*dto.SesionCajaResponse, error) {
	if solicitante.ID != usuarioID && !authz.Puede(solicitante.Rol, authz.CajaVerAjena) {
		return nil, apierror.NoEncontrado("sin caja abierta")
	}
	sesion, err := s.repo.FindSesionAbiertaPorUsuario(ctx, usuarioID)
	if err != nil {
		if esNoEncontrado(err) {
			return nil, apierror.SinCajaAbierta()
		}
		return nil, traducirErrorDB(err)
	}
	return sesionToResponse(sesion), nil
}

func (s *cajaService) Historial(ctx context.Context, filter dto.HistorialCajaFilter) (*dto.HistorialCajaResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	sesiones, total, err := s.repo.Historial(ctx, filter)
	if err != nil {
		return nil, traducirErrorDB(err)
	}
	items := make([]dto.SesionCajaResponse, 0, len(sesiones))
	for i := range sesiones {
		items = append(items, *sesionToResponse(&sesiones[i]))
	}
	return &dto.HistorialCajaResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *cajaService) Movimientos(ctx context.Context, sesionID uuid.UUID) ([]dto.MovimientoCajaResponse, error) {
	if _, err := s.repo.FindSesionByID(ctx, sesionID); err != nil {
		if esNoEncontrado(err) {
			return nil, apierror.NoEncontrado("sesión de caja no encontrada")
		}
		return nil, traducirErrorDB(err)
	}
	movs, err := s.repo.ListMovimientos(ctx, sesionID)
	if err != nil {
		return nil, traducirErrorDB(err)
	}
	out := make([]dto.MovimientoCajaResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, dto.MovimientoCajaResponse{
			ID:          m.ID.String(),
			Tipo:        m.Tipo,
			MetodoPago:  m.MetodoPago,
			Monto:       m.Monto,
			Descripcion: m.Descripcion,
			CreatedAt:   m.CreatedAt.Format(time.RFC3339),
		})
	}
	return out, nil
}

func sesionToResponse(s *model.SesionCaja) *dto.SesionCajaResponse {
	resp := &dto.SesionCajaResponse{
		ID:           s.ID.String(),
		UsuarioID:    s.UsuarioID.String(),
		MontoInicial: s.MontoInicial,
		Estado:       s.Estado,
		OpenedAt:     s.OpenedAt.Format(time.RFC3339),
	}
	if s.Usuario != nil {
		resp.Cajero = s.Usuario.Nombre
	}
	if s.Estado == "cerrada" {
		resp.TotalVentas = s.TotalVentas
		resp.TotalEfectivo = s.TotalEfectivo
		resp.TotalTarjeta = s.TotalTarjeta
		resp.EfectivoEsperado = s.EfectivoEsperado
		resp.EfectivoContado = s.EfectivoContado
		resp.Diferencia = s.Diferencia
		resp.Observaciones = s.Observaciones
		if s.ClosedAt != nil {
			closed := s.ClosedAt.Format(time.RFC3339)
			resp.ClosedAt = &closed
		}
	}
	return resp
}
