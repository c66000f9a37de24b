package service

import (
	"context"
	"time"

	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/apierror"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/dto"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/model"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CAIService interface {
	Registrar(ctx context.Context, req dto.RegistrarCAIRequest) (*dto.CAIResponse, error)
	SetActiva(ctx context.Context, id uuid.UUID, activo bool) (*dto.CAIResponse, error)
	Activa(ctx context.Context) (*dto.CAIResponse, error)
	List(ctx context.Context) ([]dto.CAIResponse, error)
}

type caiService struct {
	repo repository.CAIRepository
}

func NewCAIService(repo repository.CAIRepository) CAIService {
	return &caiService{repo: repo}
}

// Registrar stores a new authorization block. The correlative starts one
// below the range so the first invoice takes rango_inicio. With Activar set,
// the previous active block is retired in the same transaction.
func (s *caiService) Registrar(ctx context.Context, req dto.RegistrarCAIRequest) (*dto.CAIResponse, error) {
	emision, err := time.Parse("2006-01-02", req.FechaEmision)
	if err != nil {
		return nil, apierror.Validacion("fecha_emision inválida, use YYYY-MM-DD")
	}
	limite, err := time.Parse("2006-01-02", req.FechaLimite)
	if err != nil {
		return nil, apierror.Validacion("fecha_limite inválida, use YYYY-MM-DD")
	}
	// The limit date is inclusive: invoices may be issued until 23:59:59.
	limite = limite.Add(24*time.Hour - time.Second)
	if !limite.After(emision) {
		return nil, apierror.Validacion("fecha_limite debe ser posterior a fecha_emision")
	}
	if req.Activar && limite.Before(time.Now()) {
		return nil, apierror.Validacion("no se puede activar un CAI ya vencido")
	}

	cai := model.CAI{
		Codigo:          req.Codigo,
		Establecimiento: req.Establecimiento,
		PuntoEmision:    req.PuntoEmision,
		TipoDocumento:   req.TipoDocumento,
		RangoInicio:     req.RangoInicio,
		RangoFin:        req.RangoFin,
		Correlativo:     req.RangoInicio - 1,
		FechaEmision:    emision,
		FechaLimite:     limite,
		Activo:          false,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if req.Activar {
			if err := s.repo.DesactivarTodasTx(tx); err != nil {
				return err
			}
			cai.Activo = true
		}
		return s.repo.CreateTx(tx, &cai)
	})
	if txErr != nil {
		return nil, traducirErrorDB(txErr)
	}
	return caiToResponse(&cai), nil
}

// SetActiva switches which block issues numbers. Activation deactivates every
// other block inside the transaction; the partial unique index on
// (activo) WHERE activo backstops a concurrent activation.
func (s *caiService) SetActiva(ctx context.Context, id uuid.UUID, activo bool) (*dto.CAIResponse, error) {
	cai, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if esNoEncontrado(err) {
			return nil, apierror.NoEncontrado("CAI no encontrado")
		}
		return nil, traducirErrorDB(err)
	}
	if activo {
		if cai.Vencido(time.Now()) {
			return nil, apierror.Validacion("no se puede activar un CAI ya vencido")
		}
		if cai.Agotado() {
			return nil, apierror.Validacion("no se puede activar un CAI agotado")
		}
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if activo {
			if err := s.repo.DesactivarTodasTx(tx); err != nil {
				return err
			}
		}
		return s.repo.SetActivoTx(tx, id, activo)
	})
	if txErr != nil {
		return nil, traducirErrorDB(txErr)
	}
	cai.Activo = activo
	return caiToResponse(cai), nil
}

func (s *caiService) Activa(ctx context.Context) (*dto.CAIResponse, error) {
	cai, err := s.repo.FindActiva(ctx)
	if err != nil {
		if esNoEncontrado(err) {
			return nil, apierror.SinCAIActivo()
		}
		return nil, traducirErrorDB(err)
	}
	return caiToResponse(cai), nil
}

func (s *caiService) List(ctx context.Context) ([]dto.CAIResponse, error) {
	cais, err := s.repo.List(ctx)
	if err != nil {
		return nil, traducirErrorDB(err)
	}
	out := make([]dto.CAIResponse, 0, len(cais))
	for i := range cais {
		out = append(out, *caiToResponse(&cais[i]))
	}
	return out, nil
}

func caiToResponse(c *model.CAI) *dto.CAIResponse {
	return &dto.CAIResponse{
		ID:              c.ID.String(),
		Codigo:          c.Codigo,
		Establecimiento: c.Establecimiento,
		PuntoEmision:    c.PuntoEmision,
		TipoDocumento:   c.TipoDocumento,
		RangoInicio:     c.RangoInicio,
		RangoFin:        c.RangoFin,
		Correlativo:     c.Correlativo,
		Restantes:       c.Restantes(),
		FechaEmision:    c.FechaEmision.Format("2006-01-02"),
		FechaLimite:     c.FechaLimite.Format("2006-01-02"),
		Activo:          c.Activo,
	}
}
