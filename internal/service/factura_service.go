package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/apierror"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/dto"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/model"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/repository"

	"github.com/google/uuid"
)

type FacturaService interface {
	PorVenta(ctx context.Context, ventaID uuid.UUID) (*dto.FacturaResponse, error)
	// RutaPDF returns the absolute path of the rendered receipt, or a
	// not_found error while the worker has not produced it yet.
	RutaPDF(ctx context.Context, facturaID uuid.UUID) (string, error)
}

type facturaService struct {
	repo           repository.FacturaRepository
	pdfStoragePath string
}

func NewFacturaService(repo repository.FacturaRepository, pdfStoragePath string) FacturaService {
	return &facturaService{repo: repo, pdfStoragePath: pdfStoragePath}
}

func (s *facturaService) PorVenta(ctx context.Context, ventaID uuid.UUID) (*dto.FacturaResponse, error) {
	f, err := s.repo.FindByVentaID(ctx, ventaID)
	if err != nil {
		if esNoEncontrado(err) {
			return nil, apierror.NoEncontrado("factura no encontrada para esa venta")
		}
		return nil, traducirErrorDB(err)
	}
	return facturaToResponse(f), nil
}

func (s *facturaService) RutaPDF(ctx context.Context, facturaID uuid.UUID) (string, error) {
	f, err := s.repo.FindByID(ctx, facturaID)
	if err != nil {
		if esNoEncontrado(err) {
			return "", apierror.NoEncontrado("factura no encontrada")
		}
		return "", traducirErrorDB(err)
	}
	if f.PDFPath == nil || *f.PDFPath == "" {
		return "", apierror.NoEncontrado("el recibo aún no ha sido generado")
	}
	return filepath.Join(s.pdfStoragePath, *f.PDFPath), nil
}

func facturaToResponse(f *model.Factura) *dto.FacturaResponse {
	resp := &dto.FacturaResponse{
		ID:               f.ID.String(),
		Numero:           f.Numero,
		VentaID:          f.VentaID.String(),
		Total:            f.Total,
		ClienteNombre:    f.ClienteNombre,
		ClienteRTN:       f.ClienteRTN,
		ClienteDireccion: f.ClienteDireccion,
		CreatedAt:        f.CreatedAt.Format(time.RFC3339),
	}
	if f.CAI != nil {
		resp.CAICodigo = f.CAI.Codigo
		resp.FechaLimiteCAI = f.CAI.FechaLimite.Format("2006-01-02")
	}
	if f.PDFPath != nil && *f.PDFPath != "" {
		url := fmt.Sprintf("/v1/facturas/pdf/%s", f.ID)
		resp.PDFUrl = &url
	}
	return resp
}
