package worker

// recibo_worker.go
// Renders the receipt PDF for an issued invoice from QueueRecibos.
// The invoice itself is already committed when this runs; rendering is
// retried with exponential backoff and dead-lettered after the last attempt.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/infra"
	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ReciboJobPayload is the job envelope sent to QueueRecibos.
type ReciboJobPayload struct {
	FacturaID string `json:"factura_id"`
}

type ReciboWorker struct {
	facturaRepo    repository.FacturaRepository
	ventaRepo      repository.VentaRepository
	pdfStoragePath string
	nombreComercio string
	rtnComercio    string
}

func NewReciboWorker(
	facturaRepo repository.FacturaRepository,
	ventaRepo repository.VentaRepository,
	pdfStoragePath string,
	nombreComercio string,
	rtnComercio string,
) *ReciboWorker {
	return &ReciboWorker{
		facturaRepo:    facturaRepo,
		ventaRepo:      ventaRepo,
		pdfStoragePath: pdfStoragePath,
		nombreComercio: nombreComercio,
		rtnComercio:    rtnComercio,
	}
}

// Process handles a single receipt job:
//  1. Parse ReciboJobPayload from the job envelope
//  2. Fetch the Factura (with CAI) and the Venta (with items+pagos)
//  3. Render the PDF with up to 3 attempts
//  4. Store the file reference on the Factura
func (w *ReciboWorker) Process(ctx context.Context, rdb *redis.Client, raw json.RawMessage) {
	var payload ReciboJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("recibo_worker: invalid payload")
		return
	}

	facturaID, err := uuid.Parse(payload.FacturaID)
	if err != nil {
		log.Error().Str("factura_id", payload.FacturaID).Msg("recibo_worker: invalid factura_id")
		return
	}

	factura, err := w.facturaRepo.FindByID(ctx, facturaID)
	if err != nil {
		log.Error().Err(err).Str("factura_id", payload.FacturaID).Msg("recibo_worker: factura not found")
		SendToDLQ(ctx, rdb, QueueRecibos, "recibo", raw, "factura not found", 1)
		return
	}
	venta, err := w.ventaRepo.FindByID(ctx, factura.VentaID)
	if err != nil {
		log.Error().Err(err).Str("factura_id", payload.FacturaID).Msg("recibo_worker: venta not found")
		SendToDLQ(ctx, rdb, QueueRecibos, "recibo", raw, "venta not found", 1)
		return
	}

	var fileName string
	renderErr := withRetry(ctx, 3, func(attempt int) error {
		name, err := infra.GenerateReciboPDF(infra.ReciboData{
			Factura:        factura,
			Venta:          venta,
			CAI:            factura.CAI,
			NombreComercio: w.nombreComercio,
			RTNComercio:    w.rtnComercio,
		}, w.pdfStoragePath)
		if err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("factura", factura.Numero).
				Msg("recibo_worker: render attempt failed, retrying")
			return err
		}
		fileName = name
		return nil
	})
	if renderErr != nil {
		log.Error().Err(renderErr).Str("factura", factura.Numero).Msg("recibo_worker: render failed after all retries")
		SendToDLQ(ctx, rdb, QueueRecibos, "recibo", raw, renderErr.Error(), 3)
		return
	}

	if err := w.facturaRepo.UpdatePDFPath(ctx, facturaID, fileName); err != nil {
		log.Error().Err(err).Str("factura", factura.Numero).Msg("recibo_worker: failed to store pdf path")
		SendToDLQ(ctx, rdb, QueueRecibos, "recibo", raw, "update pdf path: "+err.Error(), 3)
		return
	}

	log.Info().Str("pdf", fileName).Str("factura", factura.Numero).Msg("recibo_worker: receipt generated")
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
