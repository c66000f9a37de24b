package service

import (
	"context"
	"errors"

	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/apierror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// traducirErrorDB converts a storage error into the API error kind the caller
// can act on. Lock waits, deadlocks and serialization failures are retryable
// from scratch; everything else unclassified is a persistence failure.
func traducirErrorDB(err error) *apierror.Error {
	if err == nil {
		return nil
	}
	var apiErr *apierror.Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apierror.Conflicto("operación cancelada — ningún cambio fue aplicado")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03": // serialization, deadlock, lock_not_available
			return apierror.Conflicto("conflicto de concurrencia — reintente la operación")
		case "23505": // unique_violation
			return apierror.Conflicto("registro duplicado detectado")
		}
	}
	return apierror.Persistencia("error de almacenamiento")
}

// esNoEncontrado reports whether err is a missing-record error.
func esNoEncontrado(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
