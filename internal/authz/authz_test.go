package authz_test

import (
	"testing"

	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/authz"

	"github.com/stretchr/testify/assert"
)

func TestPuede(t *testing.T) {
	casos := []struct {
		rol       string
		capacidad authz.Capacidad
		esperado  bool
	}{
		{"cajero", authz.VentasRegistrar, true},
		{"cajero", authz.CajaOperar, true},
		{"cajero", authz.CajaVerAjena, false},
		{"cajero", authz.StockAjustar, false},
		{"cajero", authz.CAIAdministrar, false},
		{"cajero", authz.UsuariosAdmin, false},
		{"supervisor", authz.StockAjustar, true},
		{"supervisor", authz.CajaVerAjena, true},
		{"supervisor", authz.CAIAdministrar, false},
		{"supervisor", authz.UsuariosAdmin, false},
		{"administrador", authz.CAIAdministrar, true},
		{"administrador", authz.UsuariosAdmin, true},
		{"administrador", authz.VentasRegistrar, true},
	}
	for _, c := range casos {
		assert.Equal(t, c.esperado, authz.Puede(c.rol, c.capacidad),
			"%s / %s", c.rol, c.capacidad)
	}
}

func TestPuedeRolDesconocido(t *testing.T) {
	assert.False(t, authz.Puede("invitado", authz.ProductosLeer))
	assert.False(t, authz.Puede("", authz.VentasRegistrar))
}
