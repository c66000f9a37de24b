// Package authz concentrates the authorization policy in one table so that
// what each role may do is auditable in a single place, instead of scattered
// per-route conditionals.
package authz

// Capacidad names one operation a role may perform.
type Capacidad string

const (
	VentasRegistrar Capacidad = "ventas:registrar"
	VentasListar    Capacidad = "ventas:listar"
	CajaOperar      Capacidad = "caja:operar"     // abrir / cerrar / estado propio
	CajaVerAjena    Capacidad = "caja:ver_ajena"  // estado / historial de otros operadores
	CAIAdministrar  Capacidad = "cai:administrar"
	ProductosLeer   Capacidad = "productos:leer"
	StockAjustar    Capacidad = "stock:ajustar"
	FacturasLeer    Capacidad = "facturas:leer"
	UsuariosAdmin   Capacidad = "usuarios:administrar"
)

// porRol is the whole authorization policy. Roles: cajero < supervisor <
// administrador; each row lists capabilities explicitly rather than
// inheriting, so a reviewer reads the policy without chasing a hierarchy.
var porRol = map[string]map[Capacidad]bool{
	"cajero": caps(
		VentasRegistrar, VentasListar, CajaOperar, ProductosLeer, FacturasLeer,
	),
	"supervisor": caps(
		VentasRegistrar, VentasListar, CajaOperar, CajaVerAjena,
		ProductosLeer, StockAjustar, FacturasLeer,
	),
	"administrador": caps(
		VentasRegistrar, VentasListar, CajaOperar, CajaVerAjena,
		CAIAdministrar, ProductosLeer, StockAjustar, FacturasLeer, UsuariosAdmin,
	),
}

func caps(cs ...Capacidad) map[Capacidad]bool {
	m := make(map[Capacidad]bool, len(cs))
	for _, c := range cs {
		m[c] = true
	}
	return m
}

// Puede reports whether the role holds the capability. Unknown roles hold
// nothing.
func Puede(rol string, c Capacidad) bool {
	return porRol[rol][c]
}
