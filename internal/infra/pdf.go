package infra

// pdf.go — Thermal receipt rendering using go-pdf/fpdf.
// The receipt carries the fiscal data required on every printed invoice:
//   - Business name and RTN header
//   - Invoice number and CAI authorization code
//   - Authorized range and expiry date of the CAI
//   - Item table (product name, quantity, subtotal)
//   - ISV breakdown and bold total
//   - Payment method breakdown
//
// The output file is saved to storagePath/recibo_{numero}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/model"

	"github.com/go-pdf/fpdf"
)

// ReciboData bundles everything printed on one receipt.
type ReciboData struct {
	Factura        *model.Factura
	Venta          *model.Venta
	CAI            *model.CAI
	NombreComercio string
	RTNComercio    string
}

// GenerateReciboPDF renders the receipt for an issued invoice.
// storagePath is the directory where the PDF will be written (created if
// needed). Returns the file name relative to storagePath; that is what gets
// persisted on the Factura.
func GenerateReciboPDF(data ReciboData, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("recibo_%s.pdf", data.Factura.Numero)
	filePath := filepath.Join(storagePath, fileName)

	// 74mm × 130mm — thermal receipt paper, taller than the plain ticket to
	// fit the fiscal block
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: 130},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8 // total margins = 8mm

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, data.NombreComercio, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	if data.RTNComercio != "" {
		pdf.CellFormat(contentW, 4, "RTN: "+data.RTNComercio, "", 1, "C", false, 0, "")
	}
	pdf.CellFormat(contentW, 5, "Factura", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	// ── Fiscal block ─────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, "Factura N° "+data.Factura.Numero, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, "CAI: "+data.CAI.Codigo, "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4,
		fmt.Sprintf("Rango autorizado: %08d - %08d", data.CAI.RangoInicio, data.CAI.RangoFin),
		"", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4,
		"Fecha límite de emisión: "+data.CAI.FechaLimite.Format("02/01/2006"),
		"", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, data.Venta.CreatedAt.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")

	if data.Factura.ClienteNombre != nil && *data.Factura.ClienteNombre != "" {
		pdf.CellFormat(contentW, 4, "Cliente: "+*data.Factura.ClienteNombre, "", 1, "L", false, 0, "")
	}
	if data.Factura.ClienteRTN != nil && *data.Factura.ClienteRTN != "" {
		pdf.CellFormat(contentW, 4, "RTN cliente: "+*data.Factura.ClienteRTN, "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)

	// ── Separator ────────────────────────────────────────────────────────────
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Items header ──────────────────────────────────────────────────────────
	col1 := contentW * 0.52 // product name
	col2 := contentW * 0.16 // qty
	col3 := contentW * 0.32 // subtotal

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Producto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Cant", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Subtotal", "B", 1, "R", false, 0, "")

	// ── Item rows ─────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 7)
	for _, item := range data.Venta.Items {
		nombre := ""
		if item.Producto != nil {
			nombre = item.Producto.Nombre
		}
		// Truncate long names
		if len(nombre) > 22 {
			nombre = nombre[:21] + "…"
		}
		pdf.CellFormat(col1, 5, nombre, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", item.Cantidad), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "L "+item.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(col1+col2, 4, "Subtotal:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 4, "L "+data.Venta.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.CellFormat(col1+col2, 4, "ISV 15%:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 4, "L "+data.Venta.Impuesto.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "L "+data.Venta.Total.StringFixed(2), "", 1, "R", false, 0, "")

	// ── Payment methods ───────────────────────────────────────────────────────
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 7)
	for _, pago := range data.Venta.Pagos {
		label := "Pago (" + pago.Metodo + "):"
		pdf.CellFormat(col1+col2, 4, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 4, "L "+pago.Monto.StringFixed(2), "", 1, "R", false, 0, "")
	}

	// ── Footer ────────────────────────────────────────────────────────────────
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "¡Gracias por su compra!", "", 1, "C", false, 0, "")
	pdf.CellFormat(contentW, 4, "La factura es beneficio de todos, exíjala", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return fileName, nil
}
