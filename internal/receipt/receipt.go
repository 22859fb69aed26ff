// Package receipt renders the printable comprobante for a ticket: a
// one-page PDF carrying the citizen's data and a QR code that encodes
// the ticket identity for verification at the service desk.
package receipt

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/turnosmx/sistema-turnos/internal/model"
)

// QRPayload builds the string embedded in the scannable code.  The
// format is fixed; desk scanners parse it by splitting on '|'.
func QRPayload(t *model.Ticket) string {
	return fmt.Sprintf("CURP:%s|TURNO:%d|MUN:%d", t.CURP, t.NumeroTurno, t.MunicipioID)
}

// QRPng encodes the ticket identity as a PNG QR symbol.  Low error
// correction is enough for a code that is printed and scanned once.
func QRPng(t *model.Ticket) ([]byte, error) {
	return qrcode.Encode(QRPayload(t), qrcode.Low, 256)
}

// RenderPDF produces the comprobante document: header with rule,
// ticket fields left-aligned, QR at the top right.  municipioNombre is
// passed separately because the ticket row only carries the id.
func RenderPDF(t *model.Ticket, municipioNombre string) ([]byte, error) {
	png, err := QRPng(t)
	if err != nil {
		return nil, fmt.Errorf("qr encode: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "Letter", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(25, 30)
	pdf.Cell(120, 8, "COMPROBANTE DE TURNO")
	pdf.SetLineWidth(0.4)
	pdf.Line(25, 40, 165, 40)

	pdf.SetFont("Helvetica", "", 12)
	y := 52.0
	lines := []string{
		fmt.Sprintf("Nombre: %s", t.NombreCompleto()),
		fmt.Sprintf("CURP: %s", t.CURP),
		fmt.Sprintf("Municipio: %s", municipioNombre),
		fmt.Sprintf("Numero de Turno: %d", t.NumeroTurno),
		fmt.Sprintf("Fecha: %s", t.FechaCreacion.Format("02/01/2006 15:04")),
		fmt.Sprintf("Estatus: %s", t.Estatus),
	}
	for _, line := range lines {
		pdf.SetXY(25, y)
		pdf.Cell(130, 6, line)
		y += 9
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("ticket-qr", opts, bytes.NewReader(png))
	pdf.ImageOptions("ticket-qr", 150, 48, 35, 35, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename is the download name used for the comprobante.
func Filename(t *model.Ticket) string {
	return fmt.Sprintf("comprobante_turno_%d.pdf", t.NumeroTurno)
}
