package receipt

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turnosmx/sistema-turnos/internal/model"
)

func sampleTicket() *model.Ticket {
	return &model.Ticket{
		ID:              7,
		CURP:            "ABCD010101HDFXYZ01",
		Nombre:          "Juan",
		ApellidoPaterno: "Perez",
		ApellidoMaterno: "Lopez",
		MunicipioID:     1,
		NumeroTurno:     12,
		Estatus:         model.EstatusPendiente,
		FechaCreacion:   time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestQRPayload(t *testing.T) {
	assert.Equal(t, "CURP:ABCD010101HDFXYZ01|TURNO:12|MUN:1", QRPayload(sampleTicket()))
}

func TestQRPngIsPNG(t *testing.T) {
	png, err := QRPng(sampleTicket())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(png), "\x89PNG"), "qr must be a PNG image")
}

func TestRenderPDF(t *testing.T) {
	pdf, err := RenderPDF(sampleTicket(), "Aguascalientes")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF"), "output must be a PDF document")
	assert.Greater(t, len(pdf), 1000)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "comprobante_turno_12.pdf", Filename(sampleTicket()))
}
