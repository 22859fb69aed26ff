package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turnosmx/sistema-turnos/internal/model"
)

func newTicket() *model.Ticket {
	return &model.Ticket{
		CURP:            "ABCD010101HDFXYZ01",
		Nombre:          "Juan",
		ApellidoPaterno: "Perez",
		ApellidoMaterno: "Lopez",
		Telefono:        "4491234567",
		Email:           "juan@example.com",
		MunicipioID:     1,
	}
}

func TestCreateWithTurnAssignsNextNumber(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT activo, ultimo_turno FROM municipios WHERE id = ? FOR UPDATE")).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"activo", "ultimo_turno"}).AddRow(true, 4))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM tickets WHERE municipio_id = ? AND curp = ?)")).
		WithArgs(uint64(1), "ABCD010101HDFXYZ01").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tickets")).
		WithArgs("ABCD010101HDFXYZ01", "Juan", "Perez", "Lopez", "4491234567",
			"juan@example.com", uint64(1), uint32(5), model.EstatusPendiente).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE municipios SET ultimo_turno = ? WHERE id = ?")).
		WithArgs(uint32(5), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT fecha_creacion, fecha_actualizacion FROM tickets WHERE id = ?")).
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"fecha_creacion", "fecha_actualizacion"}).AddRow(now, now))
	mock.ExpectCommit()

	tk := newTicket()
	require.NoError(t, NewTicketRepo(db).CreateWithTurn(context.Background(), tk))

	assert.Equal(t, uint64(42), tk.ID)
	assert.Equal(t, uint32(5), tk.NumeroTurno)
	assert.Equal(t, model.EstatusPendiente, tk.Estatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithTurnFirstTicketGetsOne(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT activo, ultimo_turno FROM municipios WHERE id = ? FOR UPDATE")).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"activo", "ultimo_turno"}).AddRow(true, 0))
	mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tickets")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE municipios SET ultimo_turno")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT fecha_creacion").
		WillReturnRows(sqlmock.NewRows([]string{"fecha_creacion", "fecha_actualizacion"}).AddRow(now, now))
	mock.ExpectCommit()

	tk := newTicket()
	require.NoError(t, NewTicketRepo(db).CreateWithTurn(context.Background(), tk))
	assert.Equal(t, uint32(1), tk.NumeroTurno)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithTurnAfterDeletingMaximum(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Turns 1 and 2 were assigned and the ticket holding 2 was deleted.
	// The counter still reads 2, so the next assignment is 3, not 2.
	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT activo, ultimo_turno FROM municipios WHERE id = ? FOR UPDATE")).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"activo", "ultimo_turno"}).AddRow(true, 2))
	mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tickets")).
		WithArgs("ABCD010101HDFXYZ01", "Juan", "Perez", "Lopez", "4491234567",
			"juan@example.com", uint64(1), uint32(3), model.EstatusPendiente).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE municipios SET ultimo_turno = ? WHERE id = ?")).
		WithArgs(uint32(3), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT fecha_creacion").
		WillReturnRows(sqlmock.NewRows([]string{"fecha_creacion", "fecha_actualizacion"}).AddRow(now, now))
	mock.ExpectCommit()

	tk := newTicket()
	require.NoError(t, NewTicketRepo(db).CreateWithTurn(context.Background(), tk))
	assert.Equal(t, uint32(3), tk.NumeroTurno, "a deleted maximum must leave a hole, not be reused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithTurnUnknownMunicipio(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT activo, ultimo_turno FROM municipios").
		WillReturnRows(sqlmock.NewRows([]string{"activo", "ultimo_turno"}))
	mock.ExpectRollback()

	err = NewTicketRepo(db).CreateWithTurn(context.Background(), newTicket())
	assert.ErrorIs(t, err, ErrMunicipioNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithTurnInactiveMunicipio(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT activo, ultimo_turno FROM municipios").
		WillReturnRows(sqlmock.NewRows([]string{"activo", "ultimo_turno"}).AddRow(false, 0))
	mock.ExpectRollback()

	err = NewTicketRepo(db).CreateWithTurn(context.Background(), newTicket())
	assert.ErrorIs(t, err, ErrMunicipioNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithTurnDuplicateCURP(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT activo, ultimo_turno FROM municipios").
		WillReturnRows(sqlmock.NewRows([]string{"activo", "ultimo_turno"}).AddRow(true, 0))
	mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	err = NewTicketRepo(db).CreateWithTurn(context.Background(), newTicket())
	assert.ErrorIs(t, err, ErrDuplicateCURP)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithTurnUniqueKeyRace(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT activo, ultimo_turno FROM municipios").
		WillReturnRows(sqlmock.NewRows([]string{"activo", "ultimo_turno"}).AddRow(true, 7))
	mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tickets")).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry '1-8' for key 'tickets.uq_municipio_turno'"))
	mock.ExpectRollback()

	err = NewTicketRepo(db).CreateWithTurn(context.Background(), newTicket())
	assert.ErrorIs(t, err, ErrTurnConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithTurnCURPKeyRace(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT activo, ultimo_turno FROM municipios").
		WillReturnRows(sqlmock.NewRows([]string{"activo", "ultimo_turno"}).AddRow(true, 0))
	mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tickets")).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry '1-ABCD010101HDFXYZ01' for key 'tickets.uq_municipio_curp'"))
	mock.ExpectRollback()

	err = NewTicketRepo(db).CreateWithTurn(context.Background(), newTicket())
	assert.ErrorIs(t, err, ErrDuplicateCURP)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByCURPAndTurn(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "curp", "nombre", "apellido_paterno", "apellido_materno",
		"telefono", "email", "municipio_id", "numero_turno", "estatus",
		"fecha_creacion", "fecha_actualizacion",
	}).AddRow(9, "ABCD010101HDFXYZ01", "Juan", "Perez", "Lopez",
		"4491234567", "juan@example.com", 1, 3, model.EstatusPendiente, now, now)

	mock.ExpectQuery(regexp.QuoteMeta("FROM tickets WHERE curp = ? AND numero_turno = ?")).
		WithArgs("ABCD010101HDFXYZ01", uint32(3)).
		WillReturnRows(rows)

	tk, err := NewTicketRepo(db).GetByCURPAndTurn(context.Background(), "ABCD010101HDFXYZ01", 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), tk.ID)
	assert.Equal(t, "Juan Perez Lopez", tk.NombreCompleto())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByCURPAndTurnNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM tickets WHERE curp").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = NewTicketRepo(db).GetByCURPAndTurn(context.Background(), "ABCD010101HDFXYZ01", 1)
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestToggleStatusFlips(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "curp", "nombre", "apellido_paterno", "apellido_materno",
		"telefono", "email", "municipio_id", "numero_turno", "estatus",
		"fecha_creacion", "fecha_actualizacion",
	}).AddRow(9, "ABCD010101HDFXYZ01", "Juan", "Perez", "",
		"", "", 1, 3, model.EstatusPendiente, now, now)

	mock.ExpectQuery(regexp.QuoteMeta("FROM tickets WHERE id = ?")).
		WithArgs(uint64(9)).
		WillReturnRows(rows)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE tickets SET estatus = ? WHERE id = ?")).
		WithArgs(model.EstatusResuelto, uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	next, err := NewTicketRepo(db).ToggleStatus(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, model.EstatusResuelto, next)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tickets WHERE id = ?")).
		WithArgs(uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewTicketRepo(db).Delete(context.Background(), 99)
	assert.ErrorIs(t, err, ErrTicketNotFound)
}
