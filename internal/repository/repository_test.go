package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/models"
)

const bondID = "4f1c2c9e-7c55-4a43-9a57-0c7d1f0f8a10"

func newMock(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

var bondColumnNames = []string{
	"id", "user_id", "name", "currency", "interest_rate", "rate_type", "compounding_frequency",
	"days_per_year", "nominal_value", "commercial_value", "payment_frequency", "years", "method", "emission_date",
	"premium", "premium_timing", "structuring_percent", "structuring_actor", "placement_percent", "placement_actor",
	"flotation_percent", "flotation_actor", "settlement_percent", "settlement_actor", "cok", "income_tax", "hmac",
	"created_at", "updated_at",
}

var graceColumnNames = []string{"bond_id", "period", "type", "duration"}

func bondRows(ids ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows(bondColumnNames)
	emission := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	for _, id := range ids {
		rows.AddRow(id, int64(7), "Bono A", "PEN", "7.5", "effective", "",
			int64(360), "1000", "1050", "semi_annual", "3", "german", emission,
			"0.8", "beginning", "1", "emitter", "0.25", "emitter",
			"0.45", "both", "0.5", "both", "5", "30", "sig",
			emission, emission)
	}
	return rows
}

func TestCreateUser(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now()
	mock.ExpectQuery("INSERT INTO bonds.users").
		WithArgs("ana", "ana@example.com", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(3), now))

	user := &models.User{Username: "ana", Email: "ana@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.CreateUser(context.Background(), user))

	assert.Equal(t, int64(3), user.ID)
	assert.Equal(t, now, user.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("INSERT INTO bonds.users").
		WithArgs("ana", "ana@example.com", "hash").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := repo.CreateUser(context.Background(), &models.User{Username: "ana", Email: "ana@example.com", PasswordHash: "hash"})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindUserByEmail_NotFound(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("FROM bonds.users").WithArgs("nobody@example.com").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindUserByEmail(context.Background(), "nobody@example.com")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindUserByID(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("FROM bonds.users").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "created_at"}).
			AddRow(int64(9), "luis", "luis@example.com", "hash", time.Now()))

	user, err := repo.FindUserByID(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, "luis", user.Username)
}

func TestCreateBond(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO bonds.bonds").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectExec("INSERT INTO bonds.grace_periods").
		WithArgs(sqlmock.AnyArg(), 1, "partial", 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	bond := &models.BondRecord{
		UserID: 7,
		Spec: models.BondSpecification{
			InterestRate:    decimal.NewFromFloat(7.5),
			CommercialValue: decimal.NewFromInt(1000),
			GracePeriods:    []models.GracePeriodEntry{{Period: 1, Type: models.GracePartial}},
		},
	}
	require.NoError(t, repo.CreateBond(context.Background(), bond))

	assert.Len(t, bond.ID, 36)
	assert.Equal(t, now, bond.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBond_RollsBackOnGraceFailure(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO bonds.bonds").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectExec("INSERT INTO bonds.grace_periods").WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	bond := &models.BondRecord{
		ID: bondID,
		Spec: models.BondSpecification{
			GracePeriods: []models.GracePeriodEntry{{Period: 1, Type: models.GraceTotal}},
		},
	}
	err := repo.CreateBond(context.Background(), bond)

	assert.ErrorContains(t, err, "grace period 1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBond(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("FROM bonds.bonds WHERE id").WithArgs(bondID, int64(7)).WillReturnRows(bondRows(bondID))
	mock.ExpectQuery("FROM bonds.grace_periods").WithArgs(pq.Array([]string{bondID})).
		WillReturnRows(sqlmock.NewRows(graceColumnNames).
			AddRow(bondID, int64(1), "partial", int64(0)).
			AddRow(bondID, int64(2), "total", int64(0)))

	bond, err := repo.GetBond(context.Background(), 7, bondID)
	require.NoError(t, err)

	s := bond.Spec
	assert.Equal(t, bondID, bond.ID)
	assert.True(t, s.CommercialValue.Equal(decimal.NewFromInt(1050)))
	assert.Equal(t, models.German, s.Method)
	assert.Equal(t, models.SemiAnnual, s.PaymentFrequency)
	assert.Equal(t, models.ActorBoth, s.Costs.Settlement.Actor)
	assert.Equal(t, 360, s.DaysPerYear)
	require.Len(t, s.GracePeriods, 2)
	assert.Equal(t, models.GraceTotal, s.GracePeriods[1].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBond_NotFound(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("FROM bonds.bonds WHERE id").WithArgs(bondID, int64(8)).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetBond(context.Background(), 8, bondID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.GetBond(context.Background(), 8, "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListBonds(t *testing.T) {
	repo, mock := newMock(t)
	other := "0b7d3c54-2f6e-4b8e-9f0a-6f1d9c2e7a31"
	mock.ExpectQuery("FROM bonds.bonds WHERE user_id").WithArgs(int64(7)).WillReturnRows(bondRows(bondID, other))
	mock.ExpectQuery("WHERE bond_id = ANY").WithArgs(pq.Array([]string{bondID, other})).
		WillReturnRows(sqlmock.NewRows(graceColumnNames).
			AddRow(other, int64(3), "partial", int64(1)).
			AddRow(other, int64(4), "total", int64(0)))

	bonds, err := repo.ListBonds(context.Background(), 7)
	require.NoError(t, err)

	require.Len(t, bonds, 2)
	assert.Empty(t, bonds[0].Spec.GracePeriods)
	require.Len(t, bonds[1].Spec.GracePeriods, 2)
	assert.Equal(t, 3, bonds[1].Spec.GracePeriods[0].Period)
	assert.Equal(t, models.GraceTotal, bonds[1].Spec.GracePeriods[1].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListBonds_Empty(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("FROM bonds.bonds WHERE user_id").WithArgs(int64(9)).WillReturnRows(sqlmock.NewRows(bondColumnNames))

	bonds, err := repo.ListBonds(context.Background(), 9)
	require.NoError(t, err)
	assert.Empty(t, bonds)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBond(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec("DELETE FROM bonds.bonds").WithArgs(bondID, int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM bonds.bonds").WithArgs(bondID, int64(8)).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.DeleteBond(context.Background(), 7, bondID))
	assert.ErrorIs(t, repo.DeleteBond(context.Background(), 8, bondID), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
