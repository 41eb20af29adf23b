package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/dropship/backend/internal/domain/payment"
	"github.com/dropship/backend/internal/domain/shared"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func TestGormPaymentRepository_FindByEventID(t *testing.T) {
	t.Run("finds existing payment", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormPaymentRepository(db)

		paymentID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "version", "gateway", "reference", "gateway_event_id", "order_number", "amount", "currency", "status"}).
			AddRow(paymentID, 1, "KORAPAY", "krp_abc123", "evt_001", "DS-2026-0001", decimal.NewFromFloat(49.99), "NGN", "SUCCESS")

		mock.ExpectQuery(`SELECT \* FROM "payments" WHERE gateway_event_id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("evt_001", 1).
			WillReturnRows(rows)

		p, err := repo.FindByEventID(context.Background(), "evt_001")

		require.NoError(t, err)
		assert.Equal(t, paymentID, p.ID)
		assert.Equal(t, "evt_001", p.GatewayEventID)
		assert.Equal(t, payment.StatusSuccess, p.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound when no payment recorded", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormPaymentRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "payments" WHERE gateway_event_id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("evt_missing", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		p, err := repo.FindByEventID(context.Background(), "evt_missing")

		assert.Nil(t, p)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormPaymentRepository_Save_DuplicateEventID(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormPaymentRepository(db)

	ev := &payment.WebhookEvent{
		EventID:     "evt_001",
		EventType:   "charge.success",
		Reference:   "krp_abc123",
		OrderNumber: "DS-2026-0001",
		Amount:      decimal.NewFromFloat(49.99),
		Currency:    "NGN",
		Status:      payment.StatusSuccess,
	}
	p, err := payment.NewFromWebhook(payment.GatewayKorapay, ev, []byte(`{"event":"charge.success"}`))
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO "payments"`).
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_payments_gateway_event_id" (SQLSTATE 23505)`))

	err = repo.Save(context.Background(), p)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sqlstate", errors.New("SQLSTATE 23505"), true},
		{"postgres message", errors.New("duplicate key value violates unique constraint"), true},
		{"sqlite message", errors.New("UNIQUE constraint failed: payments.gateway_event_id"), true},
		{"other error", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueViolation(tt.err))
		})
	}
}
