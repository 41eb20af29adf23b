package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dropship/backend/internal/domain/order"
	"github.com/dropship/backend/internal/domain/shared"
)

// LinehaulModelSQLite is a SQLite-compatible version of LinehaulModel for testing
type LinehaulModelSQLite struct {
	ID               string `gorm:"primaryKey"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Version          int             `gorm:"not null;default:1"`
	Reference        string          `gorm:"not null;uniqueIndex"`
	Origin           string
	Destination      string
	BaseFee          decimal.Decimal `gorm:"type:decimal(18,4)"`
	WeightKg         decimal.Decimal `gorm:"type:decimal(18,4)"`
	PerKgRate        decimal.Decimal `gorm:"type:decimal(18,4)"`
	TotalFee         decimal.Decimal `gorm:"type:decimal(18,4)"`
	ProviderOrderID  string          `gorm:"index"`
	OrderAmount      decimal.Decimal `gorm:"type:decimal(18,4)"`
	PostageAmount    decimal.Decimal `gorm:"type:decimal(18,4)"`
	StorageID        string
	ProviderSnapshot []byte
	DispatchedAt     *time.Time
	ArrivedAt        *time.Time
}

func (LinehaulModelSQLite) TableName() string {
	return "linehaul_shipments"
}

func setupLinehaulTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&LinehaulModelSQLite{})
	require.NoError(t, err)

	return db
}

func newTestLinehaul(t *testing.T, reference string) *order.LinehaulShipment {
	l, err := order.NewLinehaulShipment(reference, "CN", "NG",
		decimal.NewFromInt(50), decimal.NewFromInt(10), decimal.NewFromInt(3))
	require.NoError(t, err)
	return l
}

func TestGormLinehaulRepository_SaveAndFind(t *testing.T) {
	db := setupLinehaulTestDB(t)
	repo := NewGormLinehaulRepository(db)
	ctx := context.Background()

	t.Run("saves and finds by ID", func(t *testing.T) {
		l := newTestLinehaul(t, "LH-2026-0001")

		err := repo.Save(ctx, l)
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, l.ID.String())
		require.NoError(t, err)
		assert.Equal(t, "LH-2026-0001", found.Reference)
		assert.Equal(t, "CN", found.Origin)
		assert.Equal(t, "NG", found.Destination)
		// 50 + 10*3
		assert.True(t, found.TotalFee.Equal(decimal.NewFromInt(80)))
	})

	t.Run("finds by reference", func(t *testing.T) {
		l := newTestLinehaul(t, "LH-2026-0002")
		require.NoError(t, repo.Save(ctx, l))

		found, err := repo.FindByReference(ctx, "LH-2026-0002")
		require.NoError(t, err)
		assert.Equal(t, l.ID, found.ID)
	})

	t.Run("returns not found for unknown ID", func(t *testing.T) {
		_, err := repo.FindByID(ctx, "1b671a64-40d5-491e-99b0-da01ff1f3341")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("returns not found for unknown reference", func(t *testing.T) {
		_, err := repo.FindByReference(ctx, "LH-0000-9999")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormLinehaulRepository_Update(t *testing.T) {
	db := setupLinehaulTestDB(t)
	repo := NewGormLinehaulRepository(db)
	ctx := context.Background()

	t.Run("persists weight change and recomputed fee", func(t *testing.T) {
		l := newTestLinehaul(t, "LH-2026-0010")
		require.NoError(t, repo.Save(ctx, l))

		require.NoError(t, l.UpdateWeight(decimal.NewFromInt(20)))
		err := repo.Update(ctx, l)
		require.NoError(t, err)

		found, err := repo.FindByReference(ctx, "LH-2026-0010")
		require.NoError(t, err)
		assert.True(t, found.WeightKg.Equal(decimal.NewFromInt(20)))
		// 50 + 20*3
		assert.True(t, found.TotalFee.Equal(decimal.NewFromInt(110)))
	})

	t.Run("persists merged provider fields", func(t *testing.T) {
		l := newTestLinehaul(t, "LH-2026-0011")
		require.NoError(t, repo.Save(ctx, l))

		err := l.ApplyProviderOrder(map[string]any{
			"orderId":       "CJ-99881",
			"orderAmount":   314.5,
			"postageAmount": "22.75",
			"storageId":     "WH-3",
		})
		require.NoError(t, err)
		require.NoError(t, repo.Update(ctx, l))

		found, err := repo.FindByReference(ctx, "LH-2026-0011")
		require.NoError(t, err)
		assert.Equal(t, "CJ-99881", found.ProviderOrderID)
		assert.True(t, found.OrderAmount.Equal(decimal.NewFromFloat(314.5)))
		assert.True(t, found.PostageAmount.Equal(decimal.NewFromFloat(22.75)))
		assert.Equal(t, "WH-3", found.StorageID)
		assert.NotEmpty(t, found.ProviderSnapshot)
	})
}
