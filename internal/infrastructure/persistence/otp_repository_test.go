package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/agriconnect/backend/internal/domain/comms"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockOTPRepository(t *testing.T) (*GormOTPRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormOTPRepository(gormDB), mock, mockDB
}

func TestGormOTPRepository_FindActive(t *testing.T) {
	t.Run("returns the newest unused code", func(t *testing.T) {
		repo, mock, mockDB := newMockOTPRepository(t)
		defer mockDB.Close()

		now := time.Now()

		rows := sqlmock.NewRows([]string{"identifier", "purpose", "code_hash", "used"}).
			AddRow("+233201234567", "login", "hash", false)

		mock.ExpectQuery(`SELECT \* FROM "otp_codes" WHERE identifier = \$1 AND purpose = \$2 AND used = \$3 AND expires_at > \$4 ORDER BY created_at DESC,.* LIMIT .*`).
			WithArgs("+233201234567", comms.OTPPurposeLogin, false, now, 1).
			WillReturnRows(rows)

		otp, err := repo.FindActive(context.Background(), "+233201234567", comms.OTPPurposeLogin, now)

		assert.NoError(t, err)
		assert.NotNil(t, otp)
		assert.Equal(t, "+233201234567", otp.Identifier)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound when no active code", func(t *testing.T) {
		repo, mock, mockDB := newMockOTPRepository(t)
		defer mockDB.Close()

		now := time.Now()

		mock.ExpectQuery(`SELECT \* FROM "otp_codes"`).
			WithArgs("+233201234567", comms.OTPPurposeLogin, false, now, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		otp, err := repo.FindActive(context.Background(), "+233201234567", comms.OTPPurposeLogin, now)

		assert.Nil(t, otp)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOTPRepository_DeleteExpired(t *testing.T) {
	t.Run("reports how many rows were removed", func(t *testing.T) {
		repo, mock, mockDB := newMockOTPRepository(t)
		defer mockDB.Close()

		cutoff := time.Now().Add(-24 * time.Hour)

		mock.ExpectExec(`DELETE FROM "otp_codes" WHERE expires_at < \$1`).
			WithArgs(cutoff).
			WillReturnResult(sqlmock.NewResult(0, 3))

		count, err := repo.DeleteExpired(context.Background(), cutoff)

		assert.NoError(t, err)
		assert.Equal(t, int64(3), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
