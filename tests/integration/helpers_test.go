package integration

import (
	"testing"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/infrastructure/migration"
	"go.uber.org/zap"
)

func isCode(err error, code string) bool {
	domainErr, ok := shared.AsDomainError(err)
	return ok && domainErr.Code == code
}

func migrationFor(t *testing.T, db *TestDB) (*migration.Migrator, error) {
	t.Helper()
	sqlDB, err := db.DB.DB()
	if err != nil {
		return nil, err
	}
	m, err := migration.New(sqlDB, findMigrationsPath(), zap.NewNop())
	if err != nil {
		return nil, err
	}
	t.Cleanup(func() { _ = m.Close() })
	return m, nil
}
