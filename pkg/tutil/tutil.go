package tutil

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mediavault/vault/pkg/mvdb"
	"github.com/mediavault/vault/pkg/mvdb/mvmodel"
	"github.com/mediavault/vault/pkg/mvdb/stor"
)

func IsIntegrationTest() bool {
	testType := os.Getenv("MVAULT_TEST")
	return strings.ToLower(testType) == "integration"
}

// OpenTestDB opens an in-memory sqlite database, private to the calling
// test, and runs the vault migrations against it.
func OpenTestDB(t *testing.T) *gorm.DB {
	// Each test gets its own named in-memory database so state never
	// bleeds between tests in the same process.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig)
	require.NoErrorf(t, err, "gorm.Open failed: %s", err)

	sqlitedb, err := db.DB()
	require.NoError(t, err)

	// Set the sqlite db to 1 connection. This gets around table lock issues
	// from multiple threads.
	sqlitedb.SetMaxOpenConns(1)

	err = mvdb.RunMigrations(db)
	require.NoErrorf(t, err, "Migration failed with: %s", err)

	return db
}

// NewTestStors opens a test database and returns the store bundle plus a
// seeded owner most tests need.
func NewTestStors(t *testing.T) (*stor.Stors, *mvmodel.User) {
	db := OpenTestDB(t)
	stors := stor.NewGormStors(db)

	user, err := stors.UserStor.CreateUser(&mvmodel.User{
		Name:     "test user",
		Email:    "test@mediavault.test",
		ApiToken: "test-api-token",
	})
	require.NoError(t, err)

	return stors, user
}
