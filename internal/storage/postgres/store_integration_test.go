package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/storage"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/storage/storagetest"
)

// TestPostgresStore runs the shared store contract against a live database.
// Every subtest starts from truncated tables.
func TestPostgresStore(t *testing.T) {
	if os.Getenv("RUN_PG_INTEGRATION") != "true" {
		t.Skip("set RUN_PG_INTEGRATION=true to run against Postgres")
	}
	for _, p := range []string{".env", "../../../.env"} {
		_ = godotenv.Overload(p)
	}
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		t.Fatal("TEST_DATABASE_URL or DATABASE_URL must be set")
	}

	storagetest.Run(t, func(t *testing.T) storage.Store {
		ctx := context.Background()
		store, err := New(ctx, dsn)
		require.NoError(t, err)
		_, err = store.pool.Exec(ctx, `TRUNCATE accounts, profiles, payments, grocery_items, fixed_expenses,
			messages, meal_plans, activity_logs, user_settings, mess_settings RESTART IDENTITY CASCADE`)
		require.NoError(t, err)
		return store
	})
}
