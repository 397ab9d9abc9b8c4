package migrations

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
)

func TestMigrations_Embedded(t *testing.T) {
	files, err := fs.Glob(Migrations, "*.sql")
	assert.NoError(t, err)
	assert.Equal(t, []string{
		"00001_create_users.sql",
		"00002_create_user_sessions.sql",
		"00003_create_email_verifications.sql",
	}, files)
}

func TestUp(t *testing.T) {
	original := gooseUp
	defer func() { gooseUp = original }()

	t.Run("success", func(t *testing.T) {
		var gotDir string
		gooseUp = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
			gotDir = dir
			return nil
		}

		assert.NoError(t, Up(context.Background(), nil))
		assert.Equal(t, ".", gotDir)
	})

	t.Run("error", func(t *testing.T) {
		gooseUp = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
			return errors.New("migration failed")
		}

		assert.EqualError(t, Up(context.Background(), nil), "migration failed")
	})
}
