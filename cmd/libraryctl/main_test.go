package main

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"Gin_postgres_redis_library_api/auth"
	"Gin_postgres_redis_library_api/db"
	"Gin_postgres_redis_library_api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func sqliteOpener(t *testing.T) func() (*gorm.DB, error) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", filepath.Join(t.TempDir(), "ctl.db"))
	conn, err := db.Open(sqlite.Open(dsn))
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return func() (*gorm.DB, error) { return conn, nil }
}

func Test_CreateUser_Command(t *testing.T) {
	open := sqliteOpener(t)
	conn, _ := open()

	var out bytes.Buffer
	mig := newMigrateCmd(open)
	mig.SetOut(&out)
	require.NoError(t, mig.Execute())
	assert.Contains(t, out.String(), "schema up to date")

	cmd := newCreateUserCmd(open, func(string) (string, error) { return "s3cret!", nil })
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--username", "admin", "--email", "Admin@Library.io"})
	cmd.SetContext(context.Background())
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "created user admin")

	var u models.User
	require.NoError(t, conn.First(&u, "email = ?", "admin@library.io").Error)
	assert.NoError(t, auth.CheckPassword(u.Password, "s3cret!"))
}

func Test_CreateUser_Command_Rejects(t *testing.T) {
	open := sqliteOpener(t)
	conn, _ := open()
	require.NoError(t, db.Migrate(conn))

	tests := []struct {
		name     string
		args     []string
		password string
	}{
		{name: "short_username", args: []string{"--username", "ab", "--email", "a@b.io"}, password: "s3cret!"},
		{name: "bad_email", args: []string{"--username", "abc", "--email", "nope"}, password: "s3cret!"},
		{name: "short_password", args: []string{"--username", "abc", "--email", "a@b.io"}, password: "123"},
		{name: "missing_flags", args: nil, password: "s3cret!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newCreateUserCmd(open, func(string) (string, error) { return tt.password, nil })
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs(tt.args)
			assert.Error(t, cmd.Execute())
		})
	}

	var n int64
	require.NoError(t, conn.Model(&models.User{}).Count(&n).Error)
	assert.Zero(t, n)
}
