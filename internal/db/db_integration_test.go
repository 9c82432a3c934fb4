//go:build integration

package db

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	db, err := Connect(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx))
	return db
}

func createTestUser(t *testing.T, db *DB) *User {
	t.Helper()
	email := "test-" + uuid.NewString() + "@example.com"
	u, err := db.CreateUser(context.Background(), "Test User", email, "hash")
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = db.pool.Exec(context.Background(), "DELETE FROM users WHERE id = $1", u.ID)
	})
	return u
}

func TestIntegration_Users(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	u := createTestUser(t, db)

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		got, err := db.GetUserByEmail(ctx, "  "+strings.ToUpper(u.Email)+" ")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, u.ID, got.ID)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := db.CreateUser(ctx, "Other", u.Email, "hash")
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("missing user", func(t *testing.T) {
		got, err := db.GetUser(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("update password", func(t *testing.T) {
		require.NoError(t, db.UpdatePassword(ctx, u.ID, "new-hash"))
		got, err := db.GetUser(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "new-hash", got.PasswordHash)
	})
}

func TestIntegration_PasswordResets(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	u := createTestUser(t, db)
	hash := uuid.NewString()
	require.NoError(t, db.CreatePasswordReset(ctx, u.ID, hash, time.Now().Add(time.Hour)))

	r, err := db.ConsumePasswordReset(ctx, hash)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, u.ID, r.UserID)

	again, err := db.ConsumePasswordReset(ctx, hash)
	require.NoError(t, err)
	assert.Nil(t, again, "tokens are single-use")

	expired := uuid.NewString()
	require.NoError(t, db.CreatePasswordReset(ctx, u.ID, expired, time.Now().Add(-time.Minute)))
	r, err = db.ConsumePasswordReset(ctx, expired)
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestIntegration_Analyses(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	u := createTestUser(t, db)
	for _, title := range []string{"First", "Second"} {
		_, err := db.InsertAnalysis(ctx, &Analysis{
			UserID:         u.ID,
			JobTitle:       title,
			JobDescription: "desc",
			ResumeData:     []byte(`{"name":"Test"}`),
			AnalysisResult: []byte(`{"atsScore":80}`),
		})
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)
	}

	list, err := db.ListAnalysesByUser(ctx, u.ID, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Second", list[0].JobTitle)
	assert.JSONEq(t, `{"atsScore":80}`, string(list[0].AnalysisResult))

	other, err := db.ListAnalysesByUser(ctx, uuid.New(), 10)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestIntegration_ContactMessage(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	id, err := db.InsertContactMessage(ctx, "Ada", "Ada@Example.com", "Hello")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
	_, _ = db.pool.Exec(ctx, "DELETE FROM contact_messages WHERE id = $1", id)
}
