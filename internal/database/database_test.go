package database

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/pathakanu/muditam/internal/model"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewSQLiteMigratesModels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := New("", path, zap.NewNop().Sugar())
	require.NoError(t, err)

	for _, m := range Models {
		require.True(t, db.Migrator().HasTable(m), fmt.Sprintf("missing table for %T", m))
	}

	user := model.User{Phone: "9000000001", CompletedKits: []int{1}}
	require.NoError(t, db.Create(&user).Error)

	var got model.User
	require.NoError(t, db.First(&got, user.ID).Error)
	require.Equal(t, model.LanguageEnglish, got.PreferredLanguage)
	require.Equal(t, 1, got.CurrentKitNumber)
	require.Equal(t, []int{1}, got.CompletedKits)
}
