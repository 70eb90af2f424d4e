// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/Skotchmaster/idea_drop/internal/db"
)

// NewDB returns a migrated, empty in-memory sqlite database closed at test end.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close(gdb)
	})

	return gdb
}
