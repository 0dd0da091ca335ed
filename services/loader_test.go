package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wachat/wachat-backend/models"
	"github.com/wachat/wachat-backend/tests/testutil"
)

func writePayloadFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write payload file: %v", err)
	}
}

func TestProcessDirectory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	dir := t.TempDir()

	// ReadDir walks files in name order, so messages load before the
	// status update that references them.
	writePayloadFile(t, dir, "01_single.json",
		`{"type":"message","wa_id":"111","name":"Alice","message":"hi","meta_msg_id":"m1"}`)
	writePayloadFile(t, dir, "02_batch.json", `[
		{"type":"message","wa_id":"222","name":"Bob","message":"hello"},
		{"type":"status","meta_msg_id":"m1","status":"delivered"}
	]`)
	writePayloadFile(t, dir, "notes.txt", "not a payload")

	err := ProcessDirectory(db, dir)
	assert.NoError(t, err)

	// Two messages stored; the non-json file is ignored
	var count int64
	db.Model(&models.Message{}).Count(&count)
	assert.Equal(t, int64(2), count)

	// The status payload updated the first message
	var first models.Message
	assert.NoError(t, db.Where("meta_msg_id = ?", "m1").First(&first).Error)
	assert.Equal(t, models.StatusDelivered, first.Status)
}

func TestProcessDirectorySkipsUnknownPayloadType(t *testing.T) {
	db := testutil.SetupTestDB(t)
	dir := t.TempDir()

	writePayloadFile(t, dir, "mixed.json", `[
		{"type":"reaction","wa_id":"111"},
		{"type":"message","wa_id":"111","message":"still loaded"}
	]`)

	err := ProcessDirectory(db, dir)
	assert.NoError(t, err)

	var count int64
	db.Model(&models.Message{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestProcessDirectoryMissingDir(t *testing.T) {
	db := testutil.SetupTestDB(t)

	err := ProcessDirectory(db, filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}

func TestProcessDirectoryMalformedFile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	dir := t.TempDir()

	writePayloadFile(t, dir, "broken.json", `{not json`)

	err := ProcessDirectory(db, dir)
	assert.Error(t, err)
}
