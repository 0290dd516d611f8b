package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"msana/internal/core/id"
)

type mockTimestamps struct {
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

type mockEntity struct {
	mockTimestamps
	ID      id.ID    `db:"id" json:"id"`
	SKU     string   `db:"sku" json:"sku"`
	Stock   int      `db:"stock" json:"stock"`
	Lines   []string `db:"-" json:"lines"`
	private string
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[mockEntity]()

	expected := []string{"created_at", "updated_at", "id", "sku", "stock"}
	assert.Equal(t, expected, cols)

	// db:"-" and untagged fields never become columns.
	assert.NotContains(t, cols, "lines")
	assert.NotContains(t, cols, "private")
}

func TestStructToMap(t *testing.T) {
	now := time.Now().UTC()
	e := mockEntity{
		mockTimestamps: mockTimestamps{CreatedAt: now, UpdatedAt: now},
		ID:             id.New(),
		SKU:            "PCM-500",
		Stock:          42,
		Lines:          []string{"ignored"},
	}

	m := StructToMap(e)

	assert.Equal(t, e.ID, m["id"])
	assert.Equal(t, "PCM-500", m["sku"])
	assert.Equal(t, 42, m["stock"])
	assert.Equal(t, now, m["created_at"])
	assert.Equal(t, now, m["updated_at"])
	assert.NotContains(t, m, "lines")
	assert.Len(t, m, 5)
}

func TestStructToMap_PointerInput(t *testing.T) {
	e := &mockEntity{SKU: "AMX-250"}

	m := StructToMap(e)
	assert.Equal(t, "AMX-250", m["sku"])
}

func TestStructToMap_NonStruct(t *testing.T) {
	assert.Nil(t, StructToMap(42))
	assert.Nil(t, StructToMap("nope"))
}
