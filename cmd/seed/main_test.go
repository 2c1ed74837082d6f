package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ikkim/bizreview-backend/internal/app/model"
	"github.com/ikkim/bizreview-backend/internal/app/repository"
	"github.com/ikkim/bizreview-backend/internal/app/service"
	"github.com/ikkim/bizreview-backend/internal/datastore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeSheet(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "businesses.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadBusinessesFromXLSX(t *testing.T) {
	path := writeSheet(t, [][]interface{}{
		{"name", "owner_id", "street_address", "city", "state", "zip_code", "notes"},
		{"Bakery", "7", "1 Main St", "Corvallis", "OR", "97330", "ignored"},
		{"Cafe", "A-12", "2 Main St", "Portland", "OR", "97201"},
		{"No City", "8", "3 Main St", "", "OR", "97330"},
		{"Short"},
		{"Deli", "007", "4 Main St", "Boston", "MA", "02139"},
	})

	payloads, skipped, err := readBusinessesFromXLSX(path)
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Len(t, payloads, 3)

	first, err := model.DecodeBusiness(payloads[0])
	require.NoError(t, err)
	assert.Equal(t, "Bakery", first.Name)
	assert.True(t, first.OwnerID.IsNumeric())
	assert.True(t, first.ZipCode.IsNumeric())
	assert.NotContains(t, payloads[0], "notes")

	second, err := model.DecodeBusiness(payloads[1])
	require.NoError(t, err)
	assert.False(t, second.OwnerID.IsNumeric())
	assert.Equal(t, "A-12", second.OwnerID.String())

	third, err := model.DecodeBusiness(payloads[2])
	require.NoError(t, err)
	assert.False(t, third.ZipCode.IsNumeric())
	assert.Equal(t, "02139", third.ZipCode.String())
	assert.False(t, third.OwnerID.IsNumeric())
	assert.Equal(t, "007", third.OwnerID.String())
}

func TestReadBusinessesFromXLSX_MissingColumn(t *testing.T) {
	path := writeSheet(t, [][]interface{}{
		{"name", "owner_id", "street_address", "city", "state"},
		{"Bakery", "7", "1 Main St", "Corvallis", "OR"},
	})

	_, _, err := readBusinessesFromXLSX(path)
	assert.ErrorContains(t, err, "zip_code")
}

func TestImportBusinesses(t *testing.T) {
	path := writeSheet(t, [][]interface{}{
		{"owner_id", "name", "street_address", "city", "state", "zip_code"},
		{"1", "Bakery", "1 Main St", "Corvallis", "OR", "97330"},
		{"1", "Cafe", "2 Main St", "Corvallis", "OR", "97330"},
	})
	payloads, _, err := readBusinessesFromXLSX(path)
	require.NoError(t, err)

	store := datastore.NewMemoryStore()
	businessRepo := repository.NewBusinessRepository(store)
	businesses := service.NewBusinessService(store, businessRepo, repository.NewReviewRepository(store), nil)

	created, failed := importBusinesses(context.Background(), businesses, payloads)
	assert.Equal(t, 2, created)
	assert.Zero(t, failed)

	owned, err := businesses.ListBusinessesByOwner(context.Background(), model.IntScalar(1))
	require.NoError(t, err)
	assert.Len(t, owned, 2)
}
