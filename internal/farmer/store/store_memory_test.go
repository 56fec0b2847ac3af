package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantas/internal/farmer/models"
	"plantas/pkg/domain"
	"plantas/pkg/sentinel"
)

func newFarmer(t *testing.T, dni, surname, givenNames string) *models.Farmer {
	t.Helper()
	f, err := models.New(models.Farmer{
		DNI:        domain.DNI(dni),
		CensusDate: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Surname:    surname,
		GivenNames: givenNames,
		FullName:   fmt.Sprintf("%s, %s", surname, givenNames),
		Sex:        "M",
		Department: "Ica",
		Province:   "Ica",
		District:   "Salas",
	})
	require.NoError(t, err)
	return f
}

func TestMemoryStore_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	saved, err := s.Save(ctx, newFarmer(t, "12345678", "Quispe", "Rosa"))
	require.NoError(t, err)

	found, err := s.FindByDNI(ctx, saved.DNI)
	require.NoError(t, err)
	assert.Equal(t, saved, found)

	_, err = s.FindByDNI(ctx, "99999999")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestMemoryStore_SaveDuplicate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	original := newFarmer(t, "12345678", "Quispe", "Rosa")
	_, err := s.Save(ctx, original)
	require.NoError(t, err)

	_, err = s.Save(ctx, newFarmer(t, "12345678", "Otro", "Nombre"))
	assert.ErrorIs(t, err, sentinel.ErrConflict)

	// The duplicate attempt must not have mutated the existing row.
	found, err := s.FindByDNI(ctx, "12345678")
	require.NoError(t, err)
	assert.Equal(t, "Quispe", found.Surname)
}

func TestMemoryStore_UpdateMissing(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Update(ctx, newFarmer(t, "12345678", "Quispe", "Rosa"))
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	// Update must never create a row as a side effect.
	exists, err := s.Exists(ctx, "12345678")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Save(ctx, newFarmer(t, "12345678", "Quispe", "Rosa"))
	require.NoError(t, err)

	removed, err := s.Delete(ctx, "12345678")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.Delete(ctx, "12345678")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestMemoryStore_ListOrderingAndPagination(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for _, f := range []*models.Farmer{
		newFarmer(t, "33333333", "Zapata", "Ana"),
		newFarmer(t, "11111111", "Apaza", "Luis"),
		newFarmer(t, "22222222", "Apaza", "Carmen"),
	} {
		_, err := s.Save(ctx, f)
		require.NoError(t, err)
	}

	page, err := s.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, domain.DNI("22222222"), page[0].DNI)
	assert.Equal(t, domain.DNI("11111111"), page[1].DNI)
	assert.Equal(t, domain.DNI("33333333"), page[2].DNI)

	// Two successive calls with no intervening writes return identical pages.
	again, err := s.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, page, again)

	second, err := s.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, domain.DNI("33333333"), second[0].DNI)

	empty, err := s.List(ctx, 10, 50)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryStore_FindByLocation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	lima := newFarmer(t, "11111111", "Apaza", "Luis")
	lima.Department = "Lima"
	lima.Province = "Barranca"
	lima.District = "Supe"

	ica := newFarmer(t, "22222222", "Quispe", "Rosa")

	for _, f := range []*models.Farmer{lima, ica} {
		_, err := s.Save(ctx, f)
		require.NoError(t, err)
	}

	t.Run("single filter", func(t *testing.T) {
		got, err := s.FindByLocation(ctx, LocationFilter{Department: "Lima"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, domain.DNI("11111111"), got[0].DNI)
	})

	t.Run("filters are conjunctive", func(t *testing.T) {
		got, err := s.FindByLocation(ctx, LocationFilter{Department: "Lima", District: "Salas"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("no filters returns all", func(t *testing.T) {
		got, err := s.FindByLocation(ctx, LocationFilter{})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("filter values are literal, not patterns", func(t *testing.T) {
		got, err := s.FindByLocation(ctx, LocationFilter{Department: "L%"})
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = s.FindByLocation(ctx, LocationFilter{Department: "_ima"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestMemoryStore_RoundTripPreservesFields(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	area := 12.5
	practice := "rotación de cultivos"
	f := newFarmer(t, "12345678", "Quispe", "Rosa")
	f.PlantedHectares = &area
	f.SustainablePractice = &practice
	f.Papa = strPtr("2.5")

	_, err := s.Save(ctx, f)
	require.NoError(t, err)

	found, err := s.FindByDNI(ctx, f.DNI)
	require.NoError(t, err)
	assert.Equal(t, f, found)

	// Mutating the caller's record must not leak into the store.
	f.Surname = "Cambiado"
	unchanged, err := s.FindByDNI(ctx, f.DNI)
	require.NoError(t, err)
	assert.Equal(t, "Quispe", unchanged.Surname)
}

func strPtr(s string) *string { return &s }
