//go:build integration

package store_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"plantas/internal/farmer/models"
	"plantas/internal/farmer/store"
	"plantas/pkg/domain"
	"plantas/pkg/sentinel"
	"plantas/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "agricultores")
	s.Require().NoError(err)
}

func newTestFarmer(dni string) *models.Farmer {
	f, err := models.New(models.Farmer{
		DNI:        domain.DNI(dni),
		Surname:    "QUISPE",
		GivenNames: "ROSA",
		FullName:   "QUISPE ROSA",
		Department: "Lima",
		Province:   "Barranca",
		District:   "Supe",
	})
	if err != nil {
		panic(err)
	}
	return f
}

func (s *PostgresStoreSuite) TestSaveAndFindRoundTrip() {
	ctx := context.Background()

	hectares := 3.5
	irrigation := "GOTEO"
	f := newTestFarmer("12345678")
	f.PlantedHectares = &hectares
	f.IrrigationType = &irrigation

	saved, err := s.store.Save(ctx, f)
	s.Require().NoError(err)
	s.Equal(domain.DNI("12345678"), saved.DNI)

	found, err := s.store.FindByDNI(ctx, "12345678")
	s.Require().NoError(err)
	s.Equal(f.Surname, found.Surname)
	s.Require().NotNil(found.PlantedHectares)
	s.Equal(hectares, *found.PlantedHectares)
	s.Require().NotNil(found.IrrigationType)
	s.Equal(irrigation, *found.IrrigationType)
}

func (s *PostgresStoreSuite) TestConcurrentDuplicateSave() {
	ctx := context.Background()
	const goroutines = 20

	var wg sync.WaitGroup
	var successCount, conflictCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Save(ctx, newTestFarmer("12345678"))
			if err == nil {
				successCount.Add(1)
			} else if errors.Is(err, sentinel.ErrConflict) {
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one save should succeed")
	s.Equal(int32(goroutines-1), conflictCount.Load(), "all others should conflict")

	count, err := s.store.Count(ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), count)
}

func (s *PostgresStoreSuite) TestUpdateMissingDoesNotInsert() {
	ctx := context.Background()

	_, err := s.store.Update(ctx, newTestFarmer("12345678"))
	s.ErrorIs(err, sentinel.ErrNotFound)

	count, err := s.store.Count(ctx)
	s.Require().NoError(err)
	s.Equal(int64(0), count)
}

func (s *PostgresStoreSuite) TestDeleteReportsRemoval() {
	ctx := context.Background()

	_, err := s.store.Save(ctx, newTestFarmer("12345678"))
	s.Require().NoError(err)

	removed, err := s.store.Delete(ctx, "12345678")
	s.Require().NoError(err)
	s.True(removed)

	removed, err = s.store.Delete(ctx, "12345678")
	s.Require().NoError(err)
	s.False(removed)

	_, err = s.store.FindByDNI(ctx, "12345678")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListOrdering() {
	ctx := context.Background()

	seed := []struct{ dni, surname, names string }{
		{"33333333", "ZAPATA", "JUAN"},
		{"11111111", "ALVAREZ", "BENITO"},
		{"22222222", "ALVAREZ", "ANA"},
	}
	for _, row := range seed {
		f := newTestFarmer(row.dni)
		f.Surname = row.surname
		f.GivenNames = row.names
		f.FullName = row.surname + " " + row.names
		_, err := s.store.Save(ctx, f)
		s.Require().NoError(err)
	}

	farmers, err := s.store.List(ctx, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(farmers, 3)
	s.Equal(domain.DNI("22222222"), farmers[0].DNI, "ALVAREZ ANA sorts first")
	s.Equal(domain.DNI("11111111"), farmers[1].DNI)
	s.Equal(domain.DNI("33333333"), farmers[2].DNI)

	page, err := s.store.List(ctx, 2, 2)
	s.Require().NoError(err)
	s.Require().Len(page, 1)
	s.Equal(domain.DNI("33333333"), page[0].DNI)
}

func (s *PostgresStoreSuite) TestFindByLocationCaseInsensitive() {
	ctx := context.Background()

	lima := newTestFarmer("11111111")
	_, err := s.store.Save(ctx, lima)
	s.Require().NoError(err)

	ica := newTestFarmer("22222222")
	ica.Department = "Ica"
	ica.Province = "Chincha"
	ica.District = "Sunampe"
	_, err = s.store.Save(ctx, ica)
	s.Require().NoError(err)

	farmers, err := s.store.FindByLocation(ctx, store.LocationFilter{Department: "lima", Province: "BARRANCA"})
	s.Require().NoError(err)
	s.Require().Len(farmers, 1)
	s.Equal(domain.DNI("11111111"), farmers[0].DNI)

	farmers, err = s.store.FindByLocation(ctx, store.LocationFilter{Department: "Lima", District: "Sunampe"})
	s.Require().NoError(err)
	s.Empty(farmers, "conjunctive filter should not match across records")
}

func (s *PostgresStoreSuite) TestFindByLocationMatchesLiterally() {
	ctx := context.Background()

	_, err := s.store.Save(ctx, newTestFarmer("11111111"))
	s.Require().NoError(err)

	// Pattern metacharacters in the filter are literal text, not wildcards.
	farmers, err := s.store.FindByLocation(ctx, store.LocationFilter{Department: "L%"})
	s.Require().NoError(err)
	s.Empty(farmers)

	farmers, err = s.store.FindByLocation(ctx, store.LocationFilter{Department: "_ima"})
	s.Require().NoError(err)
	s.Empty(farmers)

	farmers, err = s.store.FindByLocation(ctx, store.LocationFilter{Department: "Lima"})
	s.Require().NoError(err)
	s.Len(farmers, 1)
}

func (s *PostgresStoreSuite) TestExists() {
	ctx := context.Background()

	exists, err := s.store.Exists(ctx, "12345678")
	s.Require().NoError(err)
	s.False(exists)

	_, err = s.store.Save(ctx, newTestFarmer("12345678"))
	s.Require().NoError(err)

	exists, err = s.store.Exists(ctx, "12345678")
	s.Require().NoError(err)
	s.True(exists)
}

func (s *PostgresStoreSuite) TestCountUnderConcurrentSaves() {
	ctx := context.Background()
	const goroutines = 30

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, _ = s.store.Save(ctx, newTestFarmer(fmt.Sprintf("%08d", idx+1)))
		}(i)
	}
	wg.Wait()

	count, err := s.store.Count(ctx)
	s.Require().NoError(err)
	s.Equal(int64(goroutines), count)
}
