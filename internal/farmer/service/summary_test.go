package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	f := testFarmer("12345678")
	f.Esparrago = strPtr("SÍ")
	f.Papa = strPtr("2.5")
	f.SustainablePractice = strPtr("compostaje")

	s := Summarize(f)
	assert.Equal(t, "12345678", s.Identification.DNI)
	assert.Equal(t, "Lima, Barranca, Supe", s.Location.FullLocation)
	assert.Len(t, s.Activity.ActiveCrops, 2)
	assert.True(t, s.Sustainability.HasSustainablePractices)
}

func TestComputeMetrics_EstimatedProduction(t *testing.T) {
	f := testFarmer("12345678")

	t.Run("absent when inputs missing", func(t *testing.T) {
		m := ComputeMetrics(f)
		assert.Nil(t, m.EstimatedProduction)
	})

	t.Run("product of hectares and productivity", func(t *testing.T) {
		f.PlantedHectares = floatPtr(4)
		f.ProductivityPerHa = floatPtr(2.5)
		m := ComputeMetrics(f)
		require.NotNil(t, m.EstimatedProduction)
		assert.InDelta(t, 10.0, *m.EstimatedProduction, 1e-9)
	})

	t.Run("zero hectares yields no estimate", func(t *testing.T) {
		f.PlantedHectares = floatPtr(0)
		m := ComputeMetrics(f)
		assert.Nil(t, m.EstimatedProduction)
	})
}

func TestSustainabilityScore(t *testing.T) {
	t.Run("empty record scores zero", func(t *testing.T) {
		m := ComputeMetrics(testFarmer("12345678"))
		assert.Zero(t, m.SustainabilityScore)
	})

	t.Run("accumulates per band", func(t *testing.T) {
		f := testFarmer("12345678")
		f.SustainablePractice = strPtr("rotación")    // +30
		f.Senasa = strPtr("SÍ")                       // +20
		f.IrrigationType = strPtr("riego por goteo")  // +20
		f.Esparrago = strPtr("SÍ")                    // 2 crops: +20
		f.Papa = strPtr("1.5")

		m := ComputeMetrics(f)
		assert.Equal(t, 90, m.SustainabilityScore)
	})

	t.Run("caps at 100", func(t *testing.T) {
		f := testFarmer("12345678")
		f.SustainablePractice = strPtr("rotación")
		f.Senasa = strPtr("SÍ")
		f.IrrigationType = strPtr("goteo")
		f.Esparrago = strPtr("SÍ")
		f.Papa = strPtr("1")
		f.Maiz = strPtr("1")
		f.Vid = strPtr("SÍ")

		m := ComputeMetrics(f)
		assert.Equal(t, 100, m.SustainabilityScore)
	})

	t.Run("aspersion scores lower than goteo", func(t *testing.T) {
		f := testFarmer("12345678")
		f.IrrigationType = strPtr("aspersión")
		m := ComputeMetrics(f)
		assert.Equal(t, 15, m.SustainabilityScore)
	})
}

func TestHasCompleteInfo(t *testing.T) {
	f := testFarmer("12345678")
	assert.False(t, ComputeMetrics(f).HasCompleteInfo)

	f.PlantedHectares = floatPtr(2)
	f.IrrigationType = strPtr("gravedad")
	assert.True(t, ComputeMetrics(f).HasCompleteInfo)
}
