package service

import (
	"strings"

	"plantas/internal/farmer/models"
)

// Summary is the grouped read-only view of a record returned by the
// resumen endpoint.
type Summary struct {
	Identification IdentificationSummary `json:"identificacion"`
	Location       LocationSummary       `json:"ubicacion"`
	Activity       ActivitySummary       `json:"actividad_agricola"`
	Sustainability SustainabilitySummary `json:"sostenibilidad"`
	Technical      TechnicalSummary      `json:"informacion_tecnica"`
}

type IdentificationSummary struct {
	DNI      string  `json:"dni"`
	FullName string  `json:"nombre_completo"`
	Age      *string `json:"edad,omitempty"`
	Sex      string  `json:"sexo"`
}

type LocationSummary struct {
	Department      string  `json:"departamento"`
	Province        string  `json:"provincia"`
	District        string  `json:"distrito"`
	PopulatedCenter *string `json:"centro_poblado,omitempty"`
	FullLocation    string  `json:"ubicacion_completa"`
}

type ActivitySummary struct {
	ActiveCrops       map[string]string `json:"cultivos_activos"`
	PlantedHectares   *float64          `json:"total_ha_sembrada,omitempty"`
	ProductivityPerHa *float64          `json:"productividad_x_ha,omitempty"`
	IrrigationType    *string           `json:"tipo_riego,omitempty"`
	SalesReach        *string           `json:"nivel_alcance_venta,omitempty"`
}

type SustainabilitySummary struct {
	HasSustainablePractices bool    `json:"tiene_practicas_sostenibles"`
	Practice                *string `json:"practica_economica_sost,omitempty"`
	PracticePct             *string `json:"porcentaje_prac_economica_sost,omitempty"`
}

type TechnicalSummary struct {
	Senasa        *string  `json:"senasa,omitempty"`
	Sispa         *string  `json:"sispa,omitempty"`
	DeclaredArea  *float64 `json:"area_total_declarada,omitempty"`
	WorkdaysPerHa *float64 `json:"jornales_por_ha,omitempty"`
}

// Metrics is the computed view of a record: activity counts, completeness,
// and a 0-100 sustainability score.
type Metrics struct {
	ActiveCropCount     int      `json:"numero_cultivos_activos"`
	HasCompleteInfo     bool     `json:"tiene_informacion_completa"`
	SustainabilityScore int      `json:"score_sostenibilidad"`
	EstimatedProduction *float64 `json:"produccion_total_estimada,omitempty"`
}

// Summarize builds the grouped summary view of a record.
func Summarize(f *models.Farmer) Summary {
	return Summary{
		Identification: IdentificationSummary{
			DNI:      f.DNI.String(),
			FullName: f.FullName,
			Age:      f.Age,
			Sex:      f.Sex,
		},
		Location: LocationSummary{
			Department:      f.Department,
			Province:        f.Province,
			District:        f.District,
			PopulatedCenter: f.PopulatedCenter,
			FullLocation:    f.FullLocation(),
		},
		Activity: ActivitySummary{
			ActiveCrops:       f.ActiveCrops(),
			PlantedHectares:   f.PlantedHectares,
			ProductivityPerHa: f.ProductivityPerHa,
			IrrigationType:    f.IrrigationType,
			SalesReach:        f.SalesReach,
		},
		Sustainability: SustainabilitySummary{
			HasSustainablePractices: f.HasSustainablePractices(),
			Practice:                f.SustainablePractice,
			PracticePct:             f.SustainablePracticePct,
		},
		Technical: TechnicalSummary{
			Senasa:        f.Senasa,
			Sispa:         f.Sispa,
			DeclaredArea:  f.DeclaredArea,
			WorkdaysPerHa: f.WorkdaysPerHa,
		},
	}
}

// ComputeMetrics derives activity and sustainability metrics from a record.
func ComputeMetrics(f *models.Farmer) Metrics {
	m := Metrics{
		ActiveCropCount:     len(f.ActiveCrops()),
		HasCompleteInfo:     hasCompleteInfo(f),
		SustainabilityScore: sustainabilityScore(f),
	}
	if f.PlantedHectares != nil && f.ProductivityPerHa != nil &&
		*f.PlantedHectares > 0 && *f.ProductivityPerHa > 0 {
		total := *f.PlantedHectares * *f.ProductivityPerHa
		m.EstimatedProduction = &total
	}
	return m
}

func hasCompleteInfo(f *models.Farmer) bool {
	for _, s := range []string{f.FullName, f.Department, f.Province, f.District} {
		if strings.TrimSpace(s) == "" {
			return false
		}
	}
	if f.PlantedHectares == nil {
		return false
	}
	return f.IrrigationType != nil && strings.TrimSpace(*f.IrrigationType) != ""
}

// sustainabilityScore grades a record 0-100: sustainable practices (30),
// SENASA enrollment (20), technified irrigation (up to 20), and crop
// diversification (up to 30).
func sustainabilityScore(f *models.Farmer) int {
	score := 0

	if f.HasSustainablePractices() {
		score += 30
	}
	if f.Senasa != nil && strings.TrimSpace(*f.Senasa) != "" {
		score += 20
	}
	if f.IrrigationType != nil {
		irrigation := strings.ToLower(*f.IrrigationType)
		switch {
		case strings.Contains(irrigation, "goteo"):
			score += 20
		case strings.Contains(irrigation, "aspersion"), strings.Contains(irrigation, "aspersión"):
			score += 15
		}
	}
	switch n := len(f.ActiveCrops()); {
	case n >= 3:
		score += 30
	case n == 2:
		score += 20
	case n == 1:
		score += 10
	}

	if score > 100 {
		score = 100
	}
	return score
}
