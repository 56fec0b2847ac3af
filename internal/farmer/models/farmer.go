// Package models holds the farmer census record and its invariants.
package models

import (
	"strconv"
	"strings"
	"time"

	"plantas/pkg/domain"
	dErrors "plantas/pkg/errors"
)

// Farmer is the aggregate root for a farmer/producer census record.
//
// Invariants:
//   - DNI is exactly 8 ASCII digits (normalized via domain.ParseDNI)
//   - DNI is immutable once the record is persisted; updates keyed by the
//     path identifier never change it
//   - Age, when it is numeric text, lies in [0, 120]; free-form text such
//     as "50 años" or "N/A" is accepted as-is
//
// Derived views (FullLocation, ActiveCrops, HasSustainablePractices,
// HasCertifications) are computed on demand from current field values and
// are never stored independently.
type Farmer struct {
	// Identification and personal data
	DNI        domain.DNI `json:"dni"`
	CensusDate time.Time  `json:"fecha_censo"`
	Surname    string     `json:"apellidos"`
	GivenNames string     `json:"nombres"`
	FullName   string     `json:"nombre_completo"`
	Sex        string     `json:"sexo"`

	Organization *string `json:"nombre_empresa_organizacion,omitempty"`
	Country      *string `json:"pais,omitempty"`
	Age          *string `json:"edad,omitempty"`
	Phone        *string `json:"telefono,omitempty"`
	CompanySize  *string `json:"tamano_empresa,omitempty"`
	Sector       *string `json:"sector,omitempty"`

	// Crops: hectares as numeric text, or a SÍ/NO style flag
	Esparrago *string `json:"esparrago,omitempty"`
	Granada   *string `json:"granada,omitempty"`
	Maiz      *string `json:"maiz,omitempty"`
	Palta     *string `json:"palta,omitempty"`
	Papa      *string `json:"papa,omitempty"`
	Pecano    *string `json:"pecano,omitempty"`
	Vid       *string `json:"vid,omitempty"`
	Castana   *string `json:"castana,omitempty"`

	// Location hierarchy, increasing in specificity
	Department      string  `json:"dpto"`
	Province        string  `json:"provincia"`
	District        string  `json:"distrito"`
	PopulatedCenter *string `json:"centro_poblado,omitempty"`
	Coordinates     *string `json:"coordenadas,omitempty"`
	MapsLink        *string `json:"ubicacion_maps,omitempty"`

	// SENASA / SISPA regulatory block
	Senasa             *string    `json:"senasa,omitempty"`
	ProductionSiteCode *string    `json:"cod_lugar_prod,omitempty"`
	RequestedArea      *float64   `json:"area_solicitada,omitempty"`
	CertifiedYield     *float64   `json:"rendimiento_certificado,omitempty"`
	Farmstead          *string    `json:"predio,omitempty"`
	Address            *string    `json:"direccion,omitempty"`
	SenasaDepartment   *string    `json:"departamento_senasa,omitempty"`
	SenasaProvince     *string    `json:"provincia_senasa,omitempty"`
	SenasaDistrict     *string    `json:"distrito_senasa,omitempty"`
	SenasaSector       *string    `json:"sector_senasa,omitempty"`
	SenasaSubsector    *string    `json:"subsector_senasa,omitempty"`
	Sispa              *string    `json:"sispa,omitempty"`
	SispaCode          *string    `json:"codigo_autogene_sispa,omitempty"`
	SispaTenureRegime  *string    `json:"regimen_tenencia_sispa,omitempty"`
	DeclaredArea       *float64   `json:"area_total_declarada,omitempty"`
	SispaUpdatedAt     *time.Time `json:"fecha_actualizacion_sispa,omitempty"`

	// Certification programs
	ProgramaPlantas   *string `json:"programa_plantas,omitempty"`
	IniaPeru2M        *string `json:"inia_programa_peru_2m,omitempty"`
	SenasaFieldSchool *string `json:"senasa_escuela_campo,omitempty"`

	// Technical cultivation data
	WaterIntake       *string  `json:"toma,omitempty"`
	CropAge           *string  `json:"edad_cultivo,omitempty"`
	PlantedHectares   *float64 `json:"total_ha_sembrada,omitempty"`
	ProductivityPerHa *float64 `json:"productividad_x_ha,omitempty"`
	IrrigationType    *string  `json:"tipo_riego,omitempty"`
	SalesReach        *string  `json:"nivel_alcance_venta,omitempty"`
	WorkdaysPerHa     *float64 `json:"jornales_por_ha,omitempty"`

	// Sustainable practices
	SustainablePractice    *string `json:"practica_economica_sost,omitempty"`
	SustainablePracticePct *string `json:"porcentaje_prac_economica_sost,omitempty"`
}

// New validates and normalizes a farmer record, failing fast so that no
// partially-constructed record is observable: the DNI is normalized in
// place and the age invariant is checked before the record is returned.
func New(f Farmer) (*Farmer, error) {
	dni, err := domain.ParseDNI(string(f.DNI))
	if err != nil {
		return nil, err
	}
	f.DNI = dni

	if err := validateAge(f.Age); err != nil {
		return nil, err
	}
	return &f, nil
}

// validateAge enforces the [0, 120] range on numeric age text. Descriptive
// text ("50 años", "N/A") carries no numeric claim and passes through.
func validateAge(age *string) error {
	if age == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*age)
	if trimmed == "" || !isDigits(trimmed) {
		return nil
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil || n < 0 || n > 120 {
		return dErrors.NewFieldError("edad", *age, "age must be between 0 and 120")
	}
	return nil
}

func isDigits(s string) bool {
	for _, c := range []byte(s) {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

// affirmative matches the census spreadsheet's localized yes-tokens.
var affirmative = map[string]bool{
	"SÍ": true, "SI": true, "S": true, "YES": true, "Y": true,
}

// cropNames is the fixed crop inventory, in presentation order.
var cropNames = []string{"esparrago", "granada", "maiz", "palta", "papa", "pecano", "vid", "castana"}

func (f *Farmer) crops() map[string]*string {
	return map[string]*string{
		"esparrago": f.Esparrago,
		"granada":   f.Granada,
		"maiz":      f.Maiz,
		"palta":     f.Palta,
		"papa":      f.Papa,
		"pecano":    f.Pecano,
		"vid":       f.Vid,
		"castana":   f.Castana,
	}
}

// ActiveCrops returns the crops under present cultivation: a crop counts as
// active when its value is an affirmative flag, or numeric text strictly
// greater than zero.
func (f *Farmer) ActiveCrops() map[string]string {
	active := make(map[string]string)
	fields := f.crops()
	for _, name := range cropNames {
		value := fields[name]
		if value == nil {
			continue
		}
		trimmed := strings.TrimSpace(*value)
		if trimmed == "" {
			continue
		}
		if affirmative[strings.ToUpper(trimmed)] {
			active[name] = *value
			continue
		}
		if n, err := strconv.ParseFloat(trimmed, 64); err == nil && n > 0 {
			active[name] = *value
		}
	}
	return active
}

// FullLocation joins the location hierarchy into a single display string,
// omitting empty parts.
func (f *Farmer) FullLocation() string {
	parts := []string{f.Department, f.Province, f.District}
	if f.PopulatedCenter != nil {
		parts = append(parts, *f.PopulatedCenter)
	}
	nonEmpty := parts[:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ", ")
}

// HasSustainablePractices reports whether the record declares a sustainable
// economic practice.
func (f *Farmer) HasSustainablePractices() bool {
	return f.SustainablePractice != nil && strings.TrimSpace(*f.SustainablePractice) != ""
}

// HasCertifications reports whether any certification program field is set.
func (f *Farmer) HasCertifications() bool {
	for _, cert := range []*string{f.ProgramaPlantas, f.IniaPeru2M, f.SenasaFieldSchool} {
		if cert != nil && strings.TrimSpace(*cert) != "" {
			return true
		}
	}
	return false
}
