// Command importer loads a census spreadsheet into the farmer registry. It
// mirrors the cleanup the field teams rely on: DNIs are left-padded to 8
// digits, crop and program columns collapse to SÍ/NO flags, and numeric
// columns are coerced with a zero fallback. Existing records are updated in
// place so the import is safe to re-run.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/xuri/excelize/v2"

	"plantas/internal/farmer/models"
	"plantas/internal/farmer/store"
	"plantas/internal/platform/config"
	"plantas/internal/platform/logger"
	platformpg "plantas/internal/platform/postgres"
	"plantas/pkg/domain"
	"plantas/pkg/sentinel"
)

// columnMapping translates spreadsheet headers to record fields. Headers not
// listed here are ignored.
var columnMapping = map[string]string{
	"DNI":                              "dni",
	"FECHA DE CENSO":                   "fecha_censo",
	"APELLIDOS":                        "apellidos",
	"NOMBRE":                           "nombres",
	"NOMBRE COMPLETO":                  "nombre_completo",
	"SEXO":                             "sexo",
	"EDAD":                             "edad",
	"ESPARRAGO":                        "esparrago",
	"GRANADA":                          "granada",
	"MAIZ":                             "maiz",
	"PALTA":                            "palta",
	"PAPA":                             "papa",
	"PECANO":                           "pecano",
	"VID":                              "vid",
	"CASTAÑA":                          "castana",
	"DPTO":                             "dpto",
	"PROVINCIA":                        "provincia",
	"DISTRITO":                         "distrito",
	"CENTRO POBLADO":                   "centro_poblado",
	"SENASA":                           "senasa",
	"SISPPA":                           "sispa",
	"CODIGO AUTOGENE SISPPA":           "codigo_autogene_sispa",
	"REGIMEN DE TENENCIA SISPPA":       "regimen_tenencia_sispa",
	"AREA TOTAL DECLARADA (ha) SISPPA": "area_total_declarada",
	"FECHA ACTUALIZACION SISPPA":       "fecha_actualizacion_sispa",
	"TOMA":                             "toma",
	"EDAD CULTIVO":                     "edad_cultivo",
	"TOTAL Ha SEMBRADA":                "total_ha_sembrada",
	"PRODUCTIVIDAD x Ha":               "productividad_x_ha",
	"TIPO DE RIEGO":                    "tipo_riego",
	"NIVEL ALCANCE DE VENTA":           "nivel_alcance_venta",
	"Nº JORNALES POR Ha":               "jornales_por_ha",
	"PRACTICA ECONOMICA SOST":          "practica_economica_sost",
	"% PRAC ECONOMICA SOST.":           "porcentaje_prac_economica_sost",
}

func main() {
	_ = godotenv.Load()

	var (
		path  = flag.String("file", "", "path to the census .xlsx file")
		sheet = flag.String("sheet", "Hoja1", "worksheet name")
	)
	flag.Parse()

	log := logger.New()
	if *path == "" {
		log.Error("missing required -file flag")
		os.Exit(2)
	}

	cfg := config.FromEnv()
	if cfg.Postgres.URL == "" {
		log.Error("PLANTAS_DATABASE_URL is required for import")
		os.Exit(2)
	}

	ctx := context.Background()
	pool, err := platformpg.NewPool(ctx, cfg.Postgres)
	if err != nil {
		log.Error("failed to connect to database", "error", err.Error())
		os.Exit(1)
	}
	defer pool.Close()

	if err := runImport(ctx, log, store.NewPostgresStore(pool), *path, *sheet); err != nil {
		log.Error("import failed", "error", err.Error())
		os.Exit(1)
	}
}

func runImport(ctx context.Context, log *slog.Logger, farmers store.Store, path, sheet string) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return fmt.Errorf("sheet %q has no data rows", sheet)
	}

	// Map column index to field name via the header row.
	fieldByCol := make(map[int]string)
	for i, header := range rows[0] {
		if field, ok := columnMapping[strings.TrimSpace(header)]; ok {
			fieldByCol[i] = field
		}
	}

	var inserted, updated, skipped int
	seen := make(map[domain.DNI]int)

	for rowNum, row := range rows[1:] {
		record, err := buildRecord(row, fieldByCol)
		if err != nil {
			log.Warn("skipping row", "row", rowNum+2, "reason", err.Error())
			skipped++
			continue
		}

		// Later spreadsheet rows win, matching the upsert below.
		if prev, dup := seen[record.DNI]; dup {
			log.Warn("duplicate dni in spreadsheet", "dni", record.DNI.String(), "row", rowNum+2, "first_row", prev)
		}
		seen[record.DNI] = rowNum + 2

		if _, err := farmers.Save(ctx, record); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				if _, err := farmers.Update(ctx, record); err != nil {
					log.Warn("failed to update row", "row", rowNum+2, "dni", record.DNI.String(), "error", err.Error())
					skipped++
					continue
				}
				updated++
				continue
			}
			log.Warn("failed to insert row", "row", rowNum+2, "dni", record.DNI.String(), "error", err.Error())
			skipped++
			continue
		}
		inserted++
	}

	log.Info("import finished",
		"rows", len(rows)-1,
		"inserted", inserted,
		"updated", updated,
		"skipped", skipped,
	)
	return nil
}

// buildRecord converts one spreadsheet row into a validated farmer record.
func buildRecord(row []string, fieldByCol map[int]string) (*models.Farmer, error) {
	cells := make(map[string]string)
	for i, value := range row {
		field, ok := fieldByCol[i]
		if !ok {
			continue
		}
		cells[field] = strings.TrimSpace(value)
	}

	f := models.Farmer{
		DNI:        domain.DNI(padDNI(cells["dni"])),
		Surname:    cells["apellidos"],
		GivenNames: cells["nombres"],
		FullName:   cells["nombre_completo"],
		Sex:        cells["sexo"],
		Department: cells["dpto"],
		Province:   cells["provincia"],
		District:   cells["distrito"],
	}
	if f.FullName == "" {
		f.FullName = strings.TrimSpace(f.Surname + " " + f.GivenNames)
	}

	for _, field := range []string{"apellidos", "nombres", "dpto", "provincia", "distrito"} {
		if cells[field] == "" {
			return nil, fmt.Errorf("missing required column %s", field)
		}
	}

	if v := cells["fecha_censo"]; v != "" {
		t, err := parseDate(v)
		if err != nil {
			return nil, fmt.Errorf("invalid fecha_censo %q", v)
		}
		f.CensusDate = t
	}
	if v := cells["fecha_actualizacion_sispa"]; v != "" {
		if t, err := parseDate(v); err == nil {
			f.SispaUpdatedAt = &t
		}
	}

	f.Age = optional(cells["edad"])
	f.PopulatedCenter = optional(cells["centro_poblado"])
	f.SispaCode = optional(cells["codigo_autogene_sispa"])
	f.SispaTenureRegime = optional(cells["regimen_tenencia_sispa"])
	f.WaterIntake = optional(cells["toma"])
	f.IrrigationType = optional(cells["tipo_riego"])
	f.SalesReach = optional(cells["nivel_alcance_venta"])
	f.SustainablePractice = optional(cells["practica_economica_sost"])

	f.Esparrago = cropFlag(cells["esparrago"])
	f.Granada = cropFlag(cells["granada"])
	f.Maiz = cropFlag(cells["maiz"])
	f.Palta = cropFlag(cells["palta"])
	f.Papa = cropFlag(cells["papa"])
	f.Pecano = cropFlag(cells["pecano"])
	f.Vid = cropFlag(cells["vid"])
	f.Castana = cropFlag(cells["castana"])
	f.Senasa = cropFlag(cells["senasa"])
	f.Sispa = cropFlag(cells["sispa"])

	f.DeclaredArea = numericOrZero(cells["area_total_declarada"])
	f.PlantedHectares = numericOrZero(cells["total_ha_sembrada"])
	f.ProductivityPerHa = numericOrZero(cells["productividad_x_ha"])
	f.WorkdaysPerHa = numericOrZero(cells["jornales_por_ha"])

	cropAge := cropAgeText(cells["edad_cultivo"])
	f.CropAge = &cropAge
	pct := percentText(cells["porcentaje_prac_economica_sost"])
	f.SustainablePracticePct = &pct

	return models.New(f)
}

// padDNI left-pads short identifiers with zeros; spreadsheets routinely drop
// leading zeros from numeric cells.
func padDNI(raw string) string {
	raw = strings.TrimSpace(raw)
	if n := len(raw); n > 0 && n < 8 {
		return strings.Repeat("0", 8-n) + raw
	}
	return raw
}

// cropFlag collapses a crop or program column into a SÍ/NO flag. Anything
// other than an explicit NO or an empty cell counts as SÍ.
func cropFlag(v string) *string {
	out := "SÍ"
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "", "NO", "NAN", "NONE":
		out = "NO"
	}
	return &out
}

// cropAgeText formats the crop age column as "N años", keeping free-form
// text and mapping empty or error cells to "N/A".
func cropAgeText(v string) string {
	v = strings.TrimSpace(v)
	switch v {
	case "", "nan", "None", "#N/D", "#N/A":
		return "N/A"
	}
	// Spreadsheet typo: the letter O in place of a zero.
	if n, err := strconv.ParseFloat(strings.ReplaceAll(v, "O", "0"), 64); err == nil {
		return fmt.Sprintf("%d años", int(n))
	}
	return v + " años"
}

// percentText normalizes the sustainable practice percentage, defaulting to
// the lowest band when the cell is empty.
func percentText(v string) string {
	v = strings.TrimSpace(v)
	switch v {
	case "", "nan", "None":
		return "0 - 25%"
	}
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return fmt.Sprintf("%d%%", int(n))
	}
	return v
}

// numericOrZero coerces a numeric cell, falling back to zero for garbage so
// imported records never carry nulls in measure columns.
func numericOrZero(v string) *float64 {
	if strings.TrimSpace(v) == "" {
		zero := 0.0
		return &zero
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
	if err != nil {
		n = 0
	}
	return &n
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

var dateLayouts = []string{"2006-01-02", "02/01/2006", "1/2/06 15:04", "01-02-06", time.RFC3339}

func parseDate(v string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", v)
}
