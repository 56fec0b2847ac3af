package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"plantas/internal/farmer/models"
	"plantas/pkg/domain"
	"plantas/pkg/sentinel"
)

// PostgresStore persists farmer records in a single agricultores table keyed
// by DNI. Columns map 1:1 to entity fields; created_at/updated_at are
// maintained here, not in the domain.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

var _ Store = (*PostgresStore)(nil)

// uniqueViolation is the SQLSTATE for unique-constraint violations. The
// agricultores_pkey constraint on dni is the correctness backstop for
// concurrent creates; the service's existence pre-check is only an
// optimization.
const uniqueViolation = "23505"

// farmerColumns lists the entity columns in the canonical order used by
// every query in this file. Scan and argument order must match.
const farmerColumns = `dni, fecha_censo, apellidos, nombres, nombre_completo, sexo,
	nombre_empresa_organizacion, pais, edad, telefono, tamano_empresa, sector,
	esparrago, granada, maiz, palta, papa, pecano, vid, castana,
	dpto, provincia, distrito, centro_poblado, coordenadas, ubicacion_maps,
	senasa, cod_lugar_prod, area_solicitada, rendimiento_certificado, predio, direccion,
	departamento_senasa, provincia_senasa, distrito_senasa, sector_senasa, subsector_senasa,
	sispa, codigo_autogene_sispa, regimen_tenencia_sispa, area_total_declarada, fecha_actualizacion_sispa,
	programa_plantas, inia_programa_peru_2m, senasa_escuela_campo,
	toma, edad_cultivo, total_ha_sembrada, productividad_x_ha, tipo_riego, nivel_alcance_venta, jornales_por_ha,
	practica_economica_sost, porcentaje_prac_economica_sost`

const farmerColumnCount = 54

func placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(parts, ", ")
}

// farmerArgs returns the entity values in farmerColumns order.
func farmerArgs(f *models.Farmer) []any {
	return []any{
		f.DNI.String(), f.CensusDate, f.Surname, f.GivenNames, f.FullName, f.Sex,
		f.Organization, f.Country, f.Age, f.Phone, f.CompanySize, f.Sector,
		f.Esparrago, f.Granada, f.Maiz, f.Palta, f.Papa, f.Pecano, f.Vid, f.Castana,
		f.Department, f.Province, f.District, f.PopulatedCenter, f.Coordinates, f.MapsLink,
		f.Senasa, f.ProductionSiteCode, f.RequestedArea, f.CertifiedYield, f.Farmstead, f.Address,
		f.SenasaDepartment, f.SenasaProvince, f.SenasaDistrict, f.SenasaSector, f.SenasaSubsector,
		f.Sispa, f.SispaCode, f.SispaTenureRegime, f.DeclaredArea, f.SispaUpdatedAt,
		f.ProgramaPlantas, f.IniaPeru2M, f.SenasaFieldSchool,
		f.WaterIntake, f.CropAge, f.PlantedHectares, f.ProductivityPerHa, f.IrrigationType, f.SalesReach, f.WorkdaysPerHa,
		f.SustainablePractice, f.SustainablePracticePct,
	}
}

// scanFarmer maps one row, in farmerColumns order, back to the entity.
func scanFarmer(row pgx.Row) (*models.Farmer, error) {
	var f models.Farmer
	var dni string
	err := row.Scan(
		&dni, &f.CensusDate, &f.Surname, &f.GivenNames, &f.FullName, &f.Sex,
		&f.Organization, &f.Country, &f.Age, &f.Phone, &f.CompanySize, &f.Sector,
		&f.Esparrago, &f.Granada, &f.Maiz, &f.Palta, &f.Papa, &f.Pecano, &f.Vid, &f.Castana,
		&f.Department, &f.Province, &f.District, &f.PopulatedCenter, &f.Coordinates, &f.MapsLink,
		&f.Senasa, &f.ProductionSiteCode, &f.RequestedArea, &f.CertifiedYield, &f.Farmstead, &f.Address,
		&f.SenasaDepartment, &f.SenasaProvince, &f.SenasaDistrict, &f.SenasaSector, &f.SenasaSubsector,
		&f.Sispa, &f.SispaCode, &f.SispaTenureRegime, &f.DeclaredArea, &f.SispaUpdatedAt,
		&f.ProgramaPlantas, &f.IniaPeru2M, &f.SenasaFieldSchool,
		&f.WaterIntake, &f.CropAge, &f.PlantedHectares, &f.ProductivityPerHa, &f.IrrigationType, &f.SalesReach, &f.WorkdaysPerHa,
		&f.SustainablePractice, &f.SustainablePracticePct,
	)
	if err != nil {
		return nil, err
	}
	f.DNI = domain.DNI(dni)
	return &f, nil
}

func (s *PostgresStore) FindByDNI(ctx context.Context, dni domain.DNI) (*models.Farmer, error) {
	query := fmt.Sprintf(`SELECT %s FROM agricultores WHERE dni = $1`, farmerColumns)
	f, err := scanFarmer(s.db.QueryRow(ctx, query, dni.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find farmer: %w", err)
	}
	return f, nil
}

func (s *PostgresStore) Exists(ctx context.Context, dni domain.DNI) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM agricultores WHERE dni = $1)`, dni.String(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check farmer existence: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) Save(ctx context.Context, f *models.Farmer) (*models.Farmer, error) {
	query := fmt.Sprintf(
		`INSERT INTO agricultores (%s) VALUES (%s)`,
		farmerColumns, placeholders(farmerColumnCount),
	)
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query, farmerArgs(f)...)
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, sentinel.ErrConflict
		}
		return nil, fmt.Errorf("save farmer: %w", err)
	}
	return f, nil
}

func (s *PostgresStore) Update(ctx context.Context, f *models.Farmer) (*models.Farmer, error) {
	// dni is the match key ($1) and never part of the SET list, so an update
	// can never move a row to a different identifier or insert one.
	assignments := make([]string, 0, farmerColumnCount-1)
	cols := strings.Split(farmerColumns, ",")
	for i, col := range cols[1:] {
		assignments = append(assignments, fmt.Sprintf("%s = $%d", strings.TrimSpace(col), i+2))
	}
	query := fmt.Sprintf(
		`UPDATE agricultores SET %s, updated_at = CURRENT_TIMESTAMP WHERE dni = $1`,
		strings.Join(assignments, ", "),
	)

	var affected int64
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, farmerArgs(f)...)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update farmer: %w", err)
	}
	if affected == 0 {
		return nil, sentinel.ErrNotFound
	}
	return f, nil
}

func (s *PostgresStore) Delete(ctx context.Context, dni domain.DNI) (bool, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM agricultores WHERE dni = $1`, dni.String())
	if err != nil {
		return false, fmt.Errorf("delete farmer: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) List(ctx context.Context, limit, offset int) ([]*models.Farmer, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM agricultores ORDER BY apellidos, nombres, dni LIMIT $1 OFFSET $2`,
		farmerColumns,
	)
	rows, err := s.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list farmers: %w", err)
	}
	defer rows.Close()
	return collectFarmers(rows)
}

func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM agricultores`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count farmers: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) FindByLocation(ctx context.Context, filter LocationFilter) ([]*models.Farmer, error) {
	// Exact case-insensitive matching, same contract as the memory adapter.
	// LIKE-style patterns would let % and _ in a query act as wildcards.
	conditions := []string{}
	args := []any{}
	if filter.Department != "" {
		args = append(args, filter.Department)
		conditions = append(conditions, fmt.Sprintf("LOWER(dpto) = LOWER($%d)", len(args)))
	}
	if filter.Province != "" {
		args = append(args, filter.Province)
		conditions = append(conditions, fmt.Sprintf("LOWER(provincia) = LOWER($%d)", len(args)))
	}
	if filter.District != "" {
		args = append(args, filter.District)
		conditions = append(conditions, fmt.Sprintf("LOWER(distrito) = LOWER($%d)", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM agricultores`, farmerColumns)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY apellidos, nombres, dni LIMIT %d", MaxLocationResults)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find farmers by location: %w", err)
	}
	defer rows.Close()
	return collectFarmers(rows)
}

func collectFarmers(rows pgx.Rows) ([]*models.Farmer, error) {
	farmers := []*models.Farmer{}
	for rows.Next() {
		f, err := scanFarmer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan farmer row: %w", err)
		}
		farmers = append(farmers, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate farmer rows: %w", err)
	}
	return farmers, nil
}
