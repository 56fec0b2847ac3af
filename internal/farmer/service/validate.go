package service

import (
	"strings"

	"plantas/internal/farmer/models"
	dErrors "plantas/pkg/errors"
)

// Validate enforces the business rules on a fully-populated record. Rules
// run in a fixed order and validation stops at the first violation, so the
// first failing field is always the one reported.
func Validate(f *models.Farmer) error {
	if strings.TrimSpace(f.FullName) == "" {
		return dErrors.NewFieldError("nombre_completo", f.FullName, "full name is required")
	}
	if strings.TrimSpace(f.Department) == "" {
		return dErrors.NewFieldError("dpto", f.Department, "department is required")
	}
	if f.PlantedHectares != nil && *f.PlantedHectares < 0 {
		return dErrors.NewFieldError("total_ha_sembrada", *f.PlantedHectares, "planted hectares cannot be negative")
	}
	if f.ProductivityPerHa != nil && *f.ProductivityPerHa < 0 {
		return dErrors.NewFieldError("productividad_x_ha", *f.ProductivityPerHa, "productivity cannot be negative")
	}
	return nil
}
