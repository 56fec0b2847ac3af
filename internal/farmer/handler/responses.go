package handler

import (
	"plantas/internal/farmer/models"
	"plantas/internal/farmer/service"
)

// farmerResponse is the wire shape of a record: every stored field plus the
// derived read-only views.
type farmerResponse struct {
	*models.Farmer
	FullLocation            string            `json:"ubicacion_completa"`
	ActiveCrops             map[string]string `json:"cultivos_activos"`
	HasSustainablePractices bool              `json:"tiene_practicas_sostenibles"`
	HasCertifications       bool              `json:"tiene_certificaciones"`
}

func toResponse(f *models.Farmer) farmerResponse {
	return farmerResponse{
		Farmer:                  f,
		FullLocation:            f.FullLocation(),
		ActiveCrops:             f.ActiveCrops(),
		HasSustainablePractices: f.HasSustainablePractices(),
		HasCertifications:       f.HasCertifications(),
	}
}

func toResponses(farmers []*models.Farmer) []farmerResponse {
	out := make([]farmerResponse, 0, len(farmers))
	for _, f := range farmers {
		out = append(out, toResponse(f))
	}
	return out
}

type countResponse struct {
	Total int64 `json:"total"`
}

type summaryResponse struct {
	Summary service.Summary `json:"resumen"`
	Metrics service.Metrics `json:"metricas"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
	Field  string `json:"field,omitempty"`
}
