package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/doeshing/ytgenius/internal/domain"
)

func TestHealthReportFailed(t *testing.T) {
	report := domain.HealthReport{Checks: []domain.HealthCheck{
		{Name: "Config file", Status: domain.HealthOK},
		{Name: "Session", Status: domain.HealthWarn},
		{Name: "History (sqlite)", Status: domain.HealthError, Details: "permission denied"},
	}}

	failed := report.Failed()
	assert.Len(t, failed, 1)
	assert.Equal(t, "History (sqlite)", failed[0].Name)

	assert.Empty(t, domain.HealthReport{}.Failed())
}
