package docs

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Los pasos del asistente van de 1 a 4, igual que SessionDTO.Step.
func TestSwagger_PasosDelAsistente(t *testing.T) {
	raw, err := os.ReadFile("swagger.json")
	require.NoError(t, err)

	var spec struct {
		Paths map[string]map[string]struct {
			Summary string `json:"summary"`
		} `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(raw, &spec))

	summary := func(path, method string) string { return spec.Paths[path][method].Summary }
	assert.Contains(t, summary("/api/pos/sessions", "post"), "paso 1")
	assert.Contains(t, summary("/api/pos/sessions/{id}/start", "post"), "paso 1 → 2")
	assert.Contains(t, summary("/api/pos/sessions/{id}/items", "post"), "paso 2")
	assert.Contains(t, summary("/api/pos/sessions/{id}/checkout", "post"), "paso 2 → 3")
	assert.Contains(t, summary("/api/pos/sessions/{id}/payment", "post"), "paso 3 → 4")
	assert.Contains(t, summary("/api/pos/sessions/{id}/reset", "post"), "paso 1")

	assert.NotContains(t, string(raw), "paso 0")
	assert.NotContains(t, docTemplate, "paso 0")
}
