package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mercatto/backoffice/internal/rir/entity"
	"github.com/mercatto/backoffice/internal/rir/repository"
	"github.com/mercatto/backoffice/internal/rir/service"
	"github.com/mercatto/backoffice/internal/rir/testutil"
	"gorm.io/gorm"
)

func setupNQATest(t *testing.T) (*testutil.TestEnv, *gin.Engine) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	svc := service.NewNQAService(repos.QualityLevel, repos.SamplingPlan)
	handler := NewNQAHandler(svc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/inspections/quality-level", handler.QualityLevelForGroup)
	api.GET("/inspections/sampling-plan", handler.SamplingPlanForLot)

	return &testutil.TestEnv{DB: db, Router: router, T: t}, router
}

// seedNQA25 seeds the default NQA 2,5 level with the low bands of its table
func seedNQA25(t *testing.T, db *gorm.DB) *entity.QualityLevel {
	t.Helper()
	level := testutil.SeedQualityLevel(t, db, "nqa-025", "2,5", true)
	testutil.SeedPlanRange(t, db, "r01", level.ID, 2, 8, 2, 0, 1)
	testutil.SeedPlanRange(t, db, "r02", level.ID, 9, 15, 3, 0, 1)
	testutil.SeedPlanRange(t, db, "r03", level.ID, 16, 25, 5, 0, 1)
	testutil.SeedPlanRange(t, db, "r04", level.ID, 26, 50, 8, 0, 1)
	testutil.SeedPlanRange(t, db, "r05", level.ID, 51, 90, 13, 1, 2)
	return level
}

// TestSamplingPlanLookup tests resolving the band containing the lot size
func TestSamplingPlanLookup(t *testing.T) {
	env, router := setupNQATest(t)
	token := testutil.DefaultTestToken()
	seedNQA25(t, env.DB)

	w := testutil.DoRequest(router, http.MethodGet, "/api/v1/inspections/sampling-plan?quality_level_id=nqa-025&lot_size=75", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["tamanhoAmostra"].(float64) != 13 {
		t.Errorf("expected sample size 13, got %v", data["tamanhoAmostra"])
	}
	if data["ac"].(float64) != 1 || data["re"].(float64) != 2 {
		t.Errorf("expected AC 1 / RE 2, got %v / %v", data["ac"], data["re"])
	}
	if data["tamLote"].(float64) != 75 {
		t.Errorf("expected tamLote 75, got %v", data["tamLote"])
	}
	if data["inspecao100"].(bool) {
		t.Error("expected inspecao100 false for lot 75")
	}
	if data["recomendacao"] != "Inspecionar 13 de 75 unidades (AC: 1, RE: 2)" {
		t.Errorf("unexpected recommendation: %v", data["recomendacao"])
	}
}

// TestSamplingPlanBoundaries tests that band limits are inclusive on both ends
func TestSamplingPlanBoundaries(t *testing.T) {
	env, router := setupNQATest(t)
	token := testutil.DefaultTestToken()
	seedNQA25(t, env.DB)

	for _, tc := range []struct {
		lot    string
		sample float64
	}{
		{"51", 13},
		{"90", 13},
		{"50", 8},
	} {
		w := testutil.DoRequest(router, http.MethodGet, "/api/v1/inspections/sampling-plan?quality_level_id=nqa-025&lot_size="+tc.lot, nil, token)
		if w.Code != http.StatusOK {
			t.Fatalf("lot %s: expected 200, got %d: %s", tc.lot, w.Code, w.Body.String())
		}
		data := testutil.ParseResponse(w)["data"].(map[string]interface{})
		if data["tamanhoAmostra"].(float64) != tc.sample {
			t.Errorf("lot %s: expected sample size %v, got %v", tc.lot, tc.sample, data["tamanhoAmostra"])
		}
	}
}

// TestSamplingPlanNextBandUp tests falling into the next band when the lot
// size sits in a gap of the table
func TestSamplingPlanNextBandUp(t *testing.T) {
	env, router := setupNQATest(t)
	token := testutil.DefaultTestToken()

	level := testutil.SeedQualityLevel(t, env.DB, "nqa-gap", "4,0", false)
	testutil.SeedPlanRange(t, env.DB, "g01", level.ID, 10, 20, 3, 0, 1)
	testutil.SeedPlanRange(t, env.DB, "g02", level.ID, 30, 50, 8, 0, 1)

	// 25 sits between the bands: the next band up (30-50) applies
	w := testutil.DoRequest(router, http.MethodGet, "/api/v1/inspections/sampling-plan?quality_level_id=nqa-gap&lot_size=25", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["tamanhoAmostra"].(float64) != 8 {
		t.Errorf("expected next band sample size 8, got %v", data["tamanhoAmostra"])
	}

	// 1 sits below the whole table: the first band applies
	w = testutil.DoRequest(router, http.MethodGet, "/api/v1/inspections/sampling-plan?quality_level_id=nqa-gap&lot_size=1", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data = testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["tamanhoAmostra"].(float64) != 3 {
		t.Errorf("expected first band sample size 3, got %v", data["tamanhoAmostra"])
	}

	// 100 sits above the whole table: no plan
	w = testutil.DoRequest(router, http.MethodGet, "/api/v1/inspections/sampling-plan?quality_level_id=nqa-gap&lot_size=100", nil, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 above the table, got %d: %s", w.Code, w.Body.String())
	}
}

// TestSamplingPlanInspecao100 tests the full-inspection flag for tiny lots
func TestSamplingPlanInspecao100(t *testing.T) {
	env, router := setupNQATest(t)
	token := testutil.DefaultTestToken()
	seedNQA25(t, env.DB)

	// lot 1 rounds up into band 2-8 with sample size 2 >= lot
	w := testutil.DoRequest(router, http.MethodGet, "/api/v1/inspections/sampling-plan?quality_level_id=nqa-025&lot_size=1", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if !data["inspecao100"].(bool) {
		t.Error("expected inspecao100 true when sample size covers the lot")
	}
	if data["recomendacao"] != "Inspecionar 100% das 1 unidades" {
		t.Errorf("unexpected recommendation: %v", data["recomendacao"])
	}
}

// TestSamplingPlanValidation tests rejected and unknown inputs
func TestSamplingPlanValidation(t *testing.T) {
	env, router := setupNQATest(t)
	token := testutil.DefaultTestToken()
	seedNQA25(t, env.DB)

	w := testutil.DoRequest(router, http.MethodGet, "/api/v1/inspections/sampling-plan?quality_level_id=nqa-025&lot_size=0", nil, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("lot_size=0: expected 400, got %d", w.Code)
	}

	w = testutil.DoRequest(router, http.MethodGet, "/api/v1/inspections/sampling-plan?quality_level_id=nqa-025&lot_size=abc", nil, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("lot_size=abc: expected 400, got %d", w.Code)
	}

	w = testutil.DoRequest(router, http.MethodGet, "/api/v1/inspections/sampling-plan?lot_size=10", nil, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing quality_level_id: expected 400, got %d", w.Code)
	}

	w = testutil.DoRequest(router, http.MethodGet, "/api/v1/inspections/sampling-plan?quality_level_id=nope&lot_size=10", nil, token)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown level: expected 404, got %d", w.Code)
	}
}

// TestQualityLevelForGroup tests mapping lookup and the 2,5 default fallback
func TestQualityLevelForGroup(t *testing.T) {
	env, router := setupNQATest(t)
	token := testutil.DefaultTestToken()

	seedNQA25(t, env.DB)
	strict := testutil.SeedQualityLevel(t, env.DB, "nqa-010", "1,0", false)

	mapping := &entity.GroupQualityLevel{
		ID:             "map-001",
		GrupoID:        "grp-carnes",
		QualityLevelID: strict.ID,
		Ativo:          true,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if err := env.DB.Create(mapping).Error; err != nil {
		t.Fatalf("Failed to seed group mapping: %v", err)
	}

	// mapped group resolves to its own level
	w := testutil.DoRequest(router, http.MethodGet, "/api/v1/inspections/quality-level?group_id=grp-carnes", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["codigo"] != "1,0" {
		t.Errorf("expected mapped codigo 1,0, got %v", data["codigo"])
	}

	// unmapped group falls back to the default
	w = testutil.DoRequest(router, http.MethodGet, "/api/v1/inspections/quality-level?group_id=grp-sem-mapa", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data = testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["codigo"] != entity.DefaultQualityLevelCode {
		t.Errorf("expected default codigo %s, got %v", entity.DefaultQualityLevelCode, data["codigo"])
	}

	// no group at all also yields the default
	w = testutil.DoRequest(router, http.MethodGet, "/api/v1/inspections/quality-level", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data = testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["codigo"] != entity.DefaultQualityLevelCode {
		t.Errorf("expected default codigo %s, got %v", entity.DefaultQualityLevelCode, data["codigo"])
	}
}

// TestQualityLevelNoDefault tests the misconfiguration path with no default level
func TestQualityLevelNoDefault(t *testing.T) {
	env, router := setupNQATest(t)
	token := testutil.DefaultTestToken()

	testutil.SeedQualityLevel(t, env.DB, "nqa-010", "1,0", false)

	w := testutil.DoRequest(router, http.MethodGet, "/api/v1/inspections/quality-level?group_id=grp-x", nil, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 with no default level, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 40400 {
		t.Errorf("expected app code 40400, got %v", resp["code"])
	}
}

// TestSamplingPlanRequiresAuth tests that the resolver sits behind JWT auth
func TestSamplingPlanRequiresAuth(t *testing.T) {
	_, router := setupNQATest(t)

	w := testutil.DoRequest(router, http.MethodGet, "/api/v1/inspections/sampling-plan?quality_level_id=nqa-025&lot_size=10", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
}
