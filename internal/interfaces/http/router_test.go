package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketgap-io/marketgap/internal/application/analysis"
	"github.com/marketgap-io/marketgap/internal/application/opportunity"
	"github.com/marketgap-io/marketgap/internal/application/recommendation"
	"github.com/marketgap-io/marketgap/internal/application/survival"
	"github.com/marketgap-io/marketgap/internal/domain/geo"
	"github.com/marketgap-io/marketgap/internal/domain/market"
	"github.com/marketgap-io/marketgap/internal/testutil"
	apperrors "github.com/marketgap-io/marketgap/pkg/errors"
)

type stubProvider struct {
	snap *analysis.Snapshot
}

func (s *stubProvider) Current() *analysis.Snapshot { return s.snap }

type stubEstimator struct {
	est survival.Estimate
	err error
}

func (s *stubEstimator) Predict(context.Context, map[string]float64) (survival.Estimate, error) {
	return s.est, s.err
}

func fixtureSnapshot(t *testing.T) *analysis.Snapshot {
	t.Helper()
	var records []market.BusinessRecord
	add := func(zip, city string, loc geo.Point, cuisine market.Cuisine, mut func(*market.BusinessRecord)) {
		r := market.BusinessRecord{
			ID: zip + city, Name: "spot", Zip: zip, City: city,
			Location: &loc, Cuisines: []market.Cuisine{cuisine},
			Stars: 3.8, ReviewCount: 60, Open: true, PriceTier: 2,
			Attributes: map[market.Attribute]bool{},
		}
		if mut != nil {
			mut(&r)
		}
		records = append(records, r)
	}
	for i := 0; i < 5; i++ {
		add("07030", "Hoboken", geo.Point{Lat: 40.744, Lon: -74.032}, market.CuisinePizza, nil)
	}
	for i := 0; i < 5; i++ {
		add("07302", "Jersey City", geo.Point{Lat: 40.718, Lon: -74.043}, market.CuisineThai,
			func(r *market.BusinessRecord) { r.Attributes[market.AttrDelivery] = true })
	}

	builder := analysis.NewBuilder(analysis.DefaultConfig(), testutil.NewMockLogger())
	snap, err := builder.Build(records)
	require.NoError(t, err)
	return snap
}

func newTestRouter(t *testing.T, provider *stubProvider, est survival.Estimator) http.Handler {
	t.Helper()
	log := testutil.NewMockLogger()
	builder := analysis.NewBuilder(analysis.DefaultConfig(), log)
	if est == nil {
		est = &stubEstimator{est: survival.Estimate{Probability: 0.7}}
	}
	return NewRouter(RouterDeps{
		Snapshots:      provider,
		Opportunities:  opportunity.NewService(provider, builder.Scorer(), log),
		Matcher:        recommendation.NewMatcher(provider, builder.Scorer(), log),
		Survival:       survival.NewService(provider, est, nil, survival.DefaultConfig(), log),
		AllowedOrigins: []string{"*"},
		Log:            log,
	})
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestReadyzBeforeAndAfterSnapshot(t *testing.T) {
	provider := &stubProvider{}
	router := newTestRouter(t, provider, nil)

	rec := get(t, router, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "loading", decode(t, rec)["status"])

	provider.snap = fixtureSnapshot(t)
	rec = get(t, router, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["build_id"])
	assert.Equal(t, 2.0, body["zips_analyzed"])
}

func TestHealthzAlwaysOK(t *testing.T) {
	router := newTestRouter(t, &stubProvider{}, nil)
	assert.Equal(t, http.StatusOK, get(t, router, "/healthz").Code)
}

func TestListOpportunities(t *testing.T) {
	router := newTestRouter(t, &stubProvider{snap: fixtureSnapshot(t)}, nil)

	rec := get(t, router, "/api/v1/opportunities?sort=opportunity_score")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Opportunities []map[string]interface{} `json:"opportunities"`
		Count         int                      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Opportunities, 2)
	assert.Equal(t, 2, body.Count)
	assert.Contains(t, body.Opportunities[0], "zip")
	assert.Contains(t, body.Opportunities[0], "opportunity_score")
	assert.Contains(t, body.Opportunities[0], "risk")
}

func TestWeakspotsClosureFloorDefault(t *testing.T) {
	router := newTestRouter(t, &stubProvider{snap: fixtureSnapshot(t)}, nil)

	rec := get(t, router, "/api/v1/weakspots")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0.0, decode(t, rec)["count"], "no zip here churns past the default floor")

	rec = get(t, router, "/api/v1/weakspots?min_closure_rate=0")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2.0, decode(t, rec)["count"], "an explicit zero floor scans every market")
}

func TestOpportunityDetailNotFound(t *testing.T) {
	router := newTestRouter(t, &stubProvider{snap: fixtureSnapshot(t)}, nil)

	rec := get(t, router, "/api/v1/opportunities/08999")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, string(apperrors.ErrCodeZipNotFound), body["code"])
	assert.NotEmpty(t, body["message"])
}

func TestOpportunityDetailMalformedZip(t *testing.T) {
	router := newTestRouter(t, &stubProvider{snap: fixtureSnapshot(t)}, nil)
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/v1/opportunities/not-a-zip").Code)
}

func TestRecommendationsShape(t *testing.T) {
	router := newTestRouter(t, &stubProvider{snap: fixtureSnapshot(t)}, nil)

	rec := get(t, router, "/api/v1/recommendations?cuisine=Thai")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)

	assert.NotEmpty(t, body["trace_id"])
	assert.Equal(t, 2.0, body["total_analyzed"])
	assert.Contains(t, body, "matches")
	assert.Contains(t, body, "recommendations")
}

func TestRecommendationsUnknownCuisine(t *testing.T) {
	router := newTestRouter(t, &stubProvider{snap: fixtureSnapshot(t)}, nil)

	rec := get(t, router, "/api/v1/recommendations?cuisine=Klingon")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(apperrors.ErrCodeUnknownCuisine), decode(t, rec)["code"])
}

func TestRecommendationsBeforeSnapshot(t *testing.T) {
	router := newTestRouter(t, &stubProvider{}, nil)
	rec := get(t, router, "/api/v1/recommendations?cuisine=Thai")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func postPredict(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	return rec
}

func TestPredict(t *testing.T) {
	router := newTestRouter(t, &stubProvider{snap: fixtureSnapshot(t)}, nil)

	rec := postPredict(t, router, `{"zip_code":"07030","cuisine":"Thai","price_tier":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)

	assert.Equal(t, 0.7, body["survival_probability"])
	assert.Equal(t, false, body["degraded"])
	assert.Contains(t, body, "market_context")
}

func TestPredictDegradedStillOK(t *testing.T) {
	est := &stubEstimator{err: apperrors.New(apperrors.ErrCodeModelUnavailable, "down")}
	router := newTestRouter(t, &stubProvider{snap: fixtureSnapshot(t)}, est)

	rec := postPredict(t, router, `{"zip_code":"07030","cuisine":"Thai"}`)
	require.Equal(t, http.StatusOK, rec.Code, "a dead model degrades the answer, not the endpoint")
	body := decode(t, rec)

	assert.Equal(t, true, body["degraded"])
	assert.Nil(t, body["survival_probability"])
	assert.Contains(t, body, "market_context")
}

func TestPredictBadBody(t *testing.T) {
	router := newTestRouter(t, &stubProvider{snap: fixtureSnapshot(t)}, nil)
	assert.Equal(t, http.StatusBadRequest, postPredict(t, router, "{nope").Code)
}

func TestMetaCuisines(t *testing.T) {
	router := newTestRouter(t, &stubProvider{}, nil)

	rec := get(t, router, "/api/v1/meta/cuisines")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)

	assert.Len(t, body["cuisines"], len(market.AllCuisines))
	assert.Len(t, body["attributes"], len(market.AllAttributes))
	assert.Equal(t, []interface{}{"low", "medium", "high"}, body["risk_tiers"])
}

func TestAdminReloadAbsentWithoutRebuilder(t *testing.T) {
	router := newTestRouter(t, &stubProvider{snap: fixtureSnapshot(t)}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/snapshot/reload", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSHeaders(t *testing.T) {
	router := newTestRouter(t, &stubProvider{}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/meta/cuisines", nil)
	req.Header.Set("Origin", "https://app.example.com")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
