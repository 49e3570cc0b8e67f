package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := New()
	r.ObservePrediction("knn", time.Millisecond, nil)
	r.ObservePrediction("knn", time.Millisecond, errors.New("boom"))
	r.ObservePrediction("knn", time.Millisecond, nil)
	r.ObserveEnsemble(true)
	r.ObserveRequest("api", "/api/v1/predict", "200")
	r.SetModelsLoaded(3)
	r.SetDatasetRecords(303)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.predictions.WithLabelValues("knn", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.predictions.WithLabelValues("knn", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ensembles.WithLabelValues("disease")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.modelsReady))
	assert.Equal(t, 303.0, testutil.ToFloat64(r.datasetRows))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "cardiorisk_predictions_total")
	assert.Contains(t, string(body), `route="/api/v1/predict"`)
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObservePrediction("x", 0, nil)
		r.ObserveEnsemble(false)
		r.ObserveRequest("ui", "/", "200")
		r.SetModelsLoaded(1)
		r.SetDatasetRecords(1)
	})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rec.Code)
}
