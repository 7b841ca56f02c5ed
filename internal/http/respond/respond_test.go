package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestJSONEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusOK, "ok", map[string]string{"nonce": "abc"})

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decode(t, rec)
	assert.EqualValues(t, 200, body["code"])
	assert.Equal(t, "ok", body["message"])
	assert.Equal(t, map[string]any{"nonce": "abc"}, body["data"])
}

func TestInternalHidesCauseOutsideDebug(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.3:5432: connection refused")

	rec := httptest.NewRecorder()
	Internal(rec, "failed", cause, false)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.3")

	rec = httptest.NewRecorder()
	Internal(rec, "failed", cause, true)
	assert.Contains(t, rec.Body.String(), "10.0.0.3")
}
