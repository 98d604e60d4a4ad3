package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleVersion(t *testing.T) {
	t.Setenv("VERSION", "1.4.0")

	w := httptest.NewRecorder()
	HandleVersion("2024-09").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/version", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var info VersionInfo
	require.NoError(t, json.NewDecoder(w.Body).Decode(&info))
	assert.Equal(t, "1.4.0", info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, "2024-09", info.CatalogVersion)
}

func TestGetVersionInfo_BuildTimeWins(t *testing.T) {
	t.Setenv("VERSION", "from-env")
	orig := Version
	Version = "1.2.3"
	defer func() { Version = orig }()

	assert.Equal(t, "1.2.3", getVersionInfo())
}

func TestGetVersionInfo_Default(t *testing.T) {
	t.Setenv("VERSION", "")
	assert.Equal(t, "dev", getVersionInfo())
}
