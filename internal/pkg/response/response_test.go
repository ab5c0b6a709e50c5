package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/link-catalog-backend/internal/pkg/apperror"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestErrorMapsAppError(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Error(c, apperror.New(http.StatusNotFound, "resource not found"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"resource not found"}`, w.Body.String())
}

func TestErrorHidesInternalCause(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Error(c, errors.New("dial tcp 10.0.0.1:5432: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

func TestNewPageResponseEmptyData(t *testing.T) {
	resp := NewPageResponse[string](nil, PageMeta{Total: 3, Limit: 50, Page: 1, SortBy: "resource", Order: "ASC"})

	b, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":3,"total_filtered":0,"limit":50,"page":1,"sortby":"resource","order":"ASC","data_count":0,"data":[]}`, string(b))
}
