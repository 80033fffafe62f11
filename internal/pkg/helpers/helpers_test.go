package helpers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/selvaalegre/portal/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestCalculateOffsetLimit(t *testing.T) {
	off, lim := CalculateOffsetLimit(3, 20)
	assert.Equal(t, uint64(40), off)
	assert.Equal(t, uint64(20), lim)

	off, lim = CalculateOffsetLimit(0, 500)
	assert.Equal(t, uint64(0), off)
	assert.Equal(t, uint64(DefaultPageSize), lim)
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(21, 2, 10)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, 2, info.CurrentPage)

	empty := NewPaginationInfo(0, 1, 10)
	assert.Equal(t, 1, empty.TotalPages)
}

func TestParsePaginationParams(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?page=4&size=1000", nil)

	page, size := ParsePaginationParams(c)
	assert.Equal(t, 4, page)
	assert.Equal(t, DefaultPageSize, size)
}

func TestParseIDParam(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Params = gin.Params{{Key: "id", Value: "17"}}
	id, err := ParseIDParam(c, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(17), id)

	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	_, err = ParseIDParam(c, "id")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestParseOptionalQueries(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?month=13&active=false&year=x", nil)

	month, ok, err := ParseOptionalIntQuery(c, "month")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 13, month)

	_, ok, err = ParseOptionalIntQuery(c, "day")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = ParseOptionalIntQuery(c, "year")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	active, err := ParseOptionalBoolQuery(c, "active")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.False(t, *active)
}

func TestParseDurationAndLocation(t *testing.T) {
	assert.Equal(t, 2*time.Hour, ParseDuration("2h", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("soon", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("", time.Minute))

	loc, err := LoadLocation("", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	_, err = LoadLocation("Mars/Olympus", time.UTC)
	assert.Error(t, err)
}
