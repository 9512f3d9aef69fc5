package helpers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/projecthub/internal/pkg/apperrors"
	"github.com/yigit/projecthub/internal/pkg/listing"
)

func contextFor(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", target, nil)
	return c
}

func TestParseViewState_Defaults(t *testing.T) {
	v := ParseViewState(contextFor("/students"), 20, "department", "year")

	assert.Equal(t, 1, v.Page)
	assert.Equal(t, 20, v.PageSize)
	assert.Equal(t, "", v.Search)
	assert.Equal(t, listing.All, v.Filter("department"))
	assert.Equal(t, listing.All, v.Filter("year"))
	assert.Equal(t, listing.SortState{Direction: listing.Asc}, v.Sort)
}

func TestParseViewState_ReadsQuery(t *testing.T) {
	v := ParseViewState(contextFor("/students?search=ada&department=CSE&year=ALL&page=3&size=5&sort=name&order=desc"), 10, "department", "year")

	assert.Equal(t, "ada", v.Search)
	assert.Equal(t, "CSE", v.Filter("department"))
	assert.Equal(t, listing.All, v.Filter("year"))
	assert.Equal(t, 3, v.Page)
	assert.Equal(t, 5, v.PageSize)
	assert.Equal(t, listing.SortState{Key: "name", Direction: listing.Desc}, v.Sort)
}

func TestParseViewState_Toggle(t *testing.T) {
	v := ParseViewState(contextFor("/students?sort=name&order=asc&toggle=name"), 10)
	assert.Equal(t, listing.SortState{Key: "name", Direction: listing.Desc}, v.Sort)

	v = ParseViewState(contextFor("/students?sort=name&order=desc&toggle=score"), 10)
	assert.Equal(t, listing.SortState{Key: "score", Direction: listing.Asc}, v.Sort)
}

func TestParseViewState_BadNumbersFallBack(t *testing.T) {
	v := ParseViewState(contextFor("/students?page=abc&size=-4"), 10)
	assert.Equal(t, 1, v.Page)
	assert.Equal(t, listing.DefaultPageSize, v.PageSize)

	v = ParseViewState(contextFor("/students?size=1000"), 10)
	assert.Equal(t, listing.MaxPageSize, v.PageSize)
}

func TestParseViewState_ChangedFiltersReturnToFirstPage(t *testing.T) {
	before := ParseViewState(contextFor("/students?department=CSE&page=4"), 10, "department")
	fp := before.Fingerprint()

	same := ParseViewState(contextFor("/students?department=CSE&page=4&view="+fp), 10, "department")
	assert.Equal(t, 4, same.Page)

	changed := ParseViewState(contextFor("/students?department=ECE&page=4&view="+fp), 10, "department")
	assert.Equal(t, 1, changed.Page)
}

func TestParseViewState_Reset(t *testing.T) {
	v := ParseViewState(contextFor("/students?search=x&department=CSE&page=2&reset=true"), 10, "department")
	assert.Equal(t, "", v.Search)
	assert.Equal(t, listing.All, v.Filter("department"))
	assert.Equal(t, 1, v.Page)
}

func TestParseIDParam(t *testing.T) {
	c := contextFor("/teams/7")
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	id, err := ParseIDParam(c, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	for _, raw := range []string{"0", "-3", "x", ""} {
		c.Params = gin.Params{{Key: "id", Value: raw}}
		_, err := ParseIDParam(c, "id")
		assert.ErrorIs(t, err, apperrors.ErrBadRequest, raw)
	}
}
