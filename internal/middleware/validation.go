package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/yigit/projecthub/internal/app/models/dto"
)

// markFields are the request fields whose range failures report as VAL_002
var markFields = map[string]bool{
	"Marks":          true,
	"CriterionMarks": true,
}

// markJSONFields are the same fields by their JSON names, for type errors raised while decoding
var markJSONFields = map[string]bool{
	"marks":          true,
	"criterionMarks": true,
}

// BindJSON binds the body into obj. On failure it writes a 400 and returns false.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(validationDetail(err)))
		return false
	}
	return true
}

func validationDetail(err error) *dto.ErrorDetail {
	detail := dto.HandleValidationError(err)

	// non-numeric marks fail while decoding, before any binding tag runs
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field, _, _ := strings.Cut(typeErr.Field, ".")
		if markJSONFields[field] {
			markOutOfRange(detail)
		}
		return detail
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return detail
	}
	for _, fe := range verrs {
		if !markFields[markField(fe)] {
			continue
		}
		switch fe.Tag() {
		case "min", "max", "gte", "lte", "required_without":
			markOutOfRange(detail)
			return detail
		}
	}
	return detail
}

func markOutOfRange(detail *dto.ErrorDetail) {
	detail.Code = dto.ErrorCodeMarkOutOfRange
	detail.Message = "Marks must be a number between 0 and 100"
}

// markField returns the struct field name, resolving map entries such as CriterionMarks[design]
func markField(fe validator.FieldError) string {
	name := fe.StructField()
	for i := 0; i < len(name); i++ {
		if name[i] == '[' {
			return name[:i]
		}
	}
	return name
}
