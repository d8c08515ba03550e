package handler

import (
	"errors"
	"net/http"

	"haccptrace/internal/apierror"
	"haccptrace/internal/lineage"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// bindAndValidate binds the JSON body and runs the validator tags. On
// failure it writes the response; the caller returns immediately.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// pathUUID parses a uuid path parameter, writing a 400 when it is malformed.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.WithCode("invalid_argument", name+" must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps engine sentinels to status codes. Anything else goes to
// ErrorHandler, which logs it and answers 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, lineage.ErrNotFound):
		c.JSON(http.StatusNotFound, apierror.WithCode("not_found", err.Error()))
	case errors.Is(err, lineage.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, apierror.WithCode("invalid_argument", err.Error()))
	case errors.Is(err, lineage.ErrUpstreamUnavailable):
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, apierror.WithCode("upstream_unavailable", "data source unavailable, retry later"))
	default:
		_ = c.Error(err)
	}
}
