package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/iceymoss/go-press/pkg/xerr"
	"github.com/stretchr/testify/assert"
)

func TestValidationKeepsFirstMessage(t *testing.T) {
	e := NewValidation()
	assert.False(t, e.HasAny())

	e.Add("title", "The title field is required.")
	e.Add("title", "ignored")
	e.Add("content", "The content field is required.")

	assert.True(t, e.HasAny())
	assert.Equal(t, "The title field is required.", e.Fields["title"])
	assert.Equal(t, http.StatusUnprocessableEntity, e.HTTPStatus())
	assert.Contains(t, e.Error(), "content: The content field is required.;")
}

func TestFromWrapped(t *testing.T) {
	err := fmt.Errorf("show article: %w", NotFound("article"))
	cm := From(err)
	assert.Equal(t, xerr.ErrResourceNotFound, cm.Code)
	assert.Equal(t, http.StatusNotFound, cm.HTTPStatus())
	assert.True(t, IsCode(err, xerr.ErrResourceNotFound))

	plain := From(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, plain.HTTPStatus())
}

func TestStatusFamilies(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, From(Forbidden("")).HTTPStatus())
	assert.Equal(t, http.StatusUnauthorized, From(Unauthenticated()).HTTPStatus())
	assert.Equal(t, http.StatusConflict, xerr.HTTPStatus(xerr.ErrInUse))
	assert.Equal(t, http.StatusBadRequest, xerr.HTTPStatus(xerr.ErrInvalidInput))
}
