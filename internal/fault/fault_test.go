package fault

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Code(""), CodeOf(nil))
	assert.Equal(t, CodeNotFound, CodeOf(NotFound("hoja %d", 7)))
	assert.Equal(t, CodeConflict, CodeOf(Conflict("ocupado")))
	assert.Equal(t, CodeUnknown, CodeOf(errors.New("ajeno")))
}

func TestCodeSurvivesWrapping(t *testing.T) {
	t.Parallel()

	inner := Forbidden("no es el dueño")
	outer := fmt.Errorf("manejando petición: %w", inner)

	assert.Equal(t, CodeForbidden, CodeOf(outer))
	assert.True(t, HasCode(outer, CodeForbidden))
	assert.False(t, HasCode(outer, CodeConflict))
}

func TestWrapKeepsCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk full")
	err := Storage(cause, "creando hoja")

	require.Error(t, err)
	assert.Equal(t, CodeStorage, CodeOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "STORAGE_ERROR")
	assert.Contains(t, err.Error(), "disk full")
}

func TestWrapNilCause(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Wrap(nil, CodeStorage, "no pasó nada"))
}

func TestIsMatchesByCode(t *testing.T) {
	t.Parallel()

	err := Conflict("estación 3 no disponible")
	assert.True(t, errors.Is(err, &Error{Code: CodeConflict}))
	assert.False(t, errors.Is(err, &Error{Code: CodeNotFound}))
}
