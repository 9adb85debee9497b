package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContiene_EscapaComodines(t *testing.T) {
	assert.Equal(t, "%cafe%", contiene("  cafe "))
	assert.Equal(t, `%50\% off%`, contiene("50% off"))
	assert.Equal(t, `%a\_b%`, contiene("a_b"))
}
