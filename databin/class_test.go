package databin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClass(t *testing.T) {
	assert := assert.New(t)

	for c := Class(0); c <= MaxClass; c++ {
		assert.True(c.Valid())
		assert.Equal(c&1 == 1, c.HasAux(), c.String())
	}
	assert.False(Class(9).Valid())

	assert.Equal(ClassPrecinct, ClassExtPrecinct.Base())
	assert.Equal(ClassTile, ClassExtTile.Base())
	assert.Equal(ClassMainHeader, ClassMainHeader.Base())

	assert.Equal([]byte{0, 0, 0, 0, 0, 0, 0, 1, 2}, ID{ClassExtPrecinct, 0x102}.Bytes())
	assert.Equal("precinct:258", ID{ClassExtPrecinct, 0x102}.String())
}
