package quad

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Saitsuno03/pixelgenerator/internal/app"
	"github.com/Saitsuno03/pixelgenerator/internal/assets"
)

var _ app.IGraphicsModule = (*QuadModule)(nil)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, assets.QuadVertexShader, opts.VertexShader)
	assert.Equal(t, assets.QuadFragmentShader, opts.FragmentShader)
	assert.Equal(t, assets.ReferenceTexture, opts.Texture)
}

func TestStagingPoolSize(t *testing.T) {
	assert.Equal(t, uint64(minStagingPoolSize), stagingPoolSize(64*64*4))
	assert.Equal(t, uint64(minStagingPoolSize), stagingPoolSize(0))

	uhd := 3840 * 2160 * 4
	assert.Equal(t, uint64(uhd+stagingSlack), stagingPoolSize(uhd))
	assert.GreaterOrEqual(t, stagingPoolSize(uhd), uint64(uhd))
}
