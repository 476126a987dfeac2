package assets

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spirvBytes(words ...uint32) []byte {
	b := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(b[i*4:], w)
	}
	return b
}

func TestDecodeSPIRV(t *testing.T) {
	header := []uint32{SPIRVMagic, 0x00010000, 0, 8, 0}

	code, err := DecodeSPIRV(spirvBytes(header...))
	require.NoError(t, err)
	assert.Equal(t, header, code)

	code, err = DecodeSPIRV(spirvBytes(append(header, 0x00020011, 1)...))
	require.NoError(t, err)
	assert.Len(t, code, 7)
}

func TestDecodeSPIRVRejects(t *testing.T) {
	cases := map[string][]byte{
		"empty":      nil,
		"odd length": append(spirvBytes(SPIRVMagic, 0, 0, 0, 0), 1),
		"short":      spirvBytes(SPIRVMagic, 0, 0, 0),
		"bad magic":  spirvBytes(0x03022307, 0, 0, 0, 0),
		"text":       []byte("#version 450\nvoid main() {}"),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeSPIRV(data)
			assert.ErrorIs(t, err, ErrNotSPIRV)
		})
	}
}

func TestReadSPIRV(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "vert.spv")
	require.NoError(t, os.WriteFile(good, spirvBytes(SPIRVMagic, 0x00010000, 0, 1, 0), 0o644))
	code, err := ReadSPIRV(good)
	require.NoError(t, err)
	assert.Equal(t, uint32(SPIRVMagic), code[0])

	bad := filepath.Join(dir, "frag.spv")
	require.NoError(t, os.WriteFile(bad, []byte("nope"), 0o644))
	_, err = ReadSPIRV(bad)
	assert.ErrorIs(t, err, ErrNotSPIRV)
	assert.Contains(t, err.Error(), bad)

	_, err = ReadSPIRV(filepath.Join(dir, "missing.spv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
