package assets

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// SPIRVMagic is the first word of every SPIR-V module
const SPIRVMagic = 0x07230203

// spirvHeaderWords is the length of the SPIR-V module header
const spirvHeaderWords = 5

var ErrNotSPIRV = errors.New("not a SPIR-V module")

// ReadSPIRV reads a compiled shader and returns its words
func ReadSPIRV(path string) ([]uint32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read shader: %w", err)
	}
	code, err := DecodeSPIRV(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return code, nil
}

// DecodeSPIRV checks that data holds a SPIR-V module and converts it to words
func DecodeSPIRV(data []byte) ([]uint32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("length %d is not a multiple of 4: %w", len(data), ErrNotSPIRV)
	}
	if len(data) < spirvHeaderWords*4 {
		return nil, fmt.Errorf("length %d is shorter than the header: %w", len(data), ErrNotSPIRV)
	}

	code := make([]uint32, len(data)/4)
	for i := range code {
		code[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	if code[0] != SPIRVMagic {
		return nil, fmt.Errorf("bad magic number %#08x: %w", code[0], ErrNotSPIRV)
	}
	return code, nil
}
