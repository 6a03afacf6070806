package persist

import (
	"encoding/binary"
	"fmt"
	"math"
)

const matrixHeaderSize = 8

// encodeMatrix writes rows and dim as little-endian uint32 followed by row-major float32 values.
func encodeMatrix(rows [][]float32) ([]byte, error) {
	dim := 0
	if len(rows) > 0 {
		dim = len(rows[0])
	}
	out := make([]byte, matrixHeaderSize+4*len(rows)*dim)
	binary.LittleEndian.PutUint32(out[0:], uint32(len(rows)))
	binary.LittleEndian.PutUint32(out[4:], uint32(dim))
	offset := matrixHeaderSize
	for i, row := range rows {
		if len(row) != dim {
			return nil, fmt.Errorf("row %d has dimension %d, expected %d", i, len(row), dim)
		}
		for _, v := range row {
			binary.LittleEndian.PutUint32(out[offset:], math.Float32bits(v))
			offset += 4
		}
	}
	return out, nil
}

func decodeMatrix(data []byte) ([][]float32, error) {
	if len(data) < matrixHeaderSize {
		return nil, fmt.Errorf("matrix header truncated: %d bytes", len(data))
	}
	rows := int(binary.LittleEndian.Uint32(data[0:]))
	dim := int(binary.LittleEndian.Uint32(data[4:]))
	if expect := matrixHeaderSize + 4*rows*dim; rows < 0 || dim < 0 || expect != len(data) {
		return nil, fmt.Errorf("matrix %dx%d does not match %d bytes", rows, dim, len(data))
	}
	out := make([][]float32, rows)
	offset := matrixHeaderSize
	for i := range out {
		row := make([]float32, dim)
		for j := range row {
			row[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
			offset += 4
		}
		out[i] = row
	}
	return out, nil
}
