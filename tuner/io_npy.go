// tuner/io_npy.go
package tuner

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"

	"chess-tuner/linalg"
)

const (
	designXFile = "design_x.npy"
	designYFile = "design_y.npy"
)

// SaveDesignNpy writes X and Y as NumPy arrays into dir.
func SaveDesignNpy(dir string, d *Design) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := writeNpy(filepath.Join(dir, designXFile), d.X); err != nil {
		return err
	}
	return writeNpy(filepath.Join(dir, designYFile), d.Y)
}

// LoadDesignNpy reads back what SaveDesignNpy wrote. The arrays carry no
// column names, so they are rebuilt from the column count.
func LoadDesignNpy(dir string) (*Design, error) {
	x, err := readNpy(filepath.Join(dir, designXFile))
	if err != nil {
		return nil, err
	}
	y, err := readNpy(filepath.Join(dir, designYFile))
	if err != nil {
		x.Release()
		return nil, err
	}
	if y.Rows() != x.Rows() || y.Cols() != 1 {
		x.Release()
		y.Release()
		return nil, fmt.Errorf("tuner: %s: labels %dx%d do not match %d rows", dir, y.Rows(), y.Cols(), x.Rows())
	}
	return &Design{X: x, Y: y, Names: columnNames(x.Cols())}, nil
}

func writeNpy(path string, m *linalg.Matrix) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	r, c := m.Dims()
	return npyio.Write(f, mat.NewDense(r, c, m.RawData()))
}

func readNpy(path string) (*linalg.Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("tuner: %s: %w", path, err)
	}
	var dense mat.Dense
	if err := r.Read(&dense); err != nil {
		return nil, fmt.Errorf("tuner: %s: %w", path, err)
	}
	rows, cols := dense.Dims()
	data := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		data = append(data, dense.RawRowView(i)...)
	}
	return linalg.NewFromSlice(rows, cols, data)
}
