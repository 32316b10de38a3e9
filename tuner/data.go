// tuner/data.go
package tuner

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dylhunn/dragontoothmg"
)

type LoadOptions struct {
	CSV     bool // comma separated instead of tab separated
	MaxRows int  // 0 = all
}

type LoadStats struct {
	Lines   int
	Skipped int
}

func parseLabel(s string) (float64, error) {
	switch s {
	case "1-0":
		return 1.0, nil
	case "0-1":
		return 0.0, nil
	case "1/2-1/2", "1/2", "0.5":
		return 0.5, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f < 0 || f > 1 {
			return 0, fmt.Errorf("label out of [0,1]: %v", f)
		}
		return f, nil
	}
	return 0, fmt.Errorf("cannot parse label: %q", s)
}

const pieceChars = "pnbrqkPNBRQK"

// parseBoard checks the placement field and hands the FEN to dragontoothmg.
// Missing castling, en passant and clock fields (EPD style) are filled in.
func parseBoard(fen string) (b dragontoothmg.Board, err error) {
	fields := strings.Fields(fen)
	if len(fields) < 2 {
		return b, fmt.Errorf("bad FEN: %q", fen)
	}
	if fields[1] != "w" && fields[1] != "b" {
		return b, fmt.Errorf("bad side to move in FEN: %q", fen)
	}

	// board ranks 8..1
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return b, fmt.Errorf("bad board ranks: %q", fen)
	}
	for _, r := range ranks {
		file := 0
		for i := 0; i < len(r); i++ {
			ch := r[i]
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			if strings.IndexByte(pieceChars, ch) < 0 {
				return b, fmt.Errorf("bad piece char: %c", ch)
			}
			file++
		}
		if file != 8 {
			return b, fmt.Errorf("bad file count in rank %q", r)
		}
	}

	defaults := []string{"", "", "-", "-", "0", "1"}
	for len(fields) < 6 {
		fields = append(fields, defaults[len(fields)])
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("bad FEN %q: %v", fen, r)
		}
	}()
	return dragontoothmg.ParseFen(strings.Join(fields[:6], " ")), nil
}

// splitRecord pulls FEN and label out of one input record. Besides two
// column TSV/CSV it accepts single-field lines such as "<FEN> [0.5]" or a
// full six-field FEN followed by the label.
func splitRecord(rec []string) (fen, lab string, ok bool) {
	switch {
	case len(rec) >= 2:
		return strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1]), true
	case len(rec) == 1:
		raw := strings.TrimSpace(rec[0])
		li := strings.LastIndex(raw, "[")
		rj := strings.LastIndex(raw, "]")
		if li >= 0 && rj > li {
			lab = strings.Trim(strings.TrimSpace(raw[li+1:rj]), `"`)
			return strings.TrimSpace(raw[:li]), lab, true
		}
		parts := strings.Fields(raw)
		if len(parts) >= 7 {
			return strings.Join(parts[:6], " "), parts[len(parts)-1], true
		}
	}
	return "", "", false
}

// ReadDataset parses samples from r. Malformed lines are skipped and counted.
func ReadDataset(r io.Reader, opts LoadOptions) ([]Sample, LoadStats, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.Comma = '\t'
	if opts.CSV {
		cr.Comma = ','
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var (
		out   []Sample
		stats LoadStats
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read error line %d: %w", stats.Lines+1, err)
		}
		stats.Lines++
		fen, lab, ok := splitRecord(rec)
		if !ok {
			stats.Skipped++
			continue
		}
		y, err := parseLabel(lab)
		if err != nil {
			stats.Skipped++
			continue
		}
		b, err := parseBoard(fen)
		if err != nil {
			stats.Skipped++
			continue
		}
		out = append(out, Sample{FEN: fen, Board: b, Label: y})
		if opts.MaxRows > 0 && len(out) >= opts.MaxRows {
			break
		}
	}
	return out, stats, nil
}

func LoadDataset(path string, opts LoadOptions) ([]Sample, LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, err
	}
	defer f.Close()
	return ReadDataset(f, opts)
}
