package recorder

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/stats"
)

var (
	senderHeader = []string{
		"Stego-packets sent",
		"Duration of Stegocommunication (ms)",
		"Average Injection Time (ms)",
		"Bandwidth (bits/s)",
	}
	receiverHeader = []string{
		"Stego-packets received",
		"Duration of Stegocommunication (ms)",
		"Average Exfiltration Time (ms)",
		"Bandwidth (bits/s)",
		"Failures",
		"Successfully transmitted Message (%)",
	}
)

// CSVRecorder appends one row per session to results_<field>_<symbols>_<role>.csv.
// The header is written when the file is created, so runs with the same
// payload and role accumulate in one file.
type CSVRecorder struct {
	dir string
}

func NewCSVRecorder(dir string) (*CSVRecorder, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("recorder: results directory: %w", err)
	}
	return &CSVRecorder{dir: dir}, nil
}

func FileName(s stats.SessionStats) string {
	return "results_" + s.Field + "_" + strconv.Itoa(s.Expected) + "_" + string(s.Role) + ".csv"
}

func (r *CSVRecorder) Path(s stats.SessionStats) string {
	return filepath.Join(r.dir, FileName(s))
}

func (r *CSVRecorder) Record(s stats.SessionStats) error {
	path := r.Path(s)
	_, err := os.Stat(path)
	created := errors.Is(err, fs.ErrNotExist)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("recorder: open %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if created {
		if s.Role == stats.Sender {
			w.Write(senderHeader)
		} else {
			w.Write(receiverHeader)
		}
	}
	w.Write(row(s))
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("recorder: write %s: %w", path, err)
	}
	return f.Close()
}

func (r *CSVRecorder) Close() error {
	return nil
}

func row(s stats.SessionStats) []string {
	out := []string{
		strconv.Itoa(s.Symbols),
		formatFloat(s.DurationMs()),
		formatFloat(s.AvgProcessingMs()),
		formatFloat(s.Bandwidth()),
	}
	if s.Role == stats.Receiver {
		out = append(out, strconv.Itoa(s.Failures), formatFloat(s.PercentCorrect()))
	}
	return out
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
