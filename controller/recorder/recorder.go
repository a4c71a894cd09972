// Package recorder persists the record of every finished session.
package recorder

import (
	"errors"

	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/stats"
)

type Recorder interface {
	Record(s stats.SessionStats) error
	Close() error
}

// Multi hands every record to all of its recorders, one failing does not stop the others
type Multi []Recorder

func (m Multi) Record(s stats.SessionStats) error {
	var errs []error
	for _, r := range m {
		if err := r.Record(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, r := range m {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
