package dataset

import (
	"errors"
	"fmt"
	"strings"

	"influencerdash/pkg/contracts/domain"
)

// Load sources
const (
	SourceDefault = "default"
	SourceUpload  = "upload"
)

var (
	// ErrMissingFile is wrapped when a dataset file or upload part is absent
	ErrMissingFile = errors.New("dataset file is missing")
	// ErrInvalidValue is wrapped when a cell fails to parse or falls outside its column range
	ErrInvalidValue = errors.New("invalid value")
)

// DataLoadError reports a dataset that could not be loaded as a whole
type DataLoadError struct {
	Entity domain.Entity
	Source string
	Path   string
	Row    int // 1-based data row, 0 when the failure is not row specific
	Column string
	Err    error
}

func (e *DataLoadError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "failed to load %s", e.Entity)
	if e.Path != "" {
		fmt.Fprintf(&b, " from %s", e.Path)
	}
	if e.Row > 0 {
		fmt.Fprintf(&b, " at row %d", e.Row)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " column %q", e.Column)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}

// SchemaMismatchError reports a header whose column set differs from the entity contract
type SchemaMismatchError struct {
	Entity     domain.Entity
	Missing    []string
	Unexpected []string
}

func (e *SchemaMismatchError) Error() string {
	parts := make([]string, 0, 2)
	if len(e.Missing) > 0 {
		parts = append(parts, "missing columns: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Unexpected) > 0 {
		parts = append(parts, "unexpected columns: "+strings.Join(e.Unexpected, ", "))
	}
	return fmt.Sprintf("%s schema mismatch (%s)", e.Entity, strings.Join(parts, "; "))
}
