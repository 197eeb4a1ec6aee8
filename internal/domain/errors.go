package domain

import (
	"errors"
	"fmt"
)

// Stage identifies where in the pipeline a failure occurred
type Stage string

const (
	StageSchema    Stage = "schema"
	StageExtract   Stage = "extract"
	StageTransform Stage = "transform"
	StageLoad      Stage = "load"
	StageQuery     Stage = "query"
)

// Error kinds. Match them with errors.Is.
var (
	ErrSchema     = errors.New("schema error")
	ErrExtraction = errors.New("extraction error")
	ErrTransform  = errors.New("transform error")
	ErrLoad       = errors.New("load error")
	ErrQuery      = errors.New("query error")
)

// StageError carries the kind, the failing stage and the record set involved
type StageError struct {
	Kind    error
	Stage   Stage
	Dataset string
	Err     error
}

func (e *StageError) Error() string {
	if e.Dataset == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Kind, e.Dataset, e.Err)
}

func (e *StageError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func SchemaError(table string, err error) error {
	return &StageError{Kind: ErrSchema, Stage: StageSchema, Dataset: table, Err: err}
}

func ExtractionError(dataset Dataset, err error) error {
	return &StageError{Kind: ErrExtraction, Stage: StageExtract, Dataset: string(dataset), Err: err}
}

func TransformError(dataset Dataset, err error) error {
	return &StageError{Kind: ErrTransform, Stage: StageTransform, Dataset: string(dataset), Err: err}
}

func LoadError(table string, err error) error {
	return &StageError{Kind: ErrLoad, Stage: StageLoad, Dataset: table, Err: err}
}

func QueryError(report string, err error) error {
	return &StageError{Kind: ErrQuery, Stage: StageQuery, Dataset: report, Err: err}
}

// StageOf returns the stage of the first StageError in err's chain
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
