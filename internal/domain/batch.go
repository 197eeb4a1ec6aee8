package domain

import "slices"

// RecordSet is the tabular view of a batch the warehouse loader consumes
type RecordSet interface {
	Dataset() Dataset
	Columns() []string
	Len() int
	Row(i int) any
}

// Batch is an ordered, uniform-schema set of records of one dataset.
// Columns lists the columns actually present, in order.
type Batch[T any] struct {
	Set     Dataset
	Cols    []string
	Records []T
}

// NewBatch creates a batch, copying the column list
func NewBatch[T any](dataset Dataset, columns []string, records []T) Batch[T] {
	return Batch[T]{
		Set:     dataset,
		Cols:    slices.Clone(columns),
		Records: records,
	}
}

func (b Batch[T]) Dataset() Dataset  { return b.Set }
func (b Batch[T]) Columns() []string { return b.Cols }
func (b Batch[T]) Len() int          { return len(b.Records) }
func (b Batch[T]) Row(i int) any     { return b.Records[i] }

// HasColumn reports whether the batch carries the named column
func (b Batch[T]) HasColumn(name string) bool {
	return slices.Contains(b.Cols, name)
}

// MissingColumns returns the names from required that the batch lacks
func (b Batch[T]) MissingColumns(required []string) []string {
	var missing []string
	for _, name := range required {
		if !b.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	return missing
}
