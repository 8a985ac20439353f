package ports

import (
	"context"

	"studyviz/domain/dataset"
)

// DatasetReader loads a normalized table from a data source (file, upload).
type DatasetReader interface {
	ReadTable(ctx context.Context) (dataset.Table, error)
}
