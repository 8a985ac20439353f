package testkit

import (
	"context"

	"studyviz/adapters/ingest"
	"studyviz/domain/dataset"
	"studyviz/internal"
	"studyviz/ports"
)

// TestKit resolves the dataset source of the server: a configured file, or
// the synthetic student dataset when none is set.
type TestKit struct {
	filePath  string
	sheet     string
	generator StudentGeneratorConfig
	log       *internal.Logger
}

// NewTestKit creates a test kit. An empty filePath selects synthetic data.
func NewTestKit(filePath, sheet string, generator StudentGeneratorConfig) *TestKit {
	return &TestKit{
		filePath:  filePath,
		sheet:     sheet,
		generator: generator,
		log:       internal.DefaultLogger.WithComponent("TestKit"),
	}
}

// DatasetReader returns the reader for the configured source.
func (t *TestKit) DatasetReader() ports.DatasetReader {
	if t.filePath != "" {
		t.log.Info("Using dataset file %s", t.filePath)
		return ingest.NewFileReader(t.filePath, t.sheet)
	}
	t.log.Info("No dataset file configured, generating %d synthetic students (seed %d)",
		t.generator.StudentCount, t.generator.Seed)
	return NewStudentDataGenerator(t.generator)
}

// LoadStore reads the configured source into a store.
func (t *TestKit) LoadStore(ctx context.Context) (*dataset.Store, error) {
	table, err := t.DatasetReader().ReadTable(ctx)
	if err != nil {
		return nil, err
	}
	return dataset.NewStore(table)
}
