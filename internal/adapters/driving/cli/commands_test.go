package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/adapters/driven/storage/files"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/corpus"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/domain"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/services"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/standards"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/embedcache"
)

// fakeIngestor satisfies driving.Ingestor for command tests.
type fakeIngestor struct {
	result      domain.IngestResult
	seedResults []domain.IngestResult
	err         error
}

func (f *fakeIngestor) Ingest(_ context.Context, _ domain.DocumentRef) (domain.IngestResult, error) {
	return f.result, f.err
}

func (f *fakeIngestor) SeedDirectory(_ context.Context, _ string) ([]domain.IngestResult, error) {
	return f.seedResults, f.err
}

// fakeRetriever satisfies driving.Retriever for command tests.
type fakeRetriever struct {
	citations []domain.Citation
	err       error
}

func (f *fakeRetriever) Retrieve(_ context.Context, _ string, _ int) ([]domain.Citation, error) {
	return f.citations, f.err
}

// setupTestServices wires the package-level services to test doubles and
// returns a cleanup restoring the unconfigured state.
func setupTestServices(t *testing.T, ingestor *fakeIngestor, retriever *fakeRetriever) func() {
	t.Helper()

	store, err := files.NewUploadStore(filepath.Join(t.TempDir(), "uploads"))
	if err != nil {
		t.Fatalf("creating upload store: %v", err)
	}

	lifecycle := services.NewUploadLifecycle(
		corpus.NewIndex(),
		standards.NewRegistry(),
		embedcache.New(filepath.Join(t.TempDir(), "embeddings.json")),
		store,
		nil,
		ingestor,
	)

	Configure(ingestor, retriever, lifecycle, "")

	return func() {
		Configure(nil, nil, nil, "")
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}
}

func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeTempDoc(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("content"), 0o600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}
