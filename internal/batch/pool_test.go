package batch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/pgzip"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yashubustudio/hccmapper/hcc"
)

type failingProcessor struct {
	fail string
	next Processor
}

func (f failingProcessor) Process(ctx context.Context, name, text string) (*hcc.Report, error) {
	if name == f.fail {
		return nil, errors.New("boom")
	}
	return f.next.Process(ctx, name, text)
}

func writeDocs(t *testing.T, dir string, docs map[string]string) []string {
	t.Helper()
	for name, text := range docs {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644))
	}
	paths, err := hcc.ListDocuments(dir)
	require.NoError(t, err)
	return paths
}

func TestPoolRun(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	paths := writeDocs(t, in, map[string]string{
		"a.txt": "Patient has diabetes type 2",
		"b.txt": "ICD-10: E11.9",
		"c.txt": "Patient underwent colonoscopy",
	})
	svc := hcc.NewService(hcc.Config{}, nil, zerolog.Nop())
	progress := &NoopManager{}
	pool := &Pool{
		Workers:   2,
		Processor: svc,
		OutputDir: out,
		Progress:  progress,
		Logger:    zerolog.Nop(),
	}

	results := pool.Run(context.Background(), paths)
	require.Len(t, results, 3)
	assert.Zero(t, Failed(results))
	assert.Equal(t, int32(3), progress.Completed.Load())

	for i, name := range []string{"a", "b", "c"} {
		assert.Equal(t, name, results[i].Name)
		assert.Equal(t, name, results[i].Report.DocumentName)
		assert.FileExists(t, filepath.Join(out, name+".json"))
	}
	assert.Equal(t, "HCC 19", results[0].Report.HCCCodes[0].HCCCode)
	assert.Equal(t, "ICD: e11.9", results[1].Report.HCCCodes[0].HCCCode)
}

func TestPoolIsolatesFailures(t *testing.T) {
	in := t.TempDir()
	paths := writeDocs(t, in, map[string]string{
		"good.txt": "asthma",
		"bad.txt":  "asthma",
	})
	paths = append(paths, filepath.Join(in, "missing.txt"))
	progress := &NoopManager{}
	pool := &Pool{
		Workers:   4,
		Processor: failingProcessor{fail: "bad", next: hcc.NewService(hcc.Config{}, nil, zerolog.Nop())},
		Progress:  progress,
		Logger:    zerolog.Nop(),
	}

	results := pool.Run(context.Background(), paths)
	require.Len(t, results, 3)
	assert.Error(t, results[0].Err)
	assert.NoError(t, results[1].Err)
	assert.Empty(t, results[1].OutputPath)
	assert.Error(t, results[2].Err)
	assert.Equal(t, 2, Failed(results))
	assert.Equal(t, int32(1), progress.Completed.Load())
	assert.Equal(t, int32(2), progress.Failed.Load())
}

func TestPoolCancelled(t *testing.T) {
	in := t.TempDir()
	paths := writeDocs(t, in, map[string]string{"a.txt": "asthma"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := &Pool{Workers: 1, Processor: hcc.NewService(hcc.Config{}, nil, zerolog.Nop()), Logger: zerolog.Nop()}
	results := pool.Run(ctx, paths)
	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
}

func TestMPBManager(t *testing.T) {
	var buf bytes.Buffer
	m := NewMPBManager(&buf)
	ok := m.NewTracker(0, 2, "a")
	ok.SetStage(StageRead)
	ok.SetStage(StageProcess)
	ok.Done(nil)
	failed := m.NewTracker(1, 2, "b")
	failed.SetStage(StageRead)
	failed.Done(errors.New("x"))
	m.Wait()
}

func TestReportNames(t *testing.T) {
	names := reportNames([]string{"in/a-2.txt", "in/a.gz", "in/a.txt", "in/a.txt.gz", "in/b.txt"})
	assert.Equal(t, []string{"a-2", "a", "a-3", "a-4", "b"}, names)
}

func TestPoolSeparatesSameNamedDocuments(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	var gz bytes.Buffer
	zw := pgzip.NewWriter(&gz)
	_, err := zw.Write([]byte("COPD"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(filepath.Join(in, "visit.gz"), gz.Bytes(), 0o644))
	paths := writeDocs(t, in, map[string]string{"visit.txt": "heart failure"})
	require.Len(t, paths, 2)

	pool := &Pool{
		Workers:   2,
		Processor: hcc.NewService(hcc.Config{}, nil, zerolog.Nop()),
		OutputDir: out,
		Logger:    zerolog.Nop(),
	}
	results := pool.Run(context.Background(), paths)
	require.Len(t, results, 2)
	assert.Zero(t, Failed(results))
	assert.NotEqual(t, results[0].OutputPath, results[1].OutputPath)
	assert.FileExists(t, filepath.Join(out, "visit.json"))
	assert.FileExists(t, filepath.Join(out, "visit-2.json"))
	assert.Equal(t, "visit", results[0].Report.DocumentName)
	assert.Equal(t, "visit", results[1].Report.DocumentName)
}
