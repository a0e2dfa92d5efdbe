package batch

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Pipeline stages reported per document.
const (
	StageRead    = "read"
	StageProcess = "process"
	StageWrite   = "write"

	stageCount = 3
)

// Tracker tracks progress for a single document.
type Tracker interface {
	SetStage(stage string)
	Done(err error)
}

// Manager creates trackers for individual documents.
type Manager interface {
	NewTracker(index, total int, name string) Tracker
	Wait()
}

// MPBManager renders one bar per document using mpb.
type MPBManager struct {
	container *mpb.Progress
}

// NewMPBManager writes bars to out (stderr when nil).
func NewMPBManager(out io.Writer) *MPBManager {
	opts := []mpb.ContainerOption{mpb.WithWidth(40)}
	if out != nil {
		opts = append(opts, mpb.WithOutput(out))
	}
	return &MPBManager{container: mpb.New(opts...)}
}

func (m *MPBManager) NewTracker(index, total int, name string) Tracker {
	stage := &atomic.Value{}
	stage.Store("queued")
	bar := m.container.AddBar(stageCount,
		mpb.PrependDecorators(
			decor.Name(fmt.Sprintf("[%d/%d] %s ", index+1, total, name), decor.WCSyncSpaceR),
		),
		mpb.AppendDecorators(
			decor.Any(func(decor.Statistics) string {
				return stage.Load().(string)
			}),
		),
	)
	return &mpbTracker{bar: bar, stage: stage}
}

func (m *MPBManager) Wait() {
	m.container.Wait()
}

type mpbTracker struct {
	bar   *mpb.Bar
	stage *atomic.Value
	steps int64
}

func (t *mpbTracker) SetStage(stage string) {
	t.stage.Store(stage)
	t.bar.SetCurrent(t.steps)
	t.steps++
}

func (t *mpbTracker) Done(err error) {
	if err != nil {
		t.stage.Store("failed")
		t.bar.Abort(false)
		return
	}
	t.stage.Store("done")
	t.bar.SetCurrent(stageCount)
}

// NoopManager counts finished documents without rendering anything.
type NoopManager struct {
	Completed atomic.Int32
	Failed    atomic.Int32
}

func (m *NoopManager) NewTracker(index, total int, name string) Tracker {
	return &noopTracker{mgr: m}
}

func (m *NoopManager) Wait() {}

type noopTracker struct {
	mgr *NoopManager
}

func (t *noopTracker) SetStage(string) {}

func (t *noopTracker) Done(err error) {
	if err != nil {
		t.mgr.Failed.Add(1)
		return
	}
	t.mgr.Completed.Add(1)
}
