package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnLoadComplete(ctx, "tsne.json", 100, 2, nil)
	p.OnRenderStart(ctx, []string{"svg"})
	p.OnRenderComplete(ctx, []string{"svg"}, time.Second, nil)

	m := NoopMapHooks{}
	m.OnRender(100, 0, time.Millisecond)
	m.OnRenderDeferred(0, 0)
	m.OnGesture("wheel", true)
	m.OnHover("42")
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Map().(NoopMapHooks); !ok {
		t.Error("Map() should return NoopMapHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customMap := &testMapHooks{}
	SetMapHooks(customMap)
	if Map() != customMap {
		t.Error("SetMapHooks should set custom hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
	if _, ok := Map().(NoopMapHooks); !ok {
		t.Error("Reset() should restore NoopMapHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testMapHooks{}
	SetMapHooks(custom)
	SetMapHooks(nil)

	if Map() != custom {
		t.Error("SetMapHooks(nil) should be ignored")
	}

	Reset()
}

type testPipelineHooks struct{ NoopPipelineHooks }
type testMapHooks struct{ NoopMapHooks }
