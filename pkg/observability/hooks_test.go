package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Pipeline hooks
	p := NoopPipelineHooks{}
	p.OnEstimateStart(ctx, 24, 310)
	p.OnEstimateComplete(ctx, 24, time.Millisecond)
	p.OnPartitionStart(ctx, 24, 4)
	p.OnPartitionComplete(ctx, 4, 7.5, 12, time.Millisecond, nil)
	p.OnRenderStart(ctx, []string{"svg"})
	p.OnRenderComplete(ctx, []string{"svg"}, time.Millisecond, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "layout")
	c.OnCacheMiss(ctx, "artifact")
	c.OnCacheSet(ctx, "layout", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/v1/layout")
	h.OnResponse(ctx, "POST", "/v1/layout", 200, time.Millisecond)
}

type testPipelineHooks struct {
	NoopPipelineHooks
	partitions int
}

func (h *testPipelineHooks) OnPartitionStart(ctx context.Context, itemCount, columns int) {
	h.partitions++
}

type testCacheHooks struct {
	NoopCacheHooks
	hits int
}

func (h *testCacheHooks) OnCacheHit(ctx context.Context, keyType string) {
	h.hits++
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	// Defaults are noop
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Custom hooks take over
	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}
	Pipeline().OnPartitionStart(context.Background(), 10, 3)
	if customPipeline.partitions != 1 {
		t.Error("custom pipeline hooks should receive events")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	Cache().OnCacheHit(context.Background(), "layout")
	if customCache.hits != 1 {
		t.Error("custom cache hooks should receive events")
	}

	// Nil registration is ignored
	SetPipelineHooks(nil)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks(nil) should keep previous hooks")
	}

	// Reset restores defaults
	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset should restore noop pipeline hooks")
	}
}
