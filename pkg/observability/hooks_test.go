package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnLoadStart(ctx, 2)
	p.OnLoadComplete(ctx, 40, time.Second, nil)
	p.OnLayoutStart(ctx, 40)
	p.OnLayoutComplete(ctx, 6, 8, time.Millisecond, nil)
	p.OnRenderStart(ctx, "out.jpg")
	p.OnRenderComplete(ctx, "out.jpg", time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "photo")
	c.OnCacheMiss(ctx, "photo")
	c.OnCacheSet(ctx, "photo", 64)

	ph := NoopPhotoHooks{}
	ph.OnDecode(ctx, "a.jpg", false, time.Millisecond, nil)
	ph.OnDraw(ctx, "a.jpg", 200, 150, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Photo().(NoopPhotoHooks); !ok {
		t.Error("Photo() should return NoopPhotoHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customPhoto := &testPhotoHooks{}
	SetPhotoHooks(customPhoto)
	if Photo() != customPhoto {
		t.Error("SetPhotoHooks should set custom hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
	if _, ok := Photo().(NoopPhotoHooks); !ok {
		t.Error("Reset() should restore NoopPhotoHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)
	SetPipelineHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}
}

type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testPhotoHooks struct{ NoopPhotoHooks }
