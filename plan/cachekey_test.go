package plan

import (
	"testing"

	"github.com/kbukum/graphflow/config"
	"github.com/kbukum/graphflow/operation"
)

func TestBuildCacheKeyStableAcrossOrder(t *testing.T) {
	cfg := config.EngineConfig{}
	k1 := BuildCacheKey("net", []string{"a", "b"}, []string{"y", "x"}, nil, cfg)
	k2 := BuildCacheKey("net", []string{"b", "a"}, []string{"x", "y"}, nil, cfg)
	if k1 != k2 {
		t.Errorf("BuildCacheKey should be order-independent, got %q vs %q", k1, k2)
	}
}

func TestBuildCacheKeyDiffersOnInputs(t *testing.T) {
	cfg := config.EngineConfig{}
	k1 := BuildCacheKey("net", []string{"a"}, []string{"y"}, nil, cfg)
	k2 := BuildCacheKey("net", []string{"a", "b"}, []string{"y"}, nil, cfg)
	if k1 == k2 {
		t.Error("BuildCacheKey should differ when knownInputs differ")
	}
}

func TestBuildCacheKeyDiffersOnConfig(t *testing.T) {
	k1 := BuildCacheKey("net", []string{"a"}, []string{"y"}, nil, config.EngineConfig{Evict: false})
	k2 := BuildCacheKey("net", []string{"a"}, []string{"y"}, nil, config.EngineConfig{Evict: true})
	if k1 == k2 {
		t.Error("BuildCacheKey should differ when Evict differs")
	}
}

func TestBuildCacheKeyDiffersOnPredicateIdentity(t *testing.T) {
	cfg := config.EngineConfig{}
	var pred Predicate = func(op *operation.Operation) bool { return true }
	k1 := BuildCacheKey("net", []string{"a"}, []string{"y"}, nil, cfg)
	k2 := BuildCacheKey("net", []string{"a"}, []string{"y"}, pred, cfg)
	if k1 == k2 {
		t.Error("BuildCacheKey should differ between a nil and a non-nil predicate")
	}
}
