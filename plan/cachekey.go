package plan

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/kbukum/graphflow/config"
)

// BuildCacheKey computes a canonical, byte-stable key for a compile request:
// same network identity, same knownInputs/askedOutputs (order-independent),
// same predicate identity and same relevant config options always hash to
// the same key, so the plan cache can serve a hit instead of recompiling.
func BuildCacheKey(networkName string, knownInputs, askedOutputs []string, predicate Predicate, cfg config.EngineConfig) string {
	ins := append([]string(nil), knownInputs...)
	outs := append([]string(nil), askedOutputs...)
	sort.Strings(ins)
	sort.Strings(outs)

	var b strings.Builder
	b.WriteString(networkName)
	b.WriteByte('|')
	b.WriteString(strings.Join(ins, ","))
	b.WriteByte('|')
	b.WriteString(strings.Join(outs, ","))
	b.WriteByte('|')
	if predicate != nil {
		fmt.Fprintf(&b, "pred:%x", reflect.ValueOf(predicate).Pointer())
	}
	b.WriteByte('|')
	fmt.Fprintf(&b, "evict:%v,skipevict:%v,parallel:%d", cfg.Evict, cfg.SkipEvictions, cfg.ParallelTasks)

	sum := blake2b.Sum256([]byte(b.String()))
	return fmt.Sprintf("%x", sum)
}
