//go:build windows

package etw

import (
	"sync"

	"golang.org/x/sys/windows"
)

// ETW delivers enable-state changes through a C callback. The callback
// context must not be a Go pointer, so providers are parked in an indexed
// table and the index is the context value.
var providers = providerTable{byIndex: make(map[uintptr]*Provider)}

type providerTable struct {
	mu      sync.Mutex
	next    uintptr
	byIndex map[uintptr]*Provider
}

func (t *providerTable) reserve() uintptr {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	return t.next
}

func (t *providerTable) set(idx uintptr, p *Provider) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byIndex[idx] = p
}

func (t *providerTable) get(idx uintptr) *Provider {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.byIndex[idx]
}

func (t *providerTable) remove(p *Provider) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for idx, q := range t.byIndex {
		if q == p {
			delete(t.byIndex, idx)
			return
		}
	}
}

var globalCallback = windows.NewCallback(providerCallback)

// providerCallback refreshes the provider's cached enablement whenever the
// OS reports a listener change. Readers observe the new state on their next
// Enabled check; a brief window of stale enablement is acceptable.
func providerCallback(sourceID *windows.GUID, state uint32, level uint8, matchAnyKeyword uint64, matchAllKeyword uint64, filterData uintptr, context uintptr) uintptr {
	p := providers.get(context)
	if p == nil {
		return 0
	}
	switch state {
	case eventControlCodeEnableProvider:
		p.level.Store(uint32(level))
		p.anyKeyword.Store(matchAnyKeyword)
		p.allKeyword.Store(matchAllKeyword)
		p.enabled.Store(true)
	case eventControlCodeDisableProvider:
		p.enabled.Store(false)
	}
	return 0
}
