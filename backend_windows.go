//go:build windows

package nativetrace

import (
	"github.com/Microsoft/go-nativetrace/internal/etw"
	"github.com/Microsoft/go-nativetrace/internal/shape"
	"github.com/Microsoft/go-nativetrace/pkg/event"
)

// etwBackend bridges the emitter to a registered ETW provider. Event-level
// metadata travels in the ETW event descriptor, so the backend is a thin
// pass-through around the provider and the TraceLogging codec.
type etwBackend struct {
	p *etw.Provider
}

func newBackend(cfg *config) (backend, error) {
	id := cfg.providerID
	if !cfg.hasProviderID {
		id = etw.ProviderIDFromName(cfg.name)
	}
	p, err := etw.NewProvider(cfg.name, id, cfg.groupID)
	if err != nil {
		return nil, err
	}
	return &etwBackend{p: p}, nil
}

func (b *etwBackend) BuildDescriptor(s shape.Shape) (any, error) {
	return etw.NewDescriptor(s)
}

func (b *etwBackend) Enabled(level event.Level, keyword uint64) bool {
	return b.p.Enabled(level, keyword)
}

func (b *etwBackend) Emit(desc any, fields []event.Field, md event.Metadata) error {
	d := desc.(*etw.Descriptor)
	data, err := d.Encode(fields)
	if err != nil {
		return err
	}
	return b.p.WriteEvent(d, data, md)
}

func (b *etwBackend) Close() error {
	return b.p.Close()
}
