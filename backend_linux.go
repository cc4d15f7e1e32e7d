//go:build linux

package nativetrace

import (
	"errors"
	"fmt"

	"github.com/Microsoft/go-nativetrace/internal/eventheader"
	"github.com/Microsoft/go-nativetrace/internal/shape"
	"github.com/Microsoft/go-nativetrace/pkg/event"
)

// ehBackend bridges the emitter to a user_events session. Each
// (level, keyword) pair is its own kernel tracepoint, registered lazily the
// first time an enabled check sees the pair.
type ehBackend struct {
	p *eventheader.Provider

	errHandler func(error)
}

func newBackend(cfg *config) (backend, error) {
	p, err := eventheader.NewProvider(cfg.name, cfg.groupName)
	if err != nil {
		if errors.Is(err, eventheader.ErrUnavailable) {
			// No user_events on this kernel. The emitter stays usable
			// with every emit a no-op, same as a provider nobody
			// listens to.
			cfg.errHandler(err)
			return noopBackend{}, nil
		}
		return nil, err
	}
	return &ehBackend{p: p, errHandler: cfg.errHandler}, nil
}

func (b *ehBackend) BuildDescriptor(s shape.Shape) (any, error) {
	return eventheader.NewDescriptor(s)
}

func (b *ehBackend) Enabled(level event.Level, keyword uint64) bool {
	set, err := b.p.RegisterSet(level, keyword)
	if err != nil {
		b.errHandler(fmt.Errorf("registering tracepoint: %w", err))
		return false
	}
	return set.Enabled()
}

func (b *ehBackend) Emit(desc any, fields []event.Field, md event.Metadata) error {
	d := desc.(*eventheader.Descriptor)
	set := b.p.FindSet(md.Level, md.Keyword)
	if !set.Enabled() {
		return nil
	}
	data, err := d.Encode(fields)
	if err != nil {
		return err
	}
	return b.p.WriteEvent(set, d, data, md)
}

func (b *ehBackend) Close() error {
	return b.p.Close()
}
