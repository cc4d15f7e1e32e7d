//go:build windows

package etw

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/Microsoft/go-winio/pkg/guid"
	"golang.org/x/sys/windows"

	"github.com/Microsoft/go-nativetrace/pkg/event"
)

//go:generate go run github.com/Microsoft/go-winio/tools/mkwinsyscall -output zsyscall_windows.go provider_windows.go

//sys eventRegister(providerId *windows.GUID, callback uintptr, callbackContext uintptr, providerHandle *uint64) (win32err error) = advapi32.EventRegister
//sys eventUnregister(providerHandle uint64) (win32err error) = advapi32.EventUnregister
//sys eventWriteTransfer(providerHandle uint64, descriptor *eventDescriptor, activityID *windows.GUID, relatedActivityID *windows.GUID, dataDescriptorCount uint32, dataDescriptors *eventDataDescriptor) (win32err error) = advapi32.EventWriteTransfer

// eventDescriptor is the Win32 EVENT_DESCRIPTOR.
type eventDescriptor struct {
	id      uint16
	version uint8
	channel uint8
	level   uint8
	opcode  uint8
	task    uint16
	keyword uint64
}

// eventDataDescriptor is the Win32 EVENT_DATA_DESCRIPTOR; the low byte of
// the reserved field selects provider-traits (2) or event-metadata (1)
// descriptors for TraceLogging events.
type eventDataDescriptor struct {
	ptr      uint64
	size     uint32
	dataType uint8
	reserved [3]uint8
}

const (
	dataTypeUserData uint8 = iota
	dataTypeEventMetadata
	dataTypeProviderMetadata
)

// Provider is a registered ETW provider session. Its enablement state is
// refreshed by the ETW enable callback whenever a listener changes, so
// Enabled never needs a kernel round trip.
type Provider struct {
	ID guid.GUID

	handle uint64
	traits []byte

	enabled    atomic.Bool
	level      atomic.Uint32
	anyKeyword atomic.Uint64
	allKeyword atomic.Uint64
}

const (
	// ETW enable callback control codes.
	eventControlCodeDisableProvider = 0
	eventControlCodeEnableProvider  = 1

	providerTraitTypeGroup uint8 = 1
)

// NewProvider registers the named provider, optionally joined to a provider
// group GUID. Registration is the only blocking OS interaction the backend
// performs; everything after is a non-blocking write.
func NewProvider(name string, id guid.GUID, group *guid.GUID) (*Provider, error) {
	p := &Provider{
		ID:     id,
		traits: providerTraits(name, group),
	}

	idx := providers.reserve()
	providers.set(idx, p)

	winguid := windows.GUID(id)
	if err := eventRegister(&winguid, globalCallback, idx, &p.handle); err != nil {
		providers.remove(p)
		return nil, fmt.Errorf("registering ETW provider %s: %w", name, err)
	}
	return p, nil
}

// providerTraits builds the TraceLogging provider traits blob: total size,
// NUL-terminated provider name, then optional typed traits.
func providerTraits(name string, group *guid.GUID) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0})
	buf.WriteString(name)
	buf.WriteByte(0)
	if group != nil {
		// group trait: u16 size, u8 type, 16-byte GUID
		buf.Write([]byte{16 + 3, 0, providerTraitTypeGroup})
		g := group.ToWindowsArray()
		buf.Write(g[:])
	}
	b := buf.Bytes()
	binary.LittleEndian.PutUint16(b[:2], uint16(len(b)))
	return b
}

// Enabled reports whether any session is listening for the level and
// keywords. It is two atomic loads and is meant to be checked before any
// encoding work.
func (p *Provider) Enabled(level event.Level, keyword uint64) bool {
	if !p.enabled.Load() {
		return false
	}
	if l := p.level.Load(); l != 0 && uint32(level) > l {
		return false
	}
	if keyword == 0 {
		return true
	}
	any := p.anyKeyword.Load()
	all := p.allKeyword.Load()
	return (any == 0 || keyword&any != 0) && keyword&all == all
}

// WriteEvent writes an encoded event. The three data descriptors carry the
// provider traits, the descriptor's self-describing metadata, and the field
// data; header metadata (level, keyword, opcode, activity IDs) travels in
// the event descriptor and the transfer call, never in the payload.
func (p *Provider) WriteEvent(d *Descriptor, data []byte, md event.Metadata) error {
	if p.handle == 0 {
		return ErrNotRegistered
	}

	desc := eventDescriptor{
		channel: channelTraceLogging,
		level:   uint8(md.Level),
		opcode:  uint8(md.Opcode),
		keyword: md.Keyword,
	}

	dds := [3]eventDataDescriptor{
		newDataDescriptor(dataTypeProviderMetadata, p.traits),
		newDataDescriptor(dataTypeEventMetadata, d.Metadata()),
		newDataDescriptor(dataTypeUserData, data),
	}

	var act, related *windows.GUID
	if md.ActivityID.IsSet() {
		act = guidFromActivityID(md.ActivityID)
	}
	if md.RelatedActivityID.IsSet() {
		related = guidFromActivityID(md.RelatedActivityID)
	}

	return eventWriteTransfer(p.handle, &desc, act, related, uint32(len(dds)), &dds[0])
}

// Close unregisters the provider. Writes after Close fail with
// ErrNotRegistered.
func (p *Provider) Close() error {
	if p.handle == 0 {
		return nil
	}
	providers.remove(p)
	err := eventUnregister(p.handle)
	p.handle = 0
	if err != nil {
		return fmt.Errorf("unregistering ETW provider: %w", err)
	}
	return nil
}

func newDataDescriptor(t uint8, b []byte) eventDataDescriptor {
	dd := eventDataDescriptor{
		size:     uint32(len(b)),
		dataType: t,
	}
	if len(b) > 0 {
		dd.ptr = uint64(uintptr(unsafe.Pointer(&b[0])))
	}
	return dd
}

// guidFromActivityID converts the little-endian activity bytes to a GUID
// for EventWriteTransfer. The marker byte is part of the ID on the wire;
// consumers only require uniqueness, not RFC 4122 form.
func guidFromActivityID(a event.ActivityID) *windows.GUID {
	g := windows.GUID{
		Data1: binary.LittleEndian.Uint32(a[0:4]),
		Data2: binary.LittleEndian.Uint16(a[4:6]),
		Data3: binary.LittleEndian.Uint16(a[6:8]),
	}
	copy(g.Data4[:], a[8:16])
	return &g
}
