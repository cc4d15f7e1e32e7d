//go:build linux

package eventheader

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/Microsoft/go-nativetrace/pkg/event"
)

const userEventsData = "/sys/kernel/tracing/user_events_data"

// user_events registration ABI (include/uapi/linux/user_events.h).
// The ioctl commands take a pointer, so the encoded size is 8.
const (
	diagIOCSReg   = (3 << 30) | (8 << 16) | ('*' << 8) | 0 // _IOWR('*', 0, struct user_reg*)
	diagIOCSUnreg = (1 << 30) | (8 << 16) | ('*' << 8) | 2 // _IOW('*', 2, struct user_unreg*)
)

// userReg mirrors struct user_reg; the kernel reads size to know which
// revision it is handed.
type userReg struct {
	size       uint32
	enableBit  uint8
	enableSize uint8
	flags      uint16
	enableAddr uint64
	nameArgs   uint64
	writeIndex uint32
}

type userUnreg struct {
	size        uint32
	disableBit  uint8
	reserved    uint8
	reserved2   uint16
	disableAddr uint64
}

// EventSet is one registered (level, keyword) tracepoint. The kernel flips
// a bit in the enable word whenever a trace session attaches, so Enabled is
// a single atomic load.
type EventSet struct {
	writeIndex uint32
	enable     *uint32
}

// Enabled reports whether any listener is attached to this tracepoint.
func (s *EventSet) Enabled() bool {
	return s != nil && atomic.LoadUint32(s.enable)&1 != 0
}

type setKey struct {
	level   event.Level
	keyword uint64
}

// Provider wraps the user_events session file and the tracepoints
// registered through it. Sets register lazily on first use of a
// (level, keyword) pair; registration is the only blocking interaction.
type Provider struct {
	name  string
	group string

	file *os.File

	mu   sync.RWMutex
	sets map[setKey]*EventSet
}

// NewProvider validates the names and opens the user_events session.
// A kernel without user_events support reports ErrUnavailable; callers
// treat that as "no listener, ever" rather than a fatal condition.
func NewProvider(name, group string) (*Provider, error) {
	if err := ValidateProviderName(name, group); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(userEventsData, os.O_RDWR, 0)
	if err != nil {
		if os.IsNotExist(err) || os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrUnavailable, err)
		}
		return nil, fmt.Errorf("opening %s: %w", userEventsData, err)
	}
	return &Provider{
		name:  name,
		group: group,
		file:  f,
		sets:  make(map[setKey]*EventSet),
	}, nil
}

// FindSet returns the registered set for the pair, or nil.
func (p *Provider) FindSet(level event.Level, keyword uint64) *EventSet {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sets[setKey{level, keyword}]
}

// RegisterSet returns the set for the pair, registering the tracepoint on
// first use. Registration failures are returned but do not poison other
// sets.
func (p *Provider) RegisterSet(level event.Level, keyword uint64) (*EventSet, error) {
	if s := p.FindSet(level, keyword); s != nil {
		return s, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.file == nil {
		return nil, ErrNotRegistered
	}
	k := setKey{level, keyword}
	if s, ok := p.sets[k]; ok {
		return s, nil
	}

	// EventHeader events share a fixed arg layout; the self-describing
	// payload carries the real schema.
	cmd := TracepointName(p.name, p.group, level, keyword) +
		" u8 eventheader_flags; u8 version; u16 id; u16 tag; u8 opcode; u8 level"
	cmdBytes, err := unix.BytePtrFromString(cmd)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, cmd)
	}

	s := &EventSet{enable: new(uint32)}
	reg := userReg{
		size:       28, // packed struct user_reg
		enableBit:  0,
		enableSize: 4,
		enableAddr: uint64(uintptr(unsafe.Pointer(s.enable))),
		nameArgs:   uint64(uintptr(unsafe.Pointer(cmdBytes))),
	}
	if err := ioctl(p.file.Fd(), diagIOCSReg, unsafe.Pointer(&reg)); err != nil {
		return nil, fmt.Errorf("registering tracepoint %s: %w", cmd, err)
	}
	s.writeIndex = reg.writeIndex

	p.sets[k] = s
	return s, nil
}

// WriteEvent assembles the EventHeader blob for the set and hands it to the
// kernel: iovec 0 is the write index, iovec 1 the event.
func (p *Provider) WriteEvent(set *EventSet, d *Descriptor, data []byte, md event.Metadata) error {
	if p.file == nil {
		return ErrNotRegistered
	}

	var idx [4]byte
	binary.LittleEndian.PutUint32(idx[:], set.writeIndex)

	blob := make([]byte, 0, 8+8+len(d.meta)+len(data)+40)
	blob = AppendEvent(blob, d, data, md)

	_, err := unix.Writev(int(p.file.Fd()), [][]byte{idx[:], blob})
	if err != nil {
		return fmt.Errorf("writing event %s: %w", d.name, err)
	}
	return nil
}

// Close unregisters every set and closes the session.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.file == nil {
		return nil
	}
	for _, s := range p.sets {
		unreg := userUnreg{
			size:        16, // packed struct user_unreg
			disableBit:  0,
			disableAddr: uint64(uintptr(unsafe.Pointer(s.enable))),
		}
		_ = ioctl(p.file.Fd(), diagIOCSUnreg, unsafe.Pointer(&unreg))
	}
	err := p.file.Close()
	p.file = nil
	p.sets = nil
	return err
}

func ioctl(fd uintptr, cmd uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, cmd, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}
