package etw

import (
	"crypto/sha1" //nolint:gosec // not used for security purposes
	"encoding/binary"

	"github.com/Microsoft/go-winio/pkg/guid"
)

// namespaceID is the fixed namespace GUID used by the EventSource /
// TraceLogging convention for hashing a provider name into a provider ID
// ({482C2DB2-C390-47C8-87F8-1A15BFC130FB}).
var namespaceID = guid.GUID{
	Data1: 0x482c2db2,
	Data2: 0xc390,
	Data3: 0x47c8,
	Data4: [8]byte{0x87, 0xf8, 0x1a, 0x15, 0xbf, 0xc1, 0x30, 0xfb},
}

// ProviderIDFromName hashes a provider name into a GUID with the standard
// algorithm: SHA-1 over the big-endian namespace GUID and the upper-cased
// UTF-16BE name, with the version nibble forced to 5. Tools like traceview
// and PerfView derive the same ID from the name.
func ProviderIDFromName(name string) guid.GUID {
	buf := make([]byte, 0, 16+2*len(name))

	var ns [16]byte
	binary.BigEndian.PutUint32(ns[0:4], namespaceID.Data1)
	binary.BigEndian.PutUint16(ns[4:6], namespaceID.Data2)
	binary.BigEndian.PutUint16(ns[6:8], namespaceID.Data3)
	copy(ns[8:], namespaceID.Data4[:])
	buf = append(buf, ns[:]...)

	for _, r := range name {
		c := r
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		buf = append(buf, byte(c>>8), byte(c))
	}

	sum := sha1.Sum(buf) //nolint:gosec

	g := guid.GUID{
		Data1: binary.BigEndian.Uint32(sum[0:4]),
		Data2: binary.BigEndian.Uint16(sum[4:6]),
		Data3: binary.BigEndian.Uint16(sum[6:8]),
	}
	copy(g.Data4[:], sum[8:16])
	g.Data3 = (g.Data3 & 0x0fff) | 0x5000
	return g
}
