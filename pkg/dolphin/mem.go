package dolphin

import (
	"encoding/binary"
	"math"

	"github.com/gcmem/gcmem/pkg/logflags"
)

// foldAddr collapses an emulated address and its uncached mirror to the
// same offset within the RAM mapping.
func foldAddr(addr uint64) uint64 {
	return addr & ramAliasMask
}

// transfer copies len(buf) bytes of emulated RAM at addr into buf with a
// single cross process read. A short or failed read means the target exited
// or remapped its memory, so the session is torn down on the spot and the
// caller has to rediscover before reading again.
func (s *Session) transfer(addr uint64, buf []byte) bool {
	if s.pid == 0 || s.baseAddr == 0 {
		return false
	}
	target := s.baseAddr + foldAddr(addr)
	n, err := s.readMem(s.pid, uintptr(target), buf)
	if err != nil || n != len(buf) {
		logflags.MemLogger().Warnf("failed reading process memory: pid %d addr %#x: %v", s.pid, addr, err)
		s.Close()
		return false
	}
	return true
}

// The GameCube stores everything big endian; accessors return host order
// values. All of them return a zero value instead of failing when no region
// is mapped.

// ReadUint8 reads one unsigned byte.
func (s *Session) ReadUint8(addr uint64) uint8 {
	var buf [1]byte
	if !s.transfer(addr, buf[:]) {
		return 0
	}
	return buf[0]
}

// ReadInt8 reads one signed byte.
func (s *Session) ReadInt8(addr uint64) int8 {
	return int8(s.ReadUint8(addr))
}

// ReadBool reads one byte and reports whether it is exactly 1.
func (s *Session) ReadBool(addr uint64) bool {
	return s.ReadUint8(addr) == 1
}

// ReadUint16 reads a big endian 16 bit value.
func (s *Session) ReadUint16(addr uint64) uint16 {
	var buf [2]byte
	if !s.transfer(addr, buf[:]) {
		return 0
	}
	return binary.BigEndian.Uint16(buf[:])
}

// ReadInt16 reads a big endian signed 16 bit value.
func (s *Session) ReadInt16(addr uint64) int16 {
	return int16(s.ReadUint16(addr))
}

// ReadUint32 reads a big endian 32 bit value.
func (s *Session) ReadUint32(addr uint64) uint32 {
	var buf [4]byte
	if !s.transfer(addr, buf[:]) {
		return 0
	}
	return binary.BigEndian.Uint32(buf[:])
}

// ReadInt32 reads a big endian signed 32 bit value.
func (s *Session) ReadInt32(addr uint64) int32 {
	return int32(s.ReadUint32(addr))
}

// ReadFloat32 reads a big endian 32 bit value and reinterprets the bit
// pattern as an IEEE-754 single.
func (s *Session) ReadFloat32(addr uint64) float32 {
	return math.Float32frombits(s.ReadUint32(addr))
}

// ReadBytes reads n raw bytes starting at addr. The result keeps the
// target's byte order; multi byte interpretation is the caller's problem.
// Returns nil when the read cannot be performed.
func (s *Session) ReadBytes(addr uint64, n int) []byte {
	if n <= 0 {
		return nil
	}
	buf := make([]byte, n)
	if !s.transfer(addr, buf) {
		return nil
	}
	return buf
}
