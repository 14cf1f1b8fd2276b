package dolphin

import (
	"bytes"
	"testing"
)

// fakeTarget backs a Session with an in-memory RAM image mapped at base.
type fakeTarget struct {
	ram   []byte
	base  uint64
	calls int
	addrs []uintptr
}

func (ft *fakeTarget) attach(s *Session, pid int) {
	s.pid = pid
	s.baseAddr = ft.base
	s.ramSize = uint64(len(ft.ram))
	s.readMem = func(pid int, addr uintptr, buf []byte) (int, error) {
		ft.calls++
		ft.addrs = append(ft.addrs, addr)
		off := uint64(addr) - ft.base
		if off >= uint64(len(ft.ram)) {
			return 0, nil
		}
		return copy(buf, ft.ram[off:]), nil
	}
}

func testSession(t *testing.T, ram []byte) (*Session, *fakeTarget) {
	t.Helper()
	ft := &fakeTarget{ram: ram, base: 0x7f0000000000}
	s := New(nil)
	ft.attach(s, 1234)
	return s, ft
}

func TestFoldAddr(t *testing.T) {
	for _, addr := range []uint64{0, 0x1800, 0x80000000, 0x80001800, 0x017fc594} {
		if foldAddr(addr) != foldAddr(addr+0x80000000) {
			t.Errorf("fold(%#x) = %#x, fold(%#x) = %#x, want equal",
				addr, foldAddr(addr), addr+0x80000000, foldAddr(addr+0x80000000))
		}
	}
	if foldAddr(0x80001800) != 0x1800 {
		t.Errorf("fold(0x80001800) = %#x, want 0x1800", foldAddr(0x80001800))
	}
}

func TestReadBigEndian(t *testing.T) {
	ram := []byte{0x01, 0x02, 0x03, 0x04, 0xff, 0x01, 0x40, 0x60, 0x00, 0x00, 0xff, 0xff, 0xff, 0xfe}
	s, _ := testSession(t, ram)

	if v := s.ReadUint16(0x80000000); v != 0x0102 {
		t.Errorf("ReadUint16 = %#x, want 0x0102", v)
	}
	if v := s.ReadInt16(0x80000004); v != -255 {
		t.Errorf("ReadInt16 = %d, want -255", v)
	}
	if v := s.ReadUint32(0x80000000); v != 0x01020304 {
		t.Errorf("ReadUint32 = %#x, want 0x01020304", v)
	}
	if v := s.ReadInt32(0x8000000a); v != -2 {
		t.Errorf("ReadInt32 = %d, want -2", v)
	}
	if v := s.ReadUint8(0x80000004); v != 0xff {
		t.Errorf("ReadUint8 = %#x, want 0xff", v)
	}
	if v := s.ReadInt8(0x80000004); v != -1 {
		t.Errorf("ReadInt8 = %d, want -1", v)
	}
	if !s.ReadBool(0x80000005) {
		t.Error("ReadBool(0x80000005) = false, want true")
	}
	if s.ReadBool(0x80000004) {
		t.Error("ReadBool(0x80000004) = true, want false (0xff is not 1)")
	}
	// 0x40600000 is the big endian bit pattern of 3.5.
	if v := s.ReadFloat32(0x80000006); v != 3.5 {
		t.Errorf("ReadFloat32 = %g, want 3.5", v)
	}
}

func TestReadAliasedAddress(t *testing.T) {
	ram := []byte{0xde, 0xad, 0xbe, 0xef}
	s, _ := testSession(t, ram)

	lo := s.ReadUint32(0x00000000)
	hi := s.ReadUint32(0x80000000)
	if lo != hi {
		t.Errorf("aliased reads differ: %#x vs %#x", lo, hi)
	}
}

func TestReadBytesKeepsTargetOrder(t *testing.T) {
	ram := []byte{0x01, 0x02, 0x03, 0x04}
	s, _ := testSession(t, ram)

	got := s.ReadBytes(0x80000000, 4)
	if !bytes.Equal(got, ram) {
		t.Errorf("ReadBytes = %x, want %x", got, ram)
	}
	if got := s.ReadBytes(0x80000000, 0); got != nil {
		t.Errorf("ReadBytes with n=0 = %x, want nil", got)
	}
}

func TestTransferTargetAddress(t *testing.T) {
	ram := make([]byte, 0x2000)
	copy(ram[0x1800:], []byte{0x01, 0x02, 0x03, 0x04})
	s, ft := testSession(t, ram)

	v := s.ReadUint32(0x80001800)
	if v != 0x01020304 {
		t.Errorf("ReadUint32(0x80001800) = %#x, want 0x01020304", v)
	}
	if len(ft.addrs) != 1 || ft.addrs[0] != 0x7f0000001800 {
		t.Errorf("transfer addresses = %#x, want [0x7f0000001800]", ft.addrs)
	}
}

func TestShortTransferTearsDownSession(t *testing.T) {
	s := New(nil)
	calls := 0
	s.pid = 1234
	s.baseAddr = 0x7f0000000000
	s.ramSize = 0x2000000
	s.readMem = func(pid int, addr uintptr, buf []byte) (int, error) {
		calls++
		return len(buf) - 1, nil
	}

	if v := s.ReadUint32(0x80000000); v != 0 {
		t.Errorf("ReadUint32 after short transfer = %#x, want 0", v)
	}
	if s.HasProcess() {
		t.Error("HasProcess() = true after failed transfer, want false")
	}
	if s.HasGamecubeRAMOffset() {
		t.Error("HasGamecubeRAMOffset() = true after failed transfer, want false")
	}
	if v := s.ReadInt32(0x80000000); v != 0 {
		t.Errorf("ReadInt32 on dead session = %d, want 0", v)
	}
	if calls != 1 {
		t.Errorf("transfer called %d times, want 1 (no I/O after teardown)", calls)
	}
}

func TestReadsInactiveSession(t *testing.T) {
	s := New(nil)
	s.readMem = func(pid int, addr uintptr, buf []byte) (int, error) {
		t.Fatal("transfer issued without an active session")
		return 0, nil
	}

	if v := s.ReadUint32(0x80000000); v != 0 {
		t.Errorf("ReadUint32 = %#x, want 0", v)
	}
	if s.ReadBool(0x80000000) {
		t.Error("ReadBool = true, want false")
	}
	if v := s.ReadFloat32(0x80000000); v != 0 {
		t.Errorf("ReadFloat32 = %g, want 0", v)
	}
	if got := s.ReadBytes(0x80000000, 8); got != nil {
		t.Errorf("ReadBytes = %x, want nil", got)
	}
}

func TestCloseIdempotent(t *testing.T) {
	s, _ := testSession(t, make([]byte, 16))
	s.Close()
	if s.HasProcess() || s.HasGamecubeRAMOffset() || s.GamecubeRAMSize() != 0 {
		t.Error("session not fully cleared by Close")
	}
	s.Close()
	if s.Pid() != 0 {
		t.Error("second Close changed the session")
	}
}
