package dolphin

import (
	"os"
	"path/filepath"
	"strconv"
)

const (
	// ramAliasMask folds the console's address mirror: the top address bit
	// selects an alias of the same physical RAM, so only the low 31 bits
	// pick a byte within the mapping. An address and its high-bit-set
	// twin always read the same memory.
	ramAliasMask = 0x7fffffff

	// minRAMSize is the smallest mapping that can be the console's main
	// RAM. Dolphin backs the full emulated address space with one 32MiB+
	// shared memory file; smaller mappings of the same file are bookkeeping
	// views, not the RAM itself.
	minRAMSize = 0x2000000
)

// DefaultTargetNames are the executable names a Session looks for in procfs.
var DefaultTargetNames = []string{"dolphin-emu", "dolphin-emu-qt2", "dolphin-emu-wx"}

// DefaultBackingFiles are the names of the shared memory file that backs the
// emulated RAM. Current Dolphin versions use "dolphin-emu", very old builds
// used "dolphinmem".
var DefaultBackingFiles = []string{"dolphin-emu", "dolphinmem"}

// transferFn copies len(buf) bytes out of another process' address space.
// It is a field on Session so tests can substitute a fake target.
type transferFn func(pid int, addr uintptr, buf []byte) (int, error)

// Config controls how a Session discovers its target. The zero value (or a
// nil pointer) selects the defaults above and the real /proc.
type Config struct {
	// TargetNames overrides the executable name allowlist.
	TargetNames []string
	// BackingFiles overrides the accepted RAM backing file names.
	BackingFiles []string
	// ProcRoot overrides the procfs mount point, for tests.
	ProcRoot string
}

// Session records which emulator process is targeted and where its emulated
// RAM lives. The zero state targets nothing and all reads return zero
// values. Not safe for concurrent use.
type Session struct {
	pid      int
	baseAddr uint64
	ramSize  uint64

	procRoot     string
	targetNames  []string
	backingFiles []string
	readMem      transferFn
}

// New returns a Session with no target attached.
func New(cfg *Config) *Session {
	s := &Session{
		procRoot:     "/proc",
		targetNames:  DefaultTargetNames,
		backingFiles: DefaultBackingFiles,
		readMem:      processVMRead,
	}
	if cfg == nil {
		return s
	}
	if len(cfg.TargetNames) > 0 {
		s.targetNames = cfg.TargetNames
	}
	if len(cfg.BackingFiles) > 0 {
		s.backingFiles = cfg.BackingFiles
	}
	if cfg.ProcRoot != "" {
		s.procRoot = cfg.ProcRoot
	}
	return s
}

// HasProcess reports whether a target process has been recorded.
func (s *Session) HasProcess() bool {
	return s.pid != 0
}

// Pid returns the recorded target process id, 0 if none.
func (s *Session) Pid() int {
	return s.pid
}

// IsProcessActive reports whether the recorded process still exists,
// without touching the session's own state. Callers use it to poll target
// health between reads.
func (s *Session) IsProcessActive() bool {
	if s.pid == 0 {
		return false
	}
	_, err := os.Stat(filepath.Join(s.procRoot, strconv.Itoa(s.pid)))
	return err == nil
}

// HasGamecubeRAMOffset reports whether region discovery has succeeded.
func (s *Session) HasGamecubeRAMOffset() bool {
	return s.baseAddr != 0
}

// GamecubeRAMOffset returns the base of the RAM mapping inside the target's
// address space, 0 if undiscovered.
func (s *Session) GamecubeRAMOffset() uint64 {
	return s.baseAddr
}

// GamecubeRAMSize returns the size of the RAM mapping in bytes, 0 if
// undiscovered.
func (s *Session) GamecubeRAMSize() uint64 {
	return s.ramSize
}

// Close forgets the target. The pid, base address and size are always
// cleared together so the session can never be half valid. Idempotent; the
// Session can be reused for another discovery cycle afterwards.
func (s *Session) Close() {
	if s.pid == 0 {
		return
	}
	s.pid = 0
	s.baseAddr = 0
	s.ramSize = 0
}
