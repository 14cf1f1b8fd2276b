package dolphin

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gcmem/gcmem/pkg/logflags"
)

// FindProcess scans procfs for a running emulator and records the first pid
// whose comm name is on the target allowlist. Returns true if a target is
// recorded (including when one already was). The returned error is non-nil
// only when the process directory itself cannot be opened, which means the
// procfs support this package depends on is missing; everything else is
// reported as false.
func (s *Session) FindProcess() (bool, error) {
	if s.pid != 0 {
		return true, nil
	}
	des, err := os.ReadDir(s.procRoot)
	if err != nil {
		return false, fmt.Errorf("error opening process directory: %v", err)
	}
	for _, de := range des {
		name := de.Name()
		if !isProcDir(name) {
			continue
		}
		comm, err := os.ReadFile(filepath.Join(s.procRoot, name, "comm"))
		if err != nil {
			// probably we just don't have permissions
			continue
		}
		comm = bytes.TrimSuffix(comm, []byte("\n"))
		if !s.isTarget(string(comm)) {
			continue
		}
		s.pid, _ = strconv.Atoi(name)
		logflags.DolphinLogger().Debugf("process found: %d", s.pid)
		return true, nil
	}
	return false, nil
}

func (s *Session) isTarget(comm string) bool {
	for _, name := range s.targetNames {
		if comm == name {
			return true
		}
	}
	return false
}

func isProcDir(name string) bool {
	for _, ch := range name {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}

// FindGamecubeRAMOffset scans the target's memory map for the shared memory
// region backing the emulated RAM and records its base and size. Returns
// false, leaving the session untouched, if no process is recorded or no
// region qualifies.
//
// Dolphin creates the backing mapping a moment after the process becomes
// visible in procfs. Callers must wait a short settle delay (250ms is
// enough in practice) after FindProcess before calling this; scanning too
// early reports a false negative, not an error.
func (s *Session) FindGamecubeRAMOffset() bool {
	if s.pid == 0 {
		return false
	}
	f, err := os.Open(filepath.Join(s.procRoot, strconv.Itoa(s.pid), "maps"))
	if err != nil {
		return false
	}
	defer f.Close()
	base, size, ok := scanMapsForRAM(f, s.backingFiles)
	if !ok {
		return false
	}
	s.baseAddr = base
	s.ramSize = size
	return true
}

// scanMapsForRAM walks a /proc/<pid>/maps listing and returns the first
// region that is backed by one of the named files and is large enough to be
// the emulated RAM. Fields are split on whitespace rather than read at
// fixed columns, so the result does not depend on address width or path
// length.
func scanMapsForRAM(r io.Reader, backingFiles []string) (base, size uint64, ok bool) {
	scan := bufio.NewScanner(r)
	for scan.Scan() {
		// start-end perms offset dev inode pathname
		fields := strings.SplitN(scan.Text(), " ", 6)
		if len(fields) != 6 {
			continue
		}
		filename := strings.TrimLeft(fields[5], " ")
		if !matchesBackingFile(filename, backingFiles) {
			continue
		}
		v := strings.Split(fields[0], "-")
		if len(v) != 2 {
			continue
		}
		start, err := strconv.ParseUint(v[0], 16, 64)
		if err != nil {
			continue
		}
		end, err := strconv.ParseUint(v[1], 16, 64)
		if err != nil || end <= start {
			continue
		}
		if end-start < minRAMSize {
			continue
		}
		return start, end - start, true
	}
	return 0, 0, false
}

// matchesBackingFile matches on the basename prefix: the live mapping shows
// up as e.g. "/dev/shm/dolphin-emu.1234 (deleted)" because Dolphin unlinks
// the file immediately after mapping it.
func matchesBackingFile(filename string, backingFiles []string) bool {
	base := filepath.Base(filename)
	for _, name := range backingFiles {
		if strings.HasPrefix(base, name) {
			return true
		}
	}
	return false
}
