package dolphin

import (
	sys "golang.org/x/sys/unix"
)

// processVMRead calls process_vm_readv with a single local and a single
// remote iovec.
func processVMRead(pid int, addr uintptr, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	localIov := []sys.Iovec{{Base: &buf[0], Len: uint64(len(buf))}}
	remoteIov := []sys.RemoteIovec{{Base: addr, Len: len(buf)}}
	return sys.ProcessVMReadv(pid, localIov, remoteIov, 0)
}
