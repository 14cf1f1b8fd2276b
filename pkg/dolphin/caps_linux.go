package dolphin

import (
	sys "golang.org/x/sys/unix"
)

// HasPermissions tries to raise CAP_SYS_PTRACE in this process' effective
// capability set, which is what process_vm_readv checks when the target is
// not a child of ours. Returns true only if the capability set could be
// fetched, modified and applied; any failure reports false rather than an
// error so callers can treat it as a probe.
//
// The v3 capability ABI works on a caller owned two element vector
// (CAP_SYS_PTRACE sits in the low word), so there is no kernel handle to
// leak on the failure paths.
func HasPermissions() bool {
	hdr := sys.CapUserHeader{Version: sys.LINUX_CAPABILITY_VERSION_3}
	var data [2]sys.CapUserData
	if err := sys.Capget(&hdr, &data[0]); err != nil {
		return false
	}
	data[sys.CAP_SYS_PTRACE/32].Effective |= 1 << (sys.CAP_SYS_PTRACE % 32)
	return sys.Capset(&hdr, &data[0]) == nil
}
