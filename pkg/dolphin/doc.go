// Package dolphin reads the emulated GameCube main RAM of a running
// dolphin-emu process from the outside, without any cooperation from the
// emulator.
//
// A Session goes through three stages: FindProcess locates a running
// emulator by scanning procfs, FindGamecubeRAMOffset locates the
// shared-memory mapping that backs the console RAM inside the emulator's
// address space, and the Read* accessors then copy bytes out of it with
// process_vm_readv. Any failed read tears the whole session down and the
// caller is expected to run discovery again.
//
// Everything here is synchronous and a Session is not safe for concurrent
// use; callers that poll from a UI must do so from a single goroutine or
// serialize access themselves.
//
// Only Linux is supported.
package dolphin
