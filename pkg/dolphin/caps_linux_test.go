package dolphin

import "testing"

// HasPermissions depends on the capabilities the test runner was started
// with, so only the probe contract can be checked here: it must return and
// never panic, whatever the privilege level.
func TestHasPermissionsProbe(t *testing.T) {
	first := HasPermissions()
	second := HasPermissions()
	if first != second {
		t.Errorf("HasPermissions() flapped: %v then %v", first, second)
	}
}
