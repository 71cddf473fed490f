//go:build windows

package restapi

import "fmt"

// MakeSandbox is a no-op on Windows beyond warning that the requested
// privilege drop is unavailable, matching nightlight's
// internal/rest/sandbox_windows.go.
func MakeSandbox(chroot string, setuid int) {
	if len(chroot) > 0 {
		fmt.Printf("Warning: ignoring chroot argument %s on Windows...\n", chroot)
	}
	if setuid >= 0 {
		fmt.Printf("Warning: ignoring setuid argument %d on Windows...\n", setuid)
	}
}
