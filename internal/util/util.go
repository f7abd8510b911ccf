//go:build !windows

package util

func IsRunFromGUI() bool {
	// On non-Windows this is always false. The playback host only needs it
	// to hide the console when double-clicked from Explorer; on Linux the
	// usual service tooling covers that.
	return false
}

func HideConsoleWindow() {
	// No-op on non-Windows platforms
}
