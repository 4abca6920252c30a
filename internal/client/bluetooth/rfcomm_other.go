//go:build !linux

package bluetooth

// Detect reports the Bluetooth channel as unavailable off Linux.
func Detect() Transport {
	return Unavailable("rfcomm is only supported on linux")
}
