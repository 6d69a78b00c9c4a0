//go:build !linux

package v4l2

// FindOutputDevices reports no devices off Linux; V4L2 is a Linux
// interface.
func FindOutputDevices() ([]DeviceInfo, error) {
	return nil, nil
}
