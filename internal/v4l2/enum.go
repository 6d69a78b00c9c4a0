//go:build linux

package v4l2

import (
	"fmt"
	"log/slog"
	"os"
	"syscall"
	"unsafe"
)

// FindOutputDevices finds all V4L2 video output devices on the system.
func FindOutputDevices() ([]DeviceInfo, error) {
	entries, err := os.ReadDir("/sys/class/video4linux")
	if err != nil {
		if os.IsNotExist(err) {
			return []DeviceInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read video4linux directory: %w", err)
	}

	var devices []DeviceInfo

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		devicePath := "/dev/" + entry.Name()

		fd, err := openQuery(devicePath)
		if err != nil {
			slog.With("component", "v4l2").Debug("failed to open video device", "path", devicePath, "error", err)
			continue
		}

		cap := v4l2Capability{}
		if err := ioctl(fd, vidiocQuerycap, unsafe.Pointer(&cap)); err != nil {
			slog.With("component", "v4l2").Debug("failed to query device capabilities", "path", devicePath, "error", err)
			syscall.Close(fd)
			continue
		}
		syscall.Close(fd)

		caps := cap.capabilities
		if caps&capDeviceCaps != 0 {
			caps = cap.deviceCaps
		}

		if caps&capVideoOutput == 0 {
			continue
		}

		devices = append(devices, DeviceInfo{
			DevicePath: devicePath,
			DeviceName: cstr(cap.card[:]),
			BusInfo:    cstr(cap.busInfo[:]),
			Caps:       caps,
		})
	}

	return devices, nil
}
