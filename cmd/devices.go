package cmd

import (
	"fmt"
	"os"

	"github.com/smazurov/camlink/internal/v4l2"
	"github.com/spf13/cobra"
)

// CreateDevicesCmd creates the devices command, which lists V4L2 output
// devices a camera stream could be bridged to.
func CreateDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List V4L2 output devices",
		Long:  `Scans /dev for video devices that support output streaming, such as v4l2loopback nodes, and prints one line per usable device.`,
		Run: func(_ *cobra.Command, _ []string) {
			devices, err := v4l2.FindOutputDevices()
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			if len(devices) == 0 {
				fmt.Println("No V4L2 output devices found. Is v4l2loopback loaded?")
				return
			}
			for _, d := range devices {
				fmt.Printf("%s\t%s (%s)\n", d.DevicePath, d.DeviceName, d.BusInfo)
			}
		},
	}
}
