package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// Snapshot renders a short health report for the /status bot command. Each
// probe degrades independently; a missing metric is reported inline rather
// than failing the whole report.
func Snapshot(faces int) string {
	var b strings.Builder

	b.WriteString("Door system status\n")
	fmt.Fprintf(&b, "Enrolled faces: %d\n", faces)

	if uptime, err := host.Uptime(); err == nil {
		fmt.Fprintf(&b, "Uptime: %s\n", (time.Duration(uptime) * time.Second).String())
	} else {
		b.WriteString("Uptime: unavailable\n")
	}

	if avg, err := load.Avg(); err == nil {
		fmt.Fprintf(&b, "Load: %.2f %.2f %.2f\n", avg.Load1, avg.Load5, avg.Load15)
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		fmt.Fprintf(&b, "Memory: %.0f%% used\n", vm.UsedPercent)
	}

	if du, err := disk.Usage("/"); err == nil {
		fmt.Fprintf(&b, "Disk: %.0f%% used\n", du.UsedPercent)
	}

	return strings.TrimRight(b.String(), "\n")
}
