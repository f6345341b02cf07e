package pipeline

import (
	"log"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// logStats reports generation throughput and memory use. Stats are
// best effort; probes that fail are skipped silently.
func logStats(samples int, elapsed time.Duration) {
	if samples > 0 && elapsed > 0 {
		rate := float64(samples) / elapsed.Seconds()
		log.Printf("Throughput: %.1f samples/s over %s", rate, elapsed.Round(time.Millisecond))
	}

	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if info, err := proc.MemoryInfo(); err == nil {
			log.Printf("Process memory: %.1f MB RSS", float64(info.RSS)/(1024*1024))
		}
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		log.Printf("System memory: %.1f%% used", vm.UsedPercent)
	}
}
