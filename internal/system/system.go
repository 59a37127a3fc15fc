package system

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// workerMemoryBudget is the memory headroom assumed per scene worker.
const workerMemoryBudget = 128 << 20

// DetectWorkers picks a default scene worker count from the logical
// core count, capped by available memory so a constrained host never
// over-commits. Falls back to runtime.NumCPU when probing fails.
func DetectWorkers() int {
	workers, err := cpu.Counts(true)
	if err != nil || workers < 1 {
		workers = runtime.NumCPU()
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		if byMem := int(vm.Available / workerMemoryBudget); byMem > 0 && byMem < workers {
			workers = byMem
		}
	}

	if workers < 1 {
		workers = 1
	}
	return workers
}

// FindLatestScript returns the most recently modified script document
// in dir, so the CLI can pick up the newest output of the script-
// generation stage without an explicit -script flag.
func FindLatestScript(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var candidates []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.ToLower(e.Name())
		if strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			candidates = append(candidates, filepath.Join(dir, e.Name()))
		}
	}
	if len(candidates) == 0 {
		return "", os.ErrNotExist
	}

	sort.Slice(candidates, func(i, j int) bool {
		ii, _ := os.Stat(candidates[i])
		jj, _ := os.Stat(candidates[j])
		if ii == nil || jj == nil {
			return candidates[i] < candidates[j]
		}
		return ii.ModTime().After(jj.ModTime())
	})
	return candidates[0], nil
}
