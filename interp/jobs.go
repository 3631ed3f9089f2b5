package interp

import (
	"strconv"

	"github.com/everruns/bashkit-sub001/builtin"
)

// jobRecord is one completed background command: spec.md §5's model runs
// background commands synchronously to completion in a cloned view, so
// every job is immediately "Done" — there is no genuinely-running state
// to poll.
type jobRecord struct {
	pid     int
	exit    int
	command string
	output  []byte
}

// jobTable is the per-process (shared across clones) virtual job table
// implementing builtin.JobSource, backing `wait`/`jobs`/$!, plus the
// sequential path allocator process substitution uses.
type jobTable struct {
	nextPID  int
	nextProc int
	jobs     []*jobRecord
}

func newJobTable() *jobTable {
	return &jobTable{nextPID: 1, nextProc: 1}
}

func (t *jobTable) record(command string, exit int, output []byte) int {
	pid := t.nextPID
	t.nextPID++
	t.jobs = append(t.jobs, &jobRecord{pid: pid, exit: exit, command: command, output: output})
	return pid
}

func (t *jobTable) procSubPath() string {
	n := t.nextProc
	t.nextProc++
	return "/.bashkit/procsub/" + strconv.Itoa(n)
}

func (t *jobTable) List() []builtin.JobInfo {
	out := make([]builtin.JobInfo, len(t.jobs))
	for i, j := range t.jobs {
		out[i] = builtin.JobInfo{PID: j.pid, Running: false, Exit: j.exit, Command: j.command}
	}
	return out
}

func (t *jobTable) Wait(pid int) (int, bool) {
	for _, j := range t.jobs {
		if j.pid == pid {
			return j.exit, true
		}
	}
	return 0, false
}

func (t *jobTable) WaitAll() []int {
	out := make([]int, 0, len(t.jobs))
	for _, j := range t.jobs {
		out = append(out, j.exit)
	}
	return out
}
