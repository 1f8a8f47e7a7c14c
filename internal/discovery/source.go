package discovery

import (
	"context"
	"strconv"

	"github.com/shirou/gopsutil/v3/process"
)

// SystemSource enumerates processes of the running system.
type SystemSource struct{}

func (SystemSource) Find(ctx context.Context, name string) ([]Process, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	var out []Process
	for _, p := range procs {
		pname, err := p.NameWithContext(ctx)
		if err != nil || pname != name {
			continue
		}
		pid := int(p.Pid)
		out = append(out, Process{
			PID:     pid,
			Owner:   owner(ctx, p),
			Session: sessionID(pid),
		})
	}
	return out, nil
}

// owner resolves the user name of p, falling back to the raw uid.
func owner(ctx context.Context, p *process.Process) string {
	if name, err := p.UsernameWithContext(ctx); err == nil && name != "" {
		return name
	}
	if uids, err := p.UidsWithContext(ctx); err == nil && len(uids) > 0 {
		return strconv.Itoa(int(uids[0]))
	}
	return UnknownOwner
}
