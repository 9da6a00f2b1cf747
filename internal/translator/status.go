package translator

import (
	"sort"
	"time"

	"github.com/egorsmkv/kulyk-go/pkg/types"
)

// Status builds a detailed status response for /status.
func (t *Translator) Status() types.StatusResponse {
	now := time.Now()
	resp := types.StatusResponse{
		UptimeSeconds:  int64(now.Sub(t.startTime).Seconds()),
		ServerTimeUnix: now.Unix(),
	}
	resp.Directions = make([]types.DirectionStatus, 0, len(t.dirs))
	for _, e := range t.dirs {
		ds := types.DirectionStatus{
			Direction: e.direction.String(),
			Available: e.available(),
			ModelPath: e.path,
			Error:     e.loadErr,
			Served:    e.served.Load(),
			LastUsed:  e.lastUsed.Load(),
		}
		if e.pool != nil {
			ds.PoolSize = e.pool.size
			ds.InUse = e.pool.inUse()
		}
		resp.Directions = append(resp.Directions, ds)
	}
	sort.Slice(resp.Directions, func(i, j int) bool {
		return resp.Directions[i].Direction < resp.Directions[j].Direction
	})
	return resp
}
