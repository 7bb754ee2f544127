package main

import (
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const kindAlarmZones = "alarm_zones"

type listenerCoordinator interface {
	dataSource
	AddListener(fn func()) func()
}

// alarmDeviceListener calls callback with the zone indices that show up in
// the coordinator data for the first time: once right away, then after each
// refresh. The returned func stops listening.
func alarmDeviceListener(
	coordinator listenerCoordinator,
	callback func(newIndices []int, kind string),
	kind string,
) func() {
	var lock sync.Mutex
	known := map[int]bool{}

	check := func() {
		data := coordinator.AlarmData()
		if data == nil {
			return
		}

		lock.Lock()
		var added []int
		for _, index := range maps.Keys(data.Zones) {
			if known[index] {
				continue
			}
			known[index] = true
			added = append(added, index)
		}
		lock.Unlock()

		if len(added) == 0 {
			return
		}
		slices.Sort(added)
		callback(added, kind)
	}

	remove := coordinator.AddListener(check)
	check()
	return remove
}
