package main

import (
	"sync"

	"github.com/brutella/hap/accessory"
)

// hapPlatform collects the sensors that will be served by the HAP server.
// HAP servers can't add accessories after they start, so late sensors are
// only picked up on the next restart.
type hapPlatform struct {
	lock     sync.Mutex
	started  bool
	sensors  []*PresenceSensor
	removers []func()
}

func (p *hapPlatform) AddEntities(entities ...*PresenceSensor) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.started {
		for _, e := range entities {
			log.Warn("new zone found, restart to expose it", "zone", e.zoneIndex, "name", e.Name())
		}
		return
	}
	for _, e := range entities {
		p.removers = append(p.removers, e.addedToPlatform())
		p.sensors = append(p.sensors, e)
	}
}

// Start freezes the sensor list and returns their accessories.
func (p *hapPlatform) Start() []*accessory.A {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.started = true
	result := make([]*accessory.A, 0, len(p.sensors))
	for _, s := range p.sensors {
		result = append(result, s.A)
	}
	return result
}

func (p *hapPlatform) Sensors() []*PresenceSensor {
	p.lock.Lock()
	defer p.lock.Unlock()
	return append([]*PresenceSensor(nil), p.sensors...)
}

func (p *hapPlatform) Close() {
	p.lock.Lock()
	defer p.lock.Unlock()
	for _, remove := range p.removers {
		remove()
	}
	p.removers = nil
}
