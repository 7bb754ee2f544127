package main

import (
	"errors"
	"fmt"

	"github.com/brutella/hap/accessory"
	client "github.com/caarlos0/homekit-comelit"
	"golang.org/x/exp/slices"
)

var (
	ErrAlarmDataUnavailable = errors.New("alarm data not available")
	ErrZoneNotFound         = errors.New("zone not found")
)

type dataSource interface {
	AlarmData() *client.AlarmData
}

// AlarmCoordinator is the part of the coordinator sensors and their setup
// depend on.
type AlarmCoordinator interface {
	listenerCoordinator
	LastUpdateSuccess() bool
	VedoPIN() string
	DeviceInfo(zone client.Zone, kind string) accessory.Info
}

// Platform is where entities get registered.
type Platform interface {
	AddEntities(entities ...*PresenceSensor)
}

// Entry is one configured alarm, either a serial bridge or a VEDO system.
type Entry struct {
	ID          string
	Type        entryType
	Coordinator AlarmCoordinator

	unload []func()
}

// OnUnload registers fn to be called when the entry is unloaded.
func (e *Entry) OnUnload(fn func()) {
	e.unload = append(e.unload, fn)
}

func (e *Entry) Unload() {
	for i := len(e.unload) - 1; i >= 0; i-- {
		e.unload[i]()
	}
	e.unload = nil
}

// setupPresenceSensors adds one presence sensor per zone of the entry
// alarm, now and whenever new zones show up.
func setupPresenceSensors(entry *Entry, platform Platform) {
	coordinator := entry.Coordinator
	switch entry.Type {
	case typeBridge, "":
		if coordinator.VedoPIN() == "" {
			log.Info("bridge has no VEDO alarm enabled, skipping presence sensors", "entry", entry.ID)
			return
		}
	}

	data := coordinator.AlarmData()
	if data == nil {
		log.Warn("no alarm data, skipping presence sensors", "entry", entry.ID)
		return
	}

	addNewEntities := func(newIndices []int, kind string) {
		var entities []*PresenceSensor
		current := coordinator.AlarmData()
		for _, index := range newIndices {
			zone, ok := current.Zones[index]
			if !ok {
				continue
			}
			entities = append(entities, newPresenceSensor(coordinator, zone, entry.ID))
		}
		if len(entities) == 0 {
			return
		}
		slices.SortFunc(entities, func(a, b *PresenceSensor) int {
			return a.zoneIndex - b.zoneIndex
		})
		log.Info("adding presence sensors", "entry", entry.ID, "kind", kind, "zones", newIndices)
		platform.AddEntities(entities...)
	}

	entry.OnUnload(alarmDeviceListener(coordinator, addNewEntities, kindAlarmZones))
}

// PresenceSensor is a motion binary sensor backed by one alarm zone.
type PresenceSensor struct {
	*ZoneAccessory

	coordinator AlarmCoordinator
	zoneIndex   int
	uniqueID    string
	missing     bool
}

func newPresenceSensor(coordinator AlarmCoordinator, zone client.Zone, entryID string) *PresenceSensor {
	return &PresenceSensor{
		ZoneAccessory: newZoneAccessory(coordinator.DeviceInfo(zone, "zone"), zone.Index),
		coordinator:   coordinator,
		zoneIndex:     zone.Index,
		uniqueID:      fmt.Sprintf("%s-presence-%d", entryID, zone.Index),
	}
}

func (s *PresenceSensor) UniqueID() string { return s.uniqueID }

func (s *PresenceSensor) DeviceClass() string { return "motion" }

func (s *PresenceSensor) zone() (client.Zone, error) {
	data := s.coordinator.AlarmData()
	if data == nil {
		return client.Zone{}, ErrAlarmDataUnavailable
	}
	zone, ok := data.Zones[s.zoneIndex]
	if !ok {
		return client.Zone{}, fmt.Errorf("%w: %d", ErrZoneNotFound, s.zoneIndex)
	}
	return zone, nil
}

// IsOn reports whether the zone currently detects presence.
func (s *PresenceSensor) IsOn() (bool, error) {
	zone, err := s.zone()
	if err != nil {
		return false, err
	}
	return zone.StatusAPI == client.StatusOpen, nil
}

// Available is false for faulty, unavailable and unknown zones, otherwise
// it follows the coordinator last refresh.
func (s *PresenceSensor) Available() (bool, error) {
	zone, err := s.zone()
	if err != nil {
		return false, err
	}
	switch zone.HumanStatus {
	case client.ZoneStateFaulty,
		client.ZoneStateUnavailable,
		client.ZoneStateUnknown:
		return false, nil
	}
	return s.coordinator.LastUpdateSuccess(), nil
}

// Update copies the cached zone state into the accessory. Motion follows
// IsOn even while unavailable, so a zone never stays latched as detected.
func (s *PresenceSensor) Update() {
	available, err := s.Available()
	switch {
	case err != nil && !s.missing:
		s.missing = true
		log.Warn("could not read zone", "zone", s.zoneIndex, "err", err)
	case err != nil:
		log.Debug("could not read zone", "zone", s.zoneIndex, "err", err)
	default:
		s.missing = false
	}
	on, _ := s.IsOn()

	availableGauge.WithLabelValues(s.Name(), s.uniqueID).Set(boolAs[float64](available))
	presenceGauge.WithLabelValues(s.Name(), s.uniqueID).Set(boolAs[float64](on))

	s.SetAvailable(available)
	if s.SetMotion(on) {
		log.Info("motion", "zone", s.zoneIndex, "name", s.Name(), "status", on)
	}
}

// addedToPlatform starts following coordinator refreshes. The returned func
// stops it.
func (s *PresenceSensor) addedToPlatform() func() {
	remove := s.coordinator.AddListener(s.Update)
	s.Update()
	return remove
}
