package main

import (
	"github.com/brutella/hap/accessory"
	"github.com/brutella/hap/characteristic"
	"github.com/brutella/hap/service"
)

// zone accessories get stable ids derived from the zone index, so HomeKit
// keeps rooms and automations when zones are added or removed.
const zoneAccessoryBase = 100

type ZoneAccessory struct {
	*accessory.A
	Motion *service.MotionSensor
	Active *characteristic.StatusActive
	Fault  *characteristic.StatusFault
}

func newZoneAccessory(info accessory.Info, index int) *ZoneAccessory {
	a := ZoneAccessory{}
	a.A = accessory.New(info, accessory.TypeSensor)
	a.Id = uint64(zoneAccessoryBase + index)

	a.Active = characteristic.NewStatusActive()
	a.Fault = characteristic.NewStatusFault()

	a.Motion = service.NewMotionSensor()
	a.Motion.AddC(a.Active.C)
	a.Motion.AddC(a.Fault.C)
	a.AddS(a.Motion.S)

	return &a
}

// SetAvailable reports whether it changed anything.
func (a *ZoneAccessory) SetAvailable(available bool) bool {
	changed := false
	if a.Active.Value() != available {
		a.Active.SetValue(available)
		changed = true
	}
	if v := boolAs[int](!available); a.Fault.Value() != v {
		_ = a.Fault.SetValue(v)
		changed = true
	}
	if changed {
		log.Info("availability", "name", a.Name(), "available", available)
	}
	return changed
}

// SetMotion reports whether it changed anything.
func (a *ZoneAccessory) SetMotion(detected bool) bool {
	if a.Motion.MotionDetected.Value() == detected {
		return false
	}
	a.Motion.MotionDetected.SetValue(detected)
	return true
}
