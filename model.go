package comelit

import (
	"strconv"
	"strings"
)

// ZoneState is the human readable status of an alarm zone.
type ZoneState string

const (
	ZoneStateAlarm       ZoneState = "alarm"
	ZoneStateArmed       ZoneState = "armed"
	ZoneStateExcluded    ZoneState = "excluded"
	ZoneStateFaulty      ZoneState = "faulty"
	ZoneStateInhibited   ZoneState = "inhibited"
	ZoneStateIsolated    ZoneState = "isolated"
	ZoneStateOpen        ZoneState = "open"
	ZoneStateRest        ZoneState = "rest"
	ZoneStateSabotated   ZoneState = "sabotated"
	ZoneStateUnavailable ZoneState = "unavailable"
	ZoneStateUnknown     ZoneState = "unknown"
)

func (s ZoneState) String() string {
	return string(s)
}

// StatusOpen is the raw code a zone reports while it only sees presence.
const StatusOpen = "0001"

const (
	bitOpen        = 0x0001
	bitAlarm       = 0x0002
	bitArmed       = 0x0004
	bitSabotated   = 0x0008
	bitFaulty      = 0x0010
	bitExcluded    = 0x0020
	bitIsolated    = 0x0040
	bitInhibited   = 0x0080
	bitUnavailable = 0x8000
)

// order matters: the first matching bit wins.
var zoneStateBits = []struct {
	bit   uint16
	state ZoneState
}{
	{bitUnavailable, ZoneStateUnavailable},
	{bitFaulty, ZoneStateFaulty},
	{bitSabotated, ZoneStateSabotated},
	{bitAlarm, ZoneStateAlarm},
	{bitExcluded, ZoneStateExcluded},
	{bitIsolated, ZoneStateIsolated},
	{bitInhibited, ZoneStateInhibited},
	{bitArmed, ZoneStateArmed},
	{bitOpen, ZoneStateOpen},
}

// ParseZoneState decodes a raw hex status code as reported by the panel.
func ParseZoneState(code string) ZoneState {
	code = strings.TrimSpace(code)
	if code == "" {
		return ZoneStateUnavailable
	}
	n, err := strconv.ParseUint(code, 16, 16)
	if err != nil {
		return ZoneStateUnknown
	}
	for _, zs := range zoneStateBits {
		if uint16(n)&zs.bit > 0 {
			return zs.state
		}
	}
	return ZoneStateRest
}

type Zone struct {
	Index       int
	Name        string
	StatusAPI   string
	HumanStatus ZoneState
}

// AlarmData is a snapshot of all the zones of a VEDO system, keyed by zone
// index.
type AlarmData struct {
	Zones map[int]Zone
}
