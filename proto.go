package comelit

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	pathLogin    = "/login.cgi"
	pathLogout   = "/logout.cgi"
	pathZoneDesc = "/user/vedo_zone_desc.json"
	pathZoneStat = "/user/vedo_zone_stat.json"
)

type loginResponse struct {
	Logged int `json:"logged"`
}

type zoneDescResponse struct {
	Logged      int      `json:"logged"`
	ZoneNum     int      `json:"zone_num"`
	Present     []int    `json:"present"`
	Description []string `json:"description"`
}

type zoneStatResponse struct {
	Logged int    `json:"logged"`
	Status string `json:"status"`
}

func parseLoginResponse(buf []byte) error {
	var resp loginResponse
	if err := json.Unmarshal(buf, &resp); err != nil {
		return fmt.Errorf("invalid login response: %w", err)
	}
	if resp.Logged != 1 {
		return ErrInvalidPIN
	}
	return nil
}

func parseZoneDesc(buf []byte) (zoneDescResponse, error) {
	var resp zoneDescResponse
	if err := json.Unmarshal(buf, &resp); err != nil {
		return resp, fmt.Errorf("invalid zone description: %w", err)
	}
	if resp.Logged != 1 {
		return resp, ErrNotLogged
	}
	return resp, nil
}

func parseZoneStat(buf []byte) ([]string, error) {
	var resp zoneStatResponse
	if err := json.Unmarshal(buf, &resp); err != nil {
		return nil, fmt.Errorf("invalid zone status: %w", err)
	}
	if resp.Logged != 1 {
		return nil, ErrNotLogged
	}
	if resp.Status == "" {
		return nil, nil
	}
	codes := strings.Split(resp.Status, ",")
	for i := range codes {
		codes[i] = strings.TrimSpace(codes[i])
	}
	return codes, nil
}

func mergeZones(desc zoneDescResponse, codes []string) AlarmData {
	n := desc.ZoneNum
	if n == 0 {
		n = len(desc.Present)
	}
	data := AlarmData{Zones: make(map[int]Zone, n)}
	for i := 0; i < n && i < len(desc.Present); i++ {
		if desc.Present[i] == 0 {
			continue
		}
		zone := Zone{
			Index: i,
			Name:  zoneName(desc.Description, i),
		}
		if i < len(codes) {
			zone.StatusAPI = codes[i]
		}
		zone.HumanStatus = ParseZoneState(zone.StatusAPI)
		data.Zones[i] = zone
	}
	return data
}

func zoneName(names []string, i int) string {
	if i < len(names) {
		if name := strings.TrimSpace(names[i]); name != "" {
			return name
		}
	}
	return fmt.Sprintf("Zone %d", i+1)
}
