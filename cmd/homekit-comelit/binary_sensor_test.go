package main

import (
	"context"
	"errors"
	"testing"

	client "github.com/caarlos0/homekit-comelit"
	"github.com/stretchr/testify/require"
)

type fakePlatform struct {
	entities []*PresenceSensor
}

func (p *fakePlatform) AddEntities(entities ...*PresenceSensor) {
	p.entities = append(p.entities, entities...)
}

func refreshedCoordinator(t *testing.T, responses ...fetchResponse) (*Coordinator, *fakeFetcher) {
	t.Helper()
	fetcher := &fakeFetcher{responses: responses}
	c := newTestCoordinator(t, fetcher)
	require.NoError(t, c.Refresh(context.Background()))
	return c, fetcher
}

func TestSetupBridgeWithoutVedo(t *testing.T) {
	c := NewCoordinator(Config{Type: typeBridge}, &fakeFetcher{}, "serial")
	entry := &Entry{ID: "test", Type: typeBridge, Coordinator: c}
	platform := &fakePlatform{}

	setupPresenceSensors(entry, platform)
	require.Empty(t, platform.entities)
	require.Empty(t, entry.unload)
}

func TestSetupWithoutAlarmData(t *testing.T) {
	c := newTestCoordinator(t, &fakeFetcher{})
	entry := &Entry{ID: "test", Type: typeVedo, Coordinator: c}
	platform := &fakePlatform{}

	setupPresenceSensors(entry, platform)
	require.Empty(t, platform.entities)
	require.Empty(t, entry.unload)
}

func TestSetupAddsNewZones(t *testing.T) {
	c, fetcher := refreshedCoordinator(t, fetchResponse{data: zonesData("0001", "0000")})
	entry := &Entry{ID: "test", Type: typeVedo, Coordinator: c}
	platform := &fakePlatform{}

	setupPresenceSensors(entry, platform)
	require.Len(t, platform.entities, 2)
	require.Len(t, entry.unload, 1)
	for i, e := range platform.entities {
		require.Equal(t, i, e.zoneIndex)
		require.Equal(t, "motion", e.DeviceClass())
		require.Equal(t, uint64(zoneAccessoryBase+i), e.Id)
	}
	require.Equal(t, "test-presence-0", platform.entities[0].UniqueID())
	require.Equal(t, "test-presence-1", platform.entities[1].UniqueID())
	require.Equal(t, "Zone 1", platform.entities[0].Name())

	fetcher.responses = []fetchResponse{{data: zonesData("0001", "0000", "0000")}}
	require.NoError(t, c.Refresh(context.Background()))
	require.Len(t, platform.entities, 3)
	require.Equal(t, "test-presence-2", platform.entities[2].UniqueID())

	require.NoError(t, c.Refresh(context.Background()))
	require.Len(t, platform.entities, 3)

	entry.Unload()
	fetcher.responses = []fetchResponse{{data: zonesData("0001", "0000", "0000", "0000")}}
	require.NoError(t, c.Refresh(context.Background()))
	require.Len(t, platform.entities, 3)
}

func TestSetupBridgeWithVedo(t *testing.T) {
	fetcher := &fakeFetcher{responses: []fetchResponse{{data: zonesData("0000")}}}
	c := NewCoordinator(Config{Type: typeBridge, VedoPIN: "1234"}, fetcher, "serial")
	c.backoffs = newTestCoordinator(t, fetcher).backoffs
	require.NoError(t, c.Refresh(context.Background()))

	entry := &Entry{ID: "bridge", Coordinator: c}
	platform := &fakePlatform{}
	setupPresenceSensors(entry, platform)
	require.Len(t, platform.entities, 1)
	require.Equal(t, "bridge-presence-0", platform.entities[0].UniqueID())
}

func TestPresenceSensorState(t *testing.T) {
	c, fetcher := refreshedCoordinator(t, fetchResponse{
		data: zonesData("0001", "0005", "0010", "zzzz", "8000", "0000"),
	})
	data := c.AlarmData()

	for index, expected := range map[int]struct {
		on        bool
		available bool
	}{
		0: {true, true},
		1: {false, true},
		2: {false, false},
		3: {false, false},
		4: {false, false},
		5: {false, true},
	} {
		sensor := newPresenceSensor(c, data.Zones[index], "test")

		on, err := sensor.IsOn()
		require.NoError(t, err)
		require.Equal(t, expected.on, on, "zone %d", index)

		available, err := sensor.Available()
		require.NoError(t, err)
		require.Equal(t, expected.available, available, "zone %d", index)
	}

	t.Run("failed refresh", func(t *testing.T) {
		fetcher.responses = []fetchResponse{{err: errors.New("timeout")}}
		require.Error(t, c.Refresh(context.Background()))

		sensor := newPresenceSensor(c, data.Zones[0], "test")
		available, err := sensor.Available()
		require.NoError(t, err)
		require.False(t, available)

		on, err := sensor.IsOn()
		require.NoError(t, err)
		require.True(t, on)
	})
}

func TestPresenceSensorMissingData(t *testing.T) {
	c := newTestCoordinator(t, &fakeFetcher{})
	sensor := newPresenceSensor(c, client.Zone{Index: 3, Name: "Sala"}, "test")

	_, err := sensor.IsOn()
	require.ErrorIs(t, err, ErrAlarmDataUnavailable)
	_, err = sensor.Available()
	require.ErrorIs(t, err, ErrAlarmDataUnavailable)

	c, _ = refreshedCoordinator(t, fetchResponse{data: zonesData("0000")})
	sensor = newPresenceSensor(c, client.Zone{Index: 3, Name: "Sala"}, "test")
	_, err = sensor.IsOn()
	require.ErrorIs(t, err, ErrZoneNotFound)
	_, err = sensor.Available()
	require.ErrorIs(t, err, ErrZoneNotFound)
}

func TestPresenceSensorUpdate(t *testing.T) {
	c, fetcher := refreshedCoordinator(t, fetchResponse{data: zonesData("0001", "0010")})
	data := c.AlarmData()

	open := newPresenceSensor(c, data.Zones[0], "test")
	faulty := newPresenceSensor(c, data.Zones[1], "test")
	removeOpen := open.addedToPlatform()
	removeFaulty := faulty.addedToPlatform()
	t.Cleanup(removeOpen)
	t.Cleanup(removeFaulty)

	require.True(t, open.Motion.MotionDetected.Value())
	require.True(t, open.Active.Value())
	require.Equal(t, 0, open.Fault.Value())

	require.False(t, faulty.Motion.MotionDetected.Value())
	require.False(t, faulty.Active.Value())
	require.Equal(t, 1, faulty.Fault.Value())

	fetcher.responses = []fetchResponse{{data: zonesData("0000", "0000")}}
	require.NoError(t, c.Refresh(context.Background()))

	require.False(t, open.Motion.MotionDetected.Value())
	require.True(t, faulty.Active.Value())
	require.Equal(t, 0, faulty.Fault.Value())
}

func TestPresenceSensorOpenToUnavailable(t *testing.T) {
	for _, code := range []string{"0010", "8000", "zzzz"} {
		t.Run(code, func(t *testing.T) {
			c, fetcher := refreshedCoordinator(t, fetchResponse{data: zonesData("0001")})
			sensor := newPresenceSensor(c, c.AlarmData().Zones[0], "test")
			t.Cleanup(sensor.addedToPlatform())
			require.True(t, sensor.Motion.MotionDetected.Value())
			require.True(t, sensor.Active.Value())

			fetcher.responses = []fetchResponse{{data: zonesData(code)}}
			require.NoError(t, c.Refresh(context.Background()))

			on, err := sensor.IsOn()
			require.NoError(t, err)
			require.False(t, on)
			require.False(t, sensor.Motion.MotionDetected.Value())
			require.False(t, sensor.Active.Value())
			require.Equal(t, 1, sensor.Fault.Value())
		})
	}
}

func TestPresenceSensorZoneRemoved(t *testing.T) {
	c, fetcher := refreshedCoordinator(t, fetchResponse{data: zonesData("0000", "0001")})
	sensor := newPresenceSensor(c, c.AlarmData().Zones[1], "test")
	t.Cleanup(sensor.addedToPlatform())
	require.True(t, sensor.Motion.MotionDetected.Value())
	require.False(t, sensor.missing)

	fetcher.responses = []fetchResponse{{data: zonesData("0000")}}
	require.NoError(t, c.Refresh(context.Background()))
	require.True(t, sensor.missing)
	require.False(t, sensor.Motion.MotionDetected.Value())
	require.False(t, sensor.Active.Value())

	require.NoError(t, c.Refresh(context.Background()))
	require.True(t, sensor.missing)

	fetcher.responses = []fetchResponse{{data: zonesData("0000", "0001")}}
	require.NoError(t, c.Refresh(context.Background()))
	require.False(t, sensor.missing)
	require.True(t, sensor.Motion.MotionDetected.Value())
	require.True(t, sensor.Active.Value())
}
