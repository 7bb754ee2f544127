package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/brutella/hap/accessory"
	client "github.com/caarlos0/homekit-comelit"
	"github.com/cenkalti/backoff/v4"
)

// Fetcher is what the coordinator needs from a comelit client.
type Fetcher interface {
	Login(ctx context.Context) error
	AlarmData(ctx context.Context) (client.AlarmData, error)
}

// Coordinator polls a VEDO alarm, caches its zones and tells listeners
// about every refresh. Sensors only read from it.
type Coordinator struct {
	cfg      Config
	fetcher  Fetcher
	serial   string
	backoffs func() backoff.BackOff

	refreshLock sync.Mutex
	logged      bool

	mu                sync.RWMutex
	data              *client.AlarmData
	lastUpdateSuccess bool
	listeners         map[int]func()
	nextListener      int
}

func NewCoordinator(cfg Config, fetcher Fetcher, serial string) *Coordinator {
	return &Coordinator{
		cfg:       cfg,
		fetcher:   fetcher,
		serial:    serial,
		listeners: map[int]func(){},
		backoffs: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.MaxInterval = time.Second * 5
			bo.MaxElapsedTime = time.Minute
			return bo
		},
	}
}

func (c *Coordinator) VedoPIN() string { return c.cfg.VedoPIN }

// AlarmData returns the last fetched snapshot, nil if nothing was fetched
// yet. Callers must not modify it.
func (c *Coordinator) AlarmData() *client.AlarmData {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data
}

func (c *Coordinator) LastUpdateSuccess() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastUpdateSuccess
}

func (c *Coordinator) DeviceInfo(zone client.Zone, kind string) accessory.Info {
	return accessory.Info{
		Name:         c.cfg.zoneName(zone.Index, zone.Name),
		SerialNumber: fmt.Sprintf("%s-%s-%d", c.serial, kind, zone.Index),
		Manufacturer: manufacturer,
		Model:        "VEDO " + kind,
	}
}

// AddListener registers fn to be called after every refresh. The returned
// func removes it.
func (c *Coordinator) AddListener(fn func()) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Refresh fetches the zones, retrying transient failures. On error the
// cached data is kept and LastUpdateSuccess becomes false.
func (c *Coordinator) Refresh(ctx context.Context) error {
	t := time.Now()
	c.refreshLock.Lock()
	defer c.refreshLock.Unlock()
	log.Debugf("got refresh lock after %s", time.Since(t))

	var data client.AlarmData
	err := backoff.RetryNotify(func() error {
		requestCounter.Inc()
		if !c.logged {
			if err := c.fetcher.Login(ctx); err != nil {
				requestErrorCounter.Inc()
				if errors.Is(err, client.ErrInvalidPIN) {
					return backoff.Permanent(err)
				}
				return err
			}
			c.logged = true
		}
		var err error
		data, err = c.fetcher.AlarmData(ctx)
		if err != nil {
			requestErrorCounter.Inc()
			if errors.Is(err, client.ErrNotLogged) {
				c.logged = false
			}
			return err
		}
		return nil
	}, backoff.WithContext(c.backoffs(), ctx), func(err error, _ time.Duration) {
		log.Error("request to alarm failed", "err", err)
	})

	c.mu.Lock()
	if err == nil {
		c.data = &data
	}
	c.lastUpdateSuccess = err == nil
	listeners := make([]func(), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	lastUpdateGauge.Set(boolAs[float64](err == nil))
	for _, fn := range listeners {
		fn()
	}
	if err != nil {
		return fmt.Errorf("could not refresh alarm data: %w", err)
	}
	return nil
}

// Run refreshes every interval until ctx is done.
func (c *Coordinator) Run(ctx context.Context, interval time.Duration) {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			if err := c.Refresh(ctx); err != nil {
				log.Error("could not get alarm data", "err", err)
			}
		}
	}
}
