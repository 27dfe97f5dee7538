package webgl

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	"github.com/pkg/errors"
)

// Device is an opened logical GPU device together with its queue.
type Device struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	info     gputypes.AdapterInfo
	limits   gputypes.Limits
}

// OpenDevice opens the first adapter exposed by backend.
func OpenDevice(backend hal.Backend) (*Device, error) {
	instance, err := backend.CreateInstance(nil)
	if err != nil {
		return nil, errors.Wrap(err, "webgl: create instance")
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	exposed := adapters[0]

	limits := exposed.Capabilities.Limits
	if limits.MaxTextureDimension2D == 0 {
		limits = gputypes.DefaultLimits()
	}

	open, err := exposed.Adapter.Open(0, limits)
	if err != nil {
		instance.Destroy()
		return nil, errors.Wrapf(err, "webgl: open adapter %q", exposed.Info.Name)
	}

	log.WithField("adapter", exposed.Info.Name).Debug("device opened")
	return &Device{
		instance: instance,
		device:   open.Device,
		queue:    open.Queue,
		info:     exposed.Info,
		limits:   limits,
	}, nil
}

// OpenHeadless opens the no-op backend. It validates and tracks resources
// without a graphics driver.
func OpenHeadless() (*Device, error) {
	return OpenDevice(noop.API{})
}

// Info returns the adapter description.
func (d *Device) Info() gputypes.AdapterInfo {
	return d.info
}

// Limits returns the limits the device was opened with.
func (d *Device) Limits() gputypes.Limits {
	return d.limits
}

// Close releases the device and its instance.
// Resources created on the device must be deleted first.
func (d *Device) Close() {
	if d.device != nil {
		d.device.Destroy()
		d.device = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
}
