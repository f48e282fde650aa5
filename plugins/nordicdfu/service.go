package nordicdfu

import (
	"context"
	"errors"

	"github.com/joshp123/dfuhost/internal/core"
)

var (
	ErrInvalidArguments = errors.New("nordicdfu: invalid arguments")
	ErrBusy             = errors.New("nordicdfu: an update is already in progress")
	ErrUnavailable      = errors.New("nordicdfu: no bluetooth updater available")
)

// Updater transfers a firmware package to a device over Bluetooth LE.
type Updater interface {
	Start(ctx context.Context, req StartRequest) error
}

type unavailableUpdater struct{}

func (unavailableUpdater) Start(context.Context, StartRequest) error {
	return ErrUnavailable
}

func (p *Plugin) handle(ctx context.Context, call core.MethodCall) (any, error) {
	switch call.Method {
	case "startDfu":
		return p.startDfu(ctx, call.Arguments)
	default:
		return nil, core.ErrNotImplemented
	}
}

// startDfu runs one update and returns the device address once it completes.
func (p *Plugin) startDfu(ctx context.Context, args map[string]any) (any, error) {
	req, err := parseStartRequest(args)
	if err != nil {
		p.metrics.observe(resultInvalid)
		return nil, err
	}

	if !p.busy.CompareAndSwap(false, true) {
		p.metrics.observe(resultBusy)
		return nil, ErrBusy
	}
	defer p.busy.Store(false)

	p.metrics.inProgress.Set(1)
	defer p.metrics.inProgress.Set(0)

	if err := p.updater.Start(ctx, req); err != nil {
		p.metrics.observe(resultError)
		return nil, err
	}
	p.metrics.observe(resultOK)
	return req.Address, nil
}
