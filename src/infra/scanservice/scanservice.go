package scanservice

import (
	"errors"
	"fmt"
	"time"

	"github.com/contre95/scanrelay/src/features/config"
	"github.com/contre95/scanrelay/src/scanning"
)

var ErrUnknownMode = errors.New("unknown scanner mode")

const defaultTimeout = 30 * time.Second

// New builds the scan service selected by cfg.Mode.
func New(cfg config.Scanner) (scanning.ScanService, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	switch cfg.Mode {
	case "", "log":
		return NewLogService(), nil
	case "exec":
		return NewExecService(cfg.Command, timeout)
	case "http":
		return NewHTTPService(cfg.URL, timeout)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, cfg.Mode)
	}
}

// payload is what remote scan services receive.
type payload struct {
	Kind   scanning.CommandKind `json:"kind"`
	Extras map[string]string    `json:"extras"`
}

func newPayload(cmd scanning.Command) payload {
	return payload{Kind: cmd.Kind, Extras: cmd.Bundle()}
}
