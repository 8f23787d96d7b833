package jumpvector

import (
	"fmt"

	"github.com/kilianp07/jumpvector/core/factory"
)

// MaxCode is the largest function code a configured entry may use.
const MaxCode = 0xFF

// HandlerConfig binds a function code to a handler type and its settings.
type HandlerConfig struct {
	Code uint32         `json:"code"`
	Type string         `json:"type"`
	Conf map[string]any `json:"conf"`
}

// TableConfig describes a table loaded from configuration.
type TableConfig struct {
	Capacity int             `json:"capacity"`
	Handlers []HandlerConfig `json:"handlers"`
}

var handlerRegistry = factory.NewRegistry[Handler]()

// RegisterHandler adds a handler factory identified by name.
func RegisterHandler(name string, f factory.Factory[Handler]) error {
	return handlerRegistry.Register(name, f)
}

// NewHandler creates a Handler from its module configuration.
func NewHandler(cfg factory.ModuleConfig) (Handler, error) {
	h, err := handlerRegistry.Create(cfg)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, fmt.Errorf("factory %s returned nil handler", cfg.Type)
	}
	return h, nil
}

// Build creates the handlers listed in cfg, in order, and loads them into a
// new Table sized by cfg.Capacity.
func Build(cfg TableConfig) (*Table, error) {
	if cfg.Capacity < 0 {
		return nil, fmt.Errorf("negative table capacity %d", cfg.Capacity)
	}
	if len(cfg.Handlers) == 0 {
		return New(nil, cfg.Capacity), nil
	}
	entries := make([]Entry, 0, len(cfg.Handlers)+1)
	for i, hc := range cfg.Handlers {
		if hc.Code > MaxCode {
			return nil, fmt.Errorf("handler %d: code %d out of range", i, hc.Code)
		}
		h, err := NewHandler(factory.ModuleConfig{Type: hc.Type, Conf: hc.Conf})
		if err != nil {
			return nil, fmt.Errorf("handler %d (code %d): %w", i, hc.Code, err)
		}
		entries = append(entries, Entry{Code: hc.Code, Handler: h})
	}
	entries = append(entries, Entry{})
	return New(entries, cfg.Capacity), nil
}

// HandlerTypes lists the registered handler type names.
func HandlerTypes() []string { return handlerRegistry.Names() }
