package handlers

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/kilianp07/jumpvector/core/factory"
	"github.com/kilianp07/jumpvector/core/jumpvector"
	"github.com/kilianp07/jumpvector/infra/logger"
)

type thresholdConf struct {
	Threshold int `json:"threshold"`
}

type valueConf struct {
	Value int `json:"value"`
}

type rangeConf struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type bitConf struct {
	Bit int `json:"bit"`
}

type maskConf struct {
	Mask  int `json:"mask"`
	Match int `json:"match"`
}

type logConf struct {
	Level string `json:"level"`
}

// logWriter receives the output of "log" handlers.
var logWriter = zerolog.ConsoleWriter{Out: os.Stdout}

func init() {
	must("even", func(map[string]any) (jumpvector.Handler, error) {
		return Even, nil
	})
	must("odd", func(map[string]any) (jumpvector.Handler, error) {
		return Odd, nil
	})
	must("always", func(map[string]any) (jumpvector.Handler, error) {
		return func(byte, byte) bool { return true }, nil
	})
	must("never", func(map[string]any) (jumpvector.Handler, error) {
		return func(byte, byte) bool { return false }, nil
	})
	must("over", func(conf map[string]any) (jumpvector.Handler, error) {
		var c thresholdConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		t, err := toByte("threshold", c.Threshold)
		if err != nil {
			return nil, err
		}
		return Over(t), nil
	})
	must("under", func(conf map[string]any) (jumpvector.Handler, error) {
		var c thresholdConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		t, err := toByte("threshold", c.Threshold)
		if err != nil {
			return nil, err
		}
		return Under(t), nil
	})
	must("equal", func(conf map[string]any) (jumpvector.Handler, error) {
		var c valueConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		v, err := toByte("value", c.Value)
		if err != nil {
			return nil, err
		}
		return func(_, value byte) bool { return value == v }, nil
	})
	must("range", func(conf map[string]any) (jumpvector.Handler, error) {
		var c rangeConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		lo, err := toByte("min", c.Min)
		if err != nil {
			return nil, err
		}
		hi, err := toByte("max", c.Max)
		if err != nil {
			return nil, err
		}
		return Range(lo, hi)
	})
	must("bit", func(conf map[string]any) (jumpvector.Handler, error) {
		var c bitConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Bit < 0 || c.Bit > 7 {
			return nil, fmt.Errorf("bit %d out of range [0,7]", c.Bit)
		}
		m := byte(1) << c.Bit
		return func(_, value byte) bool { return value&m != 0 }, nil
	})
	must("mask", func(conf map[string]any) (jumpvector.Handler, error) {
		var c maskConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		m, err := toByte("mask", c.Mask)
		if err != nil {
			return nil, err
		}
		want, err := toByte("match", c.Match)
		if err != nil {
			return nil, err
		}
		return func(_, value byte) bool { return value&m == want }, nil
	})
	must("log", func(conf map[string]any) (jumpvector.Handler, error) {
		var c logConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return Log(logger.NewWithWriter(logWriter, "handler", "debug").Zerolog(), c.Level)
	})
}

func must(name string, f factory.Factory[jumpvector.Handler]) {
	if err := jumpvector.RegisterHandler(name, f); err != nil {
		panic(err)
	}
}

func toByte(field string, v int) (byte, error) {
	if v < 0 || v > 0xFF {
		return 0, fmt.Errorf("%s %d out of range [0,255]", field, v)
	}
	return byte(v), nil
}

// Even accepts even values.
func Even(_, value byte) bool { return value%2 == 0 }

// Odd accepts odd values.
func Odd(_, value byte) bool { return value%2 == 1 }

// Over accepts values strictly greater than t.
func Over(t byte) jumpvector.Handler {
	return func(_, value byte) bool { return value > t }
}

// Under accepts values strictly lower than t.
func Under(t byte) jumpvector.Handler {
	return func(_, value byte) bool { return value < t }
}

// Range accepts values in [lo, hi].
func Range(lo, hi byte) (jumpvector.Handler, error) {
	if lo > hi {
		return nil, fmt.Errorf("range min %d greater than max %d", lo, hi)
	}
	return func(_, value byte) bool { return value >= lo && value <= hi }, nil
}

// Log writes every call to l at the given level and accepts it. An empty
// level means info.
func Log(l zerolog.Logger, level string) (jumpvector.Handler, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		var err error
		if lvl, err = zerolog.ParseLevel(level); err != nil {
			return nil, fmt.Errorf("log handler: %w", err)
		}
	}
	return func(code, value byte) bool {
		l.WithLevel(lvl).Uint8("code", code).Uint8("value", value).Msg("jump vector call")
		return true
	}, nil
}
