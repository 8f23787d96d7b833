// Package factory provides a small generic registry used to instantiate
// modules from configuration. A module is described by a type string and a
// map of raw settings; factories decode the settings into typed structs and
// return the concrete implementation.
//
//	reg := factory.NewRegistry[jumpvector.Handler]()
//	reg.Register("over", func(conf map[string]any) (jumpvector.Handler, error) {
//	    var c struct{ Threshold uint8 `json:"threshold"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return func(_, v byte) bool { return v > c.Threshold }, nil
//	})
//	h, err := reg.Create(factory.ModuleConfig{Type: "over", Conf: map[string]any{"threshold": 99}})
package factory
