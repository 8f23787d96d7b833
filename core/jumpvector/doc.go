// Package jumpvector implements a fixed-capacity jump vector mapping one byte
// function codes to handler functions.
//
// A Table is loaded once, either from a list of entries terminated by an
// entry without handler or from configuration through Build, optionally
// extended with AddHandler until its capacity is reached and then queried
// with ValidateAddress, ProcessValue or Dispatch.
//
//	t := jumpvector.New([]jumpvector.Entry{
//	    {Code: 0, Handler: func(_, v byte) bool { return v%2 == 0 }},
//	    {Code: 1, Handler: func(_, v byte) bool { return v%2 == 1 }},
//	    {},
//	}, 10)
//	t.AddHandler(9, func(_, v byte) bool { return v > 99 })
//	big := t.ProcessValue(9, 101)
//
// A Table performs no locking. Concurrent callers must serialize mutations
// against reads themselves; see core/operator for the service-side wrapper.
package jumpvector
