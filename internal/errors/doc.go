// Package errors provides coded, categorised errors for pagekit.
//
// Page components never fail; these errors cover the infrastructure around
// them: loading configuration and talking to a live page.
//
//	err := errors.New("E101").
//	    WithDetail(`port 70000 is out of range`).
//	    WithSuggestion("Use a port between 1 and 65535").
//	    Wrap(cause)
//
//	fmt.Println(err.Format())
//	// ERROR E101: Invalid configuration
//	//
//	//   port 70000 is out of range
//	//
//	//   Hint: Use a port between 1 and 65535
//
// Errors with the same code match under errors.Is, so a registered error can
// serve as a sentinel:
//
//	var ErrSessionClosed = errors.New("E201")
//	...
//	if errors.Is(err, ErrSessionClosed) { ... }
package errors
