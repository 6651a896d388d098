// Package errors provides coded, actionable errors for the lokation CLI
// and server.
//
// Every error carries a code (e.g. "E121") that maps to a registered
// template with a category, a short message and a longer detail. Callers
// add what they know: the offending file and line, a suggestion, the
// wrapped cause.
//
// # Error Categories
//
//   - protocol: wire protocol and handshake failures
//   - config: configuration file problems
//   - cli: invalid command-line input
//   - navigation: URLs the adapter cannot work with
//
// # Usage
//
//	err := errors.New("E120").
//	    WithLocation("lokation.toml", 4, 9).
//	    WithSuggestion("Quote string values").
//	    Wrap(cause)
//
//	fmt.Println(err.Format())
//	// ERROR E120: Invalid configuration file
//	//
//	//   lokation.toml:4:9
//	//
//	//        3 │ [server]
//	//   →    4 │ address = :8080
//	//          │         ^
//	//        5 │
//	//
//	//   Hint: Quote string values
package errors
