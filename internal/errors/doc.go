// Package errors provides structured, coded errors for vtree.
//
// Every failure that reaches a user carries a registered code that maps to
// a category, a short message and a longer explanation:
//
//   - E120-E139: configuration (vtree.json)
//   - E140-E159: command line
//   - E200-E219: tree documents and reconciliation
//   - E220-E239: snapshot storage
//   - E240-E259: wire protocol
//
// # Usage
//
//	err := errors.Errorf("E201", "route %s", route).
//	    WithSuggestion("Re-render from scratch with a fresh container")
//
//	fmt.Println(err.Format())
//
// Errors compare by code under errors.Is:
//
//	if stderrors.Is(err, errors.New("E201")) { ... }
package errors
