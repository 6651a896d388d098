// Package wasmhost implements location.Host on the browser's window
// object for programs compiled with GOOS=js GOARCH=wasm.
//
//	loc := location.New(wasmhost.New()).Listen()
//	loc.OnChange(render)
//
// All methods must be called from the JS event loop goroutine.
package wasmhost
