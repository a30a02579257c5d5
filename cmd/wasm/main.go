//go:build js && wasm

// Command wasm runs the profiler in a browser.
//
// Loading the module defines generateProfile on the global object. It takes a
// single JSON string holding the target distance and the raw capture rows,
// and returns the generated profile with its summary as a JSON string:
//
//	const out = JSON.parse(generateProfile(JSON.stringify({
//		distance: 5,
//		samples: [{output: 1, pos: 0, rate: 0, time: 0}, ...],
//	})))
//
// Invalid input is reported as an object with an error field instead.
package main

import (
	"syscall/js"

	"github.com/cxd309/motion-profiler/internal/engine"
)

func main() {
	js.Global().Set("generateProfile", js.FuncOf(generateProfile))
	// Exported functions stop working once main returns.
	<-make(chan struct{})
}

func generateProfile(_ js.Value, args []js.Value) any {
	if len(args) == 0 || args[0].Type() != js.TypeString {
		return map[string]any{"error": "generateProfile expects one JSON string argument"}
	}

	out, err := engine.RunJSON(args[0].String())
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	return out
}
