//go:build js && wasm

// Command backdrop-wasm renders the shader library behind a web page and exposes shader selection
// to the page's JavaScript.
package main

import (
	"log/slog"
	"os"
	"syscall/js"

	"github.com/Carmen-Shannon/oxy-backdrop/common"
	"github.com/Carmen-Shannon/oxy-backdrop/engine"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/window"
)

// noShader is reported to the page before the engine exists.
const noShader = "none"

// host owns the engine once it has been built. Every callback runs on the browser's main thread.
type host struct {
	eng engine.Engine
}

func main() {
	common.SetLogger(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	h := &host{}
	h.export()

	win, err := window.NewWindow(window.WithTitle("oxy-backdrop"))
	if err != nil {
		common.Logger().Error("window", "error", err)
		return
	}
	eng, err := engine.NewEngine(engine.WithWindow(win))
	if err != nil {
		common.Logger().Error("engine", "error", err)
		return
	}
	h.eng = eng

	if setup := js.Global().Get("setupShaderSwitcher"); setup.Type() == js.TypeFunction {
		setup.Invoke(stringsToJS(eng.ListShaders()))
	}

	if err := eng.Run(); err != nil {
		common.Logger().Error("run", "error", err)
	}
}

// export installs the selection functions on the global object.
func (h *host) export() {
	g := js.Global()
	g.Set("listShaders", js.FuncOf(func(js.Value, []js.Value) any {
		if h.eng == nil {
			return js.ValueOf([]any{})
		}
		return stringsToJS(h.eng.ListShaders())
	}))
	g.Set("selectShader", js.FuncOf(func(_ js.Value, args []js.Value) any {
		if h.eng == nil || len(args) == 0 {
			return false
		}
		return h.eng.SelectShader(args[0].String())
	}))
	g.Set("activeShader", js.FuncOf(func(js.Value, []js.Value) any {
		if h.eng == nil || h.eng.ActiveShader() == "" {
			return noShader
		}
		return h.eng.ActiveShader()
	}))
	g.Set("nextShader", js.FuncOf(func(js.Value, []js.Value) any {
		if h.eng == nil {
			return noShader
		}
		return h.eng.NextShader()
	}))
	g.Set("runCommand", js.FuncOf(func(_ js.Value, args []js.Value) any {
		if h.eng == nil {
			return "engine not ready"
		}
		if len(args) == 0 {
			return ""
		}
		res, err := h.eng.Execute(args[0].String())
		if err != nil {
			return err.Error()
		}
		return res.Output
	}))
}

func stringsToJS(names []string) js.Value {
	out := make([]any, len(names))
	for i, n := range names {
		out[i] = n
	}
	return js.ValueOf(out)
}
