//go:build js && wasm

package main

import (
	"encoding/json"
	"log/slog"
	"math"
	"syscall/js"

	"github.com/inamate/regionedit/internal/bridge"
	"github.com/inamate/regionedit/internal/editor"
	"github.com/inamate/regionedit/internal/logging"
	"github.com/inamate/regionedit/internal/mirror"
	"github.com/inamate/regionedit/internal/region"
)

// app owns one engine per graph node and one delivery channel per variant.
type app struct {
	logger   *slog.Logger
	engines  map[string]*editor.Engine
	channels map[string]*bridge.Channel // by prefix
	sender   bridge.Sender
	fallback localStorageFallback
}

var a *app

func main() {
	logger := logging.New(slog.LevelInfo)
	slog.SetDefault(logger)

	a = &app{
		logger:   logger,
		engines:  make(map[string]*editor.Engine),
		channels: make(map[string]*bridge.Channel),
	}

	api := js.Global().Get("Object").New()

	// --- Lifecycle ---
	api.Set("configure", js.FuncOf(configure))
	api.Set("variants", js.FuncOf(variants))
	api.Set("create", js.FuncOf(create))
	api.Set("remove", js.FuncOf(remove))
	api.Set("load", js.FuncOf(load))
	api.Set("resize", js.FuncOf(resize))

	// --- Pointer events ---
	api.Set("pointerDown", js.FuncOf(pointerDown))
	api.Set("pointerMove", js.FuncOf(pointerMove))
	api.Set("pointerUp", js.FuncOf(pointerUp))
	api.Set("pointerLeave", js.FuncOf(pointerLeave))

	// --- Widget edits and context actions ---
	api.Set("editField", js.FuncOf(editField))
	api.Set("select", js.FuncOf(selectRegion))
	api.Set("selectIndex", js.FuncOf(selectIndex))
	api.Set("setResolution", js.FuncOf(setResolution))
	api.Set("resetRegion", js.FuncOf(contextAction((*editor.Engine).ResetRegion)))
	api.Set("centerRegion", js.FuncOf(contextAction((*editor.Engine).CenterRegion)))
	api.Set("fillRegion", js.FuncOf(contextAction((*editor.Engine).FillRegion)))
	api.Set("setEnabled", js.FuncOf(setEnabled))

	// --- Queries ---
	api.Set("draw", js.FuncOf(draw))
	api.Set("payload", js.FuncOf(payload))
	api.Set("state", js.FuncOf(state))

	js.Global().Set("regionEditor", api)
	js.Global().Set("regionEditorReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errorResult(msg string) js.Value {
	return js.ValueOf(map[string]interface{}{"error": msg})
}

func okResult() js.Value {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func (a *app) channel(v editor.Variant) *bridge.Channel {
	if ch, ok := a.channels[v.Prefix]; ok {
		return ch
	}
	ch := bridge.NewChannel(v.Target(), a.sender, a.fallback, a.logger)
	a.channels[v.Prefix] = ch
	return ch
}

// engineArg resolves args[0] to a live engine.
func engineArg(args []js.Value) (*editor.Engine, bool) {
	if len(args) < 1 || args[0].Type() != js.TypeString {
		return nil, false
	}
	e, ok := a.engines[args[0].String()]
	return e, ok
}

func floatArg(args []js.Value, i int) (float64, bool) {
	if len(args) <= i || args[i].Type() != js.TypeNumber {
		return 0, false
	}
	v := args[i].Float()
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// --- Lifecycle ---

// configure(baseURL, secret) points delivery at a consumer service. Existing
// channels are drained and rebuilt with the new sender.
func configure(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeString {
		return errorResult("missing base URL")
	}
	secret := ""
	if len(args) > 1 && args[1].Type() == js.TypeString {
		secret = args[1].String()
	}

	old := a.channels
	a.channels = make(map[string]*bridge.Channel)
	a.sender = bridge.NewHTTPSender(args[0].String(), secret)
	for _, e := range a.engines {
		e.SetPublisher(a.channel(e.Variant()))
	}
	go func() {
		for _, ch := range old {
			ch.Close()
		}
	}()
	return okResult()
}

func variants(this js.Value, args []js.Value) interface{} {
	data, err := json.Marshal(editor.Descriptors())
	if err != nil {
		return errorResult(err.Error())
	}
	return js.ValueOf(string(data))
}

// create(nodeId, variant, host, widgets) builds an editor for a node. The
// last config saved locally for the node is restored.
func create(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("usage: create(nodeId, variant, host, widgets)")
	}
	nodeID := args[0].String()
	v, ok := editor.VariantByName(args[1].String())
	if !ok {
		return errorResult("unknown variant " + args[1].String())
	}
	host := js.Undefined()
	if len(args) > 2 {
		host = args[2]
	}
	widgets := js.Undefined()
	if len(args) > 3 {
		widgets = args[3]
	}

	if old, ok := a.engines[nodeID]; ok {
		old.Destroy()
	}

	var h editor.Host
	if host.Type() == js.TypeObject {
		h = canvasHost{obj: host}
	}
	e := editor.New(v, editor.Options{
		NodeID:    nodeID,
		Loop:      browserLoop{},
		Host:      h,
		Mirror:    mirror.New(widgetFields(widgets), v.Ranges, a.logger),
		Publisher: a.channel(v),
		Logger:    a.logger,
	})
	a.engines[nodeID] = e

	if rec, ok := a.fallback.Get(bridge.StoreKey(v.Prefix, nodeID)); ok {
		if saved, err := region.ParsePayload(rec.Config); err == nil {
			e.Load(saved)
		}
	}
	return okResult()
}

func remove(this js.Value, args []js.Value) interface{} {
	e, ok := engineArg(args)
	if !ok {
		return nil
	}
	e.Destroy()
	delete(a.engines, e.NodeID())
	return nil
}

// load(nodeId, json) applies a payload saved by the host graph.
func load(this js.Value, args []js.Value) interface{} {
	e, ok := engineArg(args)
	if !ok || len(args) < 2 {
		return errorResult("missing node or payload")
	}
	saved, err := region.ParsePayload([]byte(args[1].String()))
	if err != nil {
		return errorResult(err.Error())
	}
	e.Load(saved)
	return okResult()
}

func resize(this js.Value, args []js.Value) interface{} {
	e, ok := engineArg(args)
	w, okW := floatArg(args, 1)
	h, okH := floatArg(args, 2)
	if ok && okW && okH {
		e.SetWidgetSize(w, h)
	}
	return nil
}

// --- Pointer events ---

func pointerDown(this js.Value, args []js.Value) interface{} {
	e, ok := engineArg(args)
	x, okX := floatArg(args, 1)
	y, okY := floatArg(args, 2)
	if !ok || !okX || !okY {
		return nil
	}
	button := editor.PrimaryButton
	if b, ok := floatArg(args, 3); ok {
		button = int(b)
	}
	e.PointerDown(x, y, button)
	return nil
}

func pointerMove(this js.Value, args []js.Value) interface{} {
	e, ok := engineArg(args)
	x, okX := floatArg(args, 1)
	y, okY := floatArg(args, 2)
	if ok && okX && okY {
		e.PointerMove(x, y)
	}
	return nil
}

func pointerUp(this js.Value, args []js.Value) interface{} {
	e, ok := engineArg(args)
	x, okX := floatArg(args, 1)
	y, okY := floatArg(args, 2)
	if !ok || !okX || !okY {
		return nil
	}
	button := editor.PrimaryButton
	if b, ok := floatArg(args, 3); ok {
		button = int(b)
	}
	e.PointerUp(x, y, button)
	return nil
}

func pointerLeave(this js.Value, args []js.Value) interface{} {
	if e, ok := engineArg(args); ok {
		e.PointerLeave()
	}
	return nil
}

// --- Widget edits and context actions ---

// editField(nodeId, field, value) applies a widget change.
func editField(this js.Value, args []js.Value) interface{} {
	e, ok := engineArg(args)
	if !ok || len(args) < 3 {
		return nil
	}
	f, ok := region.ParseField(args[1].String())
	if !ok {
		return nil
	}
	switch args[2].Type() {
	case js.TypeBoolean:
		if f == region.FieldEnabled {
			e.SetEnabled(args[2].Bool())
		}
	case js.TypeNumber:
		e.EditField(f, args[2].Float())
	}
	return nil
}

func selectRegion(this js.Value, args []js.Value) interface{} {
	if e, ok := engineArg(args); ok && len(args) > 1 {
		e.Select(args[1].String())
	}
	return nil
}

func selectIndex(this js.Value, args []js.Value) interface{} {
	e, ok := engineArg(args)
	i, okI := floatArg(args, 1)
	if ok && okI {
		e.SelectIndex(int(i))
	}
	return nil
}

func setResolution(this js.Value, args []js.Value) interface{} {
	e, ok := engineArg(args)
	w, okW := floatArg(args, 1)
	h, okH := floatArg(args, 2)
	if ok && okW && okH {
		e.SetResolution(w, h)
	}
	return nil
}

func setEnabled(this js.Value, args []js.Value) interface{} {
	if e, ok := engineArg(args); ok && len(args) > 1 {
		e.SetEnabled(args[1].Truthy())
	}
	return nil
}

func contextAction(action func(*editor.Engine)) func(js.Value, []js.Value) interface{} {
	return func(this js.Value, args []js.Value) interface{} {
		if e, ok := engineArg(args); ok {
			action(e)
		}
		return nil
	}
}

// --- Queries ---

// draw(nodeId) compiles a frame immediately, for hosts that paint on their
// own schedule.
func draw(this js.Value, args []js.Value) interface{} {
	e, ok := engineArg(args)
	if !ok {
		return js.ValueOf("[]")
	}
	data, err := editor.DrawCommandsToJSON(e.Frame())
	if err != nil {
		return js.ValueOf("[]")
	}
	return js.ValueOf(data)
}

func payload(this js.Value, args []js.Value) interface{} {
	e, ok := engineArg(args)
	if !ok {
		return js.Null()
	}
	data, err := json.Marshal(e.Payload())
	if err != nil {
		return js.Null()
	}
	return js.ValueOf(string(data))
}

// state(nodeId) reports selection and drag mode for cursor feedback.
func state(this js.Value, args []js.Value) interface{} {
	e, ok := engineArg(args)
	if !ok {
		return js.Null()
	}
	s := e.Session()
	return js.ValueOf(map[string]interface{}{
		"selected": e.Selected(),
		"hovered":  e.Hovered(),
		"dragging": e.Dragging(),
		"mode":     s.Mode.String(),
	})
}
