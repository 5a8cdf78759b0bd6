//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"syscall/js"

	"github.com/inamate/regionedit/internal/bridge"
	"github.com/inamate/regionedit/internal/editor"
	"github.com/inamate/regionedit/internal/mirror"
	"github.com/inamate/regionedit/internal/region"
)

// canvasHost forwards compiled frames to the page. The host object may
// define onDraw(json) and onDirty(); missing callbacks are skipped.
type canvasHost struct {
	obj js.Value
}

func (h canvasHost) Redraw(cmds []editor.DrawCommand) {
	fn := h.obj.Get("onDraw")
	if fn.Type() != js.TypeFunction {
		return
	}
	data, err := editor.DrawCommandsToJSON(cmds)
	if err != nil {
		slog.Error("encode frame", "error", err)
		return
	}
	fn.Invoke(data)
}

func (h canvasHost) MarkDirty() {
	if fn := h.obj.Get("onDirty"); fn.Type() == js.TypeFunction {
		fn.Invoke()
	}
}

// jsNumber and jsToggle wrap host widget objects. A widget either exposes
// setValue(v) or a plain value property.
type jsNumber struct{ obj js.Value }

func (w jsNumber) SetValue(v float64) { setWidget(w.obj, v) }

type jsToggle struct{ obj js.Value }

func (w jsToggle) SetValue(v bool) { setWidget(w.obj, v) }

func setWidget(obj js.Value, v any) {
	if fn := obj.Get("setValue"); fn.Type() == js.TypeFunction {
		obj.Call("setValue", v)
		return
	}
	obj.Set("value", v)
}

// widgetFields reads {x, y, width, height, strength, rotation, enabled}
// widget objects into mirror fields.
func widgetFields(obj js.Value) mirror.Fields {
	var fs mirror.Fields
	if obj.Type() != js.TypeObject {
		return fs
	}
	number := func(name string) mirror.NumberInput {
		if w := obj.Get(name); w.Type() == js.TypeObject {
			return jsNumber{obj: w}
		}
		return nil
	}
	fs.X = number(region.FieldX.String())
	fs.Y = number(region.FieldY.String())
	fs.Width = number(region.FieldWidth.String())
	fs.Height = number(region.FieldHeight.String())
	fs.Strength = number(region.FieldStrength.String())
	fs.Rotation = number(region.FieldRotation.String())
	if w := obj.Get(region.FieldEnabled.String()); w.Type() == js.TypeObject {
		fs.Enabled = jsToggle{obj: w}
	}
	return fs
}

// localStorageFallback keeps the latest record per key in the page's
// localStorage.
type localStorageFallback struct{}

var _ bridge.Fallback = localStorageFallback{}

func (localStorageFallback) Put(ctx context.Context, key string, rec bridge.Record) error {
	storage := js.Global().Get("localStorage")
	if storage.Type() != js.TypeObject {
		return fmt.Errorf("localStorage unavailable")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	storage.Call("setItem", key, string(data))
	return nil
}

func (localStorageFallback) Get(key string) (*bridge.Record, bool) {
	storage := js.Global().Get("localStorage")
	if storage.Type() != js.TypeObject {
		return nil, false
	}
	item := storage.Call("getItem", key)
	if item.Type() != js.TypeString {
		return nil, false
	}
	var rec bridge.Record
	if err := json.Unmarshal([]byte(item.String()), &rec); err != nil {
		return nil, false
	}
	return &rec, true
}
