package editor

import (
	"time"

	"github.com/inamate/regionedit/internal/bridge"
	"github.com/inamate/regionedit/internal/constraint"
	"github.com/inamate/regionedit/internal/mirror"
	"github.com/inamate/regionedit/internal/region"
)

// DragMode selects how a drag starts and ends.
type DragMode int

const (
	// PressRelease drags while the button is held.
	PressRelease DragMode = iota
	// Toggle starts a drag on one click and ends it on the next.
	Toggle
)

func (m DragMode) String() string {
	if m == Toggle {
		return "toggle"
	}
	return "press-release"
}

// Variant configures one editor flavour. Everything that differs between the
// editors lives here; the engine itself is shared.
type Variant struct {
	Name   string
	Prefix string // storage key and route prefix
	Action string // action name sent with each push

	Defs   []region.Def
	Layout region.Layout
	Ranges mirror.Ranges

	// Canvas is the logical extent regions are clamped against. Output is
	// the generation resolution reported in the payload. When
	// CanvasFollowsOutput is set, changing the output resolution also
	// changes the canvas.
	Canvas              constraint.Extent
	Output              constraint.Extent
	CanvasFollowsOutput bool
	Limits              constraint.SizeLimits

	DragMode     DragMode
	Handles      bool // resize and rotation handles on the selected region
	ClickToPlace bool // a click on empty canvas moves the selected region there
	SkipDisabled bool // disabled regions are not hit-tested

	// Screen-space sizes, converted through the viewport before use.
	HandleTolerance        float64
	RotationHandleDistance float64
	DragThreshold          float64
	Margin                 float64
	WidgetWidth            float64
	WidgetHeight           float64

	SyncInterval time.Duration
	ResyncDelay  time.Duration

	// ResetGeometry, when set, replaces the region default for ResetRegion.
	ResetGeometry *region.Geometry
	Selected      string
}

const (
	defaultSyncInterval = 16 * time.Millisecond
	defaultResyncDelay  = 100 * time.Millisecond
)

// BodyParts is the press-release editor with handles over a 400×500 canvas.
func BodyParts() Variant {
	return Variant{
		Name:                   "body_parts",
		Prefix:                 "human_body_parts",
		Action:                 "save_body_parts_config",
		Defs:                   region.BodyParts(),
		Layout:                 region.SixTuple,
		Ranges:                 mirror.BodyPartsRanges(),
		Canvas:                 constraint.Extent{Width: 400, Height: 500},
		Output:                 constraint.Extent{Width: 640, Height: 1024},
		Limits:                 constraint.SizeLimits{Min: 15, Max: 300},
		DragMode:               PressRelease,
		Handles:                true,
		HandleTolerance:        6,
		RotationHandleDistance: 20,
		DragThreshold:          0,
		WidgetWidth:            400,
		WidgetHeight:           500,
		SyncInterval:           defaultSyncInterval,
		ResyncDelay:            defaultResyncDelay,
		Selected:               "head",
	}
}

// MultiArea is the toggle-drag conditioning area editor.
func MultiArea() Variant {
	reset := region.Geometry{Width: 256, Height: 256, Strength: 1, Enabled: true}
	return Variant{
		Name:                "multi_area",
		Prefix:              "multi_area_conditioning",
		Action:              "save_multi_area_config",
		Defs:                region.MultiArea(),
		Layout:              region.SixTuple,
		Ranges:              mirror.MultiAreaRanges(),
		Canvas:              constraint.Extent{Width: 512, Height: 384},
		Output:              constraint.Extent{Width: 512, Height: 384},
		CanvasFollowsOutput: true,
		Limits:              constraint.SizeLimits{Min: 32},
		DragMode:            Toggle,
		ClickToPlace:        true,
		Margin:              10,
		WidgetWidth:         400,
		WidgetHeight:        250,
		SyncInterval:        defaultSyncInterval,
		ResyncDelay:         defaultResyncDelay,
		ResetGeometry:       &reset,
		Selected:            "0",
	}
}

// MultiImage is the toggle-drag image area editor with an enabled flag.
func MultiImage() Variant {
	reset := region.Geometry{Width: 256, Height: 256, Strength: 1, Enabled: true}
	return Variant{
		Name:                "multi_image",
		Prefix:              "multi_image_area",
		Action:              "save_multi_image_config",
		Defs:                region.MultiImage(),
		Layout:              region.SevenTuple,
		Ranges:              mirror.MultiImageRanges(),
		Canvas:              constraint.Extent{Width: 1024, Height: 1024},
		Output:              constraint.Extent{Width: 1024, Height: 1024},
		CanvasFollowsOutput: true,
		Limits:              constraint.SizeLimits{Min: 32, Max: 1024},
		DragMode:            Toggle,
		ClickToPlace:        true,
		SkipDisabled:        true,
		Margin:              10,
		WidgetWidth:         400,
		WidgetHeight:        300,
		SyncInterval:        defaultSyncInterval,
		ResyncDelay:         defaultResyncDelay,
		ResetGeometry:       &reset,
		Selected:            "0",
	}
}

// Target is the bridge endpoint for this variant.
func (v Variant) Target() bridge.Target {
	return bridge.Target{Prefix: v.Prefix, Action: v.Action}
}

// Variants lists the built-in variants by name.
func Variants() map[string]Variant {
	return map[string]Variant{
		"body_parts":  BodyParts(),
		"multi_area":  MultiArea(),
		"multi_image": MultiImage(),
	}
}

// VariantByName looks up a built-in variant by name or prefix.
func VariantByName(name string) (Variant, bool) {
	for _, v := range Variants() {
		if v.Name == name || v.Prefix == name {
			return v, true
		}
	}
	return Variant{}, false
}
