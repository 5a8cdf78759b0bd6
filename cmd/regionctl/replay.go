package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/inamate/regionedit/internal/bridge"
	"github.com/inamate/regionedit/internal/editor"
	"github.com/inamate/regionedit/internal/eventloop"
	"github.com/inamate/regionedit/internal/logging"
	"github.com/inamate/regionedit/internal/region"
	"github.com/inamate/regionedit/internal/schedule"
)

// Script is a pointer session in widget pixels.
//
//	variant: multi_area
//	widget: {width: 532, height: 404}
//	steps:
//	  - down: [100, 100]
//	  - move: [140, 120]
//	  - wait: 50ms
//	  - up: [140, 120]
//	  - edit: {field: strength, value: 0.5}
type Script struct {
	Variant    string `yaml:"variant"`
	NodeID     string `yaml:"node_id"`
	Widget     *Size  `yaml:"widget"`
	Resolution *Size  `yaml:"resolution"`
	Steps      []Step `yaml:"steps"`
}

type Size struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Step holds exactly one action.
type Step struct {
	Down        []float64 `yaml:"down"`
	Move        []float64 `yaml:"move"`
	Up          []float64 `yaml:"up"`
	Leave       bool      `yaml:"leave"`
	Wait        string    `yaml:"wait"`
	Select      string    `yaml:"select"`
	SelectIndex *int      `yaml:"select_index"`
	Edit        *Edit     `yaml:"edit"`
	Action      string    `yaml:"action"`
}

type Edit struct {
	Field string  `yaml:"field"`
	Value float64 `yaml:"value"`
}

var errBadStep = errors.New("invalid step")

func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if s.NodeID == "" {
		s.NodeID = "replay"
	}
	for i, st := range s.Steps {
		if err := st.validate(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return &s, nil
}

func (st Step) validate() error {
	n := 0
	for _, pt := range [][]float64{st.Down, st.Move, st.Up} {
		if pt == nil {
			continue
		}
		n++
		if len(pt) < 2 || len(pt) > 3 {
			return fmt.Errorf("%w: points are [x, y] or [x, y, button]", errBadStep)
		}
	}
	if st.Leave {
		n++
	}
	if st.Wait != "" {
		n++
		if _, err := time.ParseDuration(st.Wait); err != nil {
			return fmt.Errorf("%w: wait: %v", errBadStep, err)
		}
	}
	if st.Select != "" {
		n++
	}
	if st.SelectIndex != nil {
		n++
	}
	if st.Edit != nil {
		n++
		if _, ok := region.ParseField(st.Edit.Field); !ok {
			return fmt.Errorf("%w: unknown field %q", errBadStep, st.Edit.Field)
		}
	}
	if st.Action != "" {
		n++
		if _, ok := contextActions[st.Action]; !ok {
			return fmt.Errorf("%w: unknown action %q", errBadStep, st.Action)
		}
	}
	if n != 1 {
		return fmt.Errorf("%w: want exactly one action, got %d", errBadStep, n)
	}
	return nil
}

var contextActions = map[string]func(*editor.Engine){
	"reset":   (*editor.Engine).ResetRegion,
	"center":  (*editor.Engine).CenterRegion,
	"fill":    (*editor.Engine).FillRegion,
	"enable":  func(e *editor.Engine) { e.SetEnabled(true) },
	"disable": func(e *editor.Engine) { e.SetEnabled(false) },
}

func button(pt []float64) int {
	if len(pt) == 3 {
		return int(pt[2])
	}
	return editor.PrimaryButton
}

func (st Step) apply(e *editor.Engine) {
	switch {
	case st.Down != nil:
		e.PointerDown(st.Down[0], st.Down[1], button(st.Down))
	case st.Move != nil:
		e.PointerMove(st.Move[0], st.Move[1])
	case st.Up != nil:
		e.PointerUp(st.Up[0], st.Up[1], button(st.Up))
	case st.Leave:
		e.PointerLeave()
	case st.Select != "":
		e.Select(st.Select)
	case st.SelectIndex != nil:
		e.SelectIndex(*st.SelectIndex)
	case st.Edit != nil:
		f, _ := region.ParseField(st.Edit.Field)
		if f == region.FieldEnabled {
			e.SetEnabled(st.Edit.Value != 0)
			return
		}
		e.EditField(f, st.Edit.Value)
	case st.Action != "":
		contextActions[st.Action](e)
	}
}

// driver runs engine calls on a loop and moves that loop's time.
type driver interface {
	schedule.Loop
	do(fn func())
	wait(d time.Duration)
	settle(v editor.Variant)
}

type manualDriver struct {
	*eventloop.Manual
}

func (d manualDriver) do(fn func()) {
	fn()
	d.Frame()
}

func (d manualDriver) wait(dur time.Duration) {
	d.Advance(dur)
	d.Frame()
}

func (d manualDriver) settle(v editor.Variant) {
	d.Advance(v.SyncInterval + v.ResyncDelay + eventloop.FrameInterval)
	d.Frame()
}

// serialDriver replays in wall-clock time on a goroutine-owned loop.
type serialDriver struct {
	*eventloop.Serial
}

func (d serialDriver) do(fn func()) {
	done := make(chan struct{})
	if !d.Post(func() { defer close(done); fn() }) {
		return
	}
	<-done
}

func (d serialDriver) wait(dur time.Duration) { time.Sleep(dur) }

func (d serialDriver) settle(v editor.Variant) {
	time.Sleep(v.SyncInterval + v.ResyncDelay + 2*eventloop.FrameInterval)
}

// recorder counts pushes and keeps the newest payload, then forwards to
// next when set.
type recorder struct {
	pushes int
	last   region.Payload
	next   editor.Publisher
}

func (r *recorder) Push(nodeID string, p region.Payload) {
	r.pushes++
	r.last = p
	if r.next != nil {
		r.next.Push(nodeID, p)
	}
}

type frameCounter struct{ frames, dirty int }

func (h *frameCounter) Redraw([]editor.DrawCommand) { h.frames++ }
func (h *frameCounter) MarkDirty()                  { h.dirty++ }

// ReplayResult is what replay prints.
type ReplayResult struct {
	Variant string         `json:"variant" yaml:"variant"`
	NodeID  string         `json:"node_id" yaml:"node_id"`
	Pushes  int            `json:"pushes" yaml:"pushes"`
	Frames  int            `json:"frames" yaml:"frames"`
	Payload region.Payload `json:"payload" yaml:"payload"`
}

// Replay runs the script on d. publisher, when set, also receives every
// push.
func Replay(s *Script, d driver, publisher editor.Publisher) (*ReplayResult, error) {
	v, err := lookupVariant(s.Variant)
	if err != nil {
		return nil, err
	}

	rec := &recorder{next: publisher}
	host := &frameCounter{}
	var (
		e      *editor.Engine
		result ReplayResult
	)
	d.do(func() {
		e = editor.New(v, editor.Options{
			NodeID:    s.NodeID,
			Loop:      d,
			Host:      host,
			Publisher: rec,
			Logger:    logging.Nop(),
		})
		if s.Widget != nil {
			e.SetWidgetSize(s.Widget.Width, s.Widget.Height)
		}
		if s.Resolution != nil {
			e.SetResolution(s.Resolution.Width, s.Resolution.Height)
		}
	})

	for _, st := range s.Steps {
		if st.Wait != "" {
			dur, _ := time.ParseDuration(st.Wait)
			d.wait(dur)
			continue
		}
		d.do(func() { st.apply(e) })
	}
	d.settle(v)

	d.do(func() {
		result = ReplayResult{
			Variant: v.Name,
			NodeID:  s.NodeID,
			Pushes:  rec.pushes,
			Frames:  host.frames,
			Payload: e.Payload(),
		}
		e.Destroy()
	})
	return &result, nil
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <script.yaml>",
		Short: "Run a pointer script through a headless editor and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			script, err := ParseScript(data)
			if err != nil {
				return err
			}
			if v, _ := cmd.Flags().GetString("variant"); v != "" {
				script.Variant = v
			}

			var publisher editor.Publisher
			if url, _ := cmd.Flags().GetString("push"); url != "" {
				v, err := lookupVariant(script.Variant)
				if err != nil {
					return err
				}
				secret, _ := cmd.Flags().GetString("secret")
				ch := bridge.NewChannel(v.Target(), bridge.NewHTTPSender(url, secret), nil, logging.New(slog.LevelInfo))
				defer ch.Close()
				publisher = ch
			}

			var d driver
			if realtime, _ := cmd.Flags().GetBool("realtime"); realtime {
				serial := eventloop.NewSerial(eventloop.FrameInterval, logging.Nop())
				ctx, cancel := context.WithCancel(cmd.Context())
				defer cancel()
				go serial.Run(ctx)
				d = serialDriver{serial}
			} else {
				d = manualDriver{eventloop.NewManual(time.Time{})}
			}

			result, err := Replay(script, d, publisher)
			if err != nil {
				return err
			}
			return emit(cmd, result)
		},
	}
	cmd.Flags().String("variant", "", "Override the script's variant")
	cmd.Flags().Bool("realtime", false, "Replay in wall-clock time on a live loop")
	cmd.Flags().String("push", "", "Also push every payload to this consumer service URL")
	cmd.Flags().String("secret", "", "Shared secret for bearer tokens when pushing")
	return cmd
}
