package region

import (
	"fmt"
	"strconv"
)

type bodyPart struct {
	id, label, color string
	x, y, w, h       float64
}

var bodyParts = []bodyPart{
	{"head", "Head", "#ff6b6b", 170, 10, 70, 50},
	{"neck", "Neck", "#ff9f43", 185, 60, 40, 25},
	{"face", "Face", "#feca57", 175, 15, 50, 40},
	{"torso", "Torso", "#4ecdc4", 160, 85, 80, 100},
	{"chest", "Chest", "#45b7d1", 165, 85, 70, 50},
	{"abdomen", "Abdomen", "#96ceb4", 170, 135, 60, 40},
	{"back", "Back", "#ffeaa7", 165, 85, 70, 90},
	{"waist", "Waist", "#fab1a0", 175, 175, 50, 25},
	{"left_shoulder", "Left shoulder", "#fd79a8", 120, 85, 35, 30},
	{"right_shoulder", "Right shoulder", "#fdcb6e", 245, 85, 35, 30},
	{"left_arm", "Left arm", "#6c5ce7", 95, 115, 30, 60},
	{"right_arm", "Right arm", "#a29bfe", 275, 115, 30, 60},
	{"left_forearm", "Left forearm", "#fd79a8", 80, 175, 25, 55},
	{"right_forearm", "Right forearm", "#e17055", 295, 175, 25, 55},
	{"left_hand", "Left hand", "#00b894", 70, 230, 22, 30},
	{"right_hand", "Right hand", "#00cec9", 308, 230, 22, 30},
	{"left_thigh", "Left thigh", "#74b9ff", 170, 200, 30, 60},
	{"right_thigh", "Right thigh", "#0984e3", 200, 200, 30, 60},
	{"left_calf", "Left calf", "#54a0ff", 170, 260, 25, 40},
	{"right_calf", "Right calf", "#5f27cd", 205, 260, 25, 40},
	{"left_knee", "Left knee", "#1dd1a1", 170, 255, 25, 12},
	{"right_knee", "Right knee", "#10ac84", 205, 255, 25, 12},
	{"left_foot", "Left foot", "#ff6348", 165, 300, 35, 18},
	{"right_foot", "Right foot", "#ff4757", 200, 300, 35, 18},
	{"pelvis", "Pelvis", "#7bed9f", 175, 185, 50, 35},
	{"spine", "Spine", "#dda0dd", 197, 85, 10, 100},
}

// BodyParts returns the 26 labeled body regions laid out on a 400×500 canvas.
func BodyParts() []Def {
	defs := make([]Def, len(bodyParts))
	for i, p := range bodyParts {
		defs[i] = Def{
			ID:    p.id,
			Label: p.label,
			Color: p.color,
			Default: Geometry{
				X: p.x, Y: p.y, Width: p.w, Height: p.h,
				Strength: 1, Enabled: true,
			},
		}
	}
	return defs
}

var areaColors = [...]string{"#8B7355", "#7B8B55", "#5B8B75", "#6B5B8B"}

// MultiArea returns the four conditioning areas over a 512×384 output.
func MultiArea() []Def {
	rects := [4][4]float64{
		{0, 0, 256, 192},
		{256, 0, 256, 192},
		{0, 192, 256, 192},
		{64, 128, 128, 256},
	}
	defs := make([]Def, len(rects))
	for i, r := range rects {
		defs[i] = Def{
			ID:    areaID(i),
			Label: areaLabel("Area", i),
			Color: areaColors[i],
			Default: Geometry{
				X: r[0], Y: r[1], Width: r[2], Height: r[3],
				Strength: 1, Enabled: true,
			},
		}
	}
	return defs
}

var imageColors = [...]string{"#ff6b6b", "#4ecdc4", "#45b7d1", "#f9ca24"}

// MultiImage returns four image areas tiling a 512×512 corner of a
// 1024×1024 output. Only the first starts enabled.
func MultiImage() []Def {
	defs := make([]Def, 4)
	for i := range defs {
		defs[i] = Def{
			ID:    areaID(i),
			Label: areaLabel("Image", i),
			Color: imageColors[i],
			Default: Geometry{
				X: float64(i%2) * 256, Y: float64(i/2) * 256,
				Width: 256, Height: 256,
				Strength: 1, Enabled: i == 0,
			},
		}
	}
	return defs
}

func areaID(i int) string { return strconv.Itoa(i) }

func areaLabel(kind string, i int) string { return fmt.Sprintf("%s %d", kind, i+1) }

// ScaledDefaults rescales default geometry laid out against base onto
// target. Strength and rotation are untouched.
func ScaledDefaults(defs []Def, baseW, baseH, targetW, targetH float64) []Def {
	if baseW <= 0 || baseH <= 0 {
		return defs
	}
	sx, sy := targetW/baseW, targetH/baseH
	out := make([]Def, len(defs))
	for i, d := range defs {
		g := d.Default
		g.X *= sx
		g.Width *= sx
		g.Y *= sy
		g.Height *= sy
		d.Default = g
		out[i] = d
	}
	return out
}
