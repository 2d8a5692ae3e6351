// Package script applies a YAML list of edits to a session, so a frame can
// be decorated without a pointer.
package script

import (
	"errors"
	"fmt"
	"io"
	"os"

	"photobooth/internal/overlay"
	"photobooth/internal/session"
	"photobooth/pkg/geometry"

	"gopkg.in/yaml.v3"
)

// Op names an edit.
type Op string

const (
	OpAddText       Op = "add_text"
	OpAddSticker    Op = "add_sticker"
	OpText          Op = "text"
	OpDrag          Op = "drag"
	OpRotate        Op = "rotate"
	OpScale         Op = "scale"
	OpFont          Op = "font"
	OpFontSize      Op = "font_size"
	OpFrameColor    Op = "frame_color"
	OpTextColor     Op = "text_color"
	OpDrawingColor  Op = "drawing_color"
	OpBrush         Op = "brush"
	OpStroke        Op = "stroke"
	OpRemoveStroke  Op = "remove_stroke"
	OpRecolorStroke Op = "recolor_stroke"
	OpClearStrokes  Op = "clear_strokes"
	OpSelect        Op = "select"
	OpDeselect      Op = "deselect"
	OpRemove        Op = "remove"
)

var knownOps = map[Op]bool{
	OpAddText: true, OpAddSticker: true, OpText: true, OpDrag: true,
	OpRotate: true, OpScale: true, OpFont: true, OpFontSize: true,
	OpFrameColor: true, OpTextColor: true, OpDrawingColor: true,
	OpBrush: true, OpStroke: true, OpRemoveStroke: true,
	OpRecolorStroke: true, OpClearStrokes: true, OpSelect: true,
	OpDeselect: true, OpRemove: true,
}

// ErrUnknownName is returned for an overlay name no earlier step created.
var ErrUnknownName = errors.New("unknown overlay name")

// Action is one edit. Which fields matter depends on Op.
type Action struct {
	Op      Op                 `yaml:"op"`
	Name    string             `yaml:"name,omitempty"` // script-local overlay name
	Text    *string            `yaml:"text,omitempty"`
	Font    string             `yaml:"font,omitempty"`
	Size    int                `yaml:"size,omitempty"`
	Sticker string             `yaml:"sticker,omitempty"`
	At      *geometry.Point2D  `yaml:"at,omitempty"`
	By      float64            `yaml:"by,omitempty"` // degrees
	Scale   float64            `yaml:"scale,omitempty"`
	Color   string             `yaml:"color,omitempty"`
	Width   int                `yaml:"width,omitempty"`
	Points  []geometry.Point2D `yaml:"points,omitempty"`
	Index   int                `yaml:"index,omitempty"`
}

// Script is an ordered list of actions.
type Script struct {
	Actions []Action `yaml:"actions"`
}

// Parse decodes a script and checks every op is known.
func Parse(r io.Reader) (*Script, error) {
	var sc Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	for i, a := range sc.Actions {
		if !knownOps[a.Op] {
			return nil, fmt.Errorf("step %d: unknown op %q", i+1, a.Op)
		}
	}
	return &sc, nil
}

// Load parses the script file at path.
func Load(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open script: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Names maps script-local names to the overlays they created.
type Names map[string]overlay.ID

// Apply runs every action against sess in order and stops at the first
// failure.
func (sc *Script) Apply(sess *session.Session) (Names, error) {
	names := make(Names)
	for i, a := range sc.Actions {
		if err := apply(sess, names, a); err != nil {
			return names, fmt.Errorf("step %d (%s): %w", i+1, a.Op, err)
		}
	}
	return names, nil
}

func apply(sess *session.Session, names Names, a Action) error {
	switch a.Op {
	case OpAddText:
		id := sess.AddText()
		if a.Name != "" {
			names[a.Name] = id
		}
		return editText(sess, id, a)
	case OpAddSticker:
		id, err := sess.AddSticker(overlay.StickerRef(a.Sticker))
		if err != nil {
			return err
		}
		if a.Name != "" {
			names[a.Name] = id
		}
		if a.Scale != 0 {
			if _, err := sess.UpdateStickerScale(id, a.Scale); err != nil {
				return err
			}
		}
		return place(sess, id, overlay.KindSticker, a)
	case OpFrameColor:
		return sess.SetFrameColor(a.Color)
	case OpTextColor:
		return sess.SetTextColor(a.Color)
	case OpDrawingColor:
		return sess.SetDrawingColor(a.Color)
	case OpBrush:
		sess.SetBrushWidth(a.Width)
		return nil
	case OpStroke:
		return stroke(sess, a)
	case OpRemoveStroke:
		_, err := sess.RemoveStroke(a.Index)
		return err
	case OpRecolorStroke:
		_, err := sess.RecolorStroke(a.Index, a.Color)
		return err
	case OpClearStrokes:
		sess.ClearStrokes()
		return nil
	case OpDeselect:
		sess.ClearSelection()
		return nil
	}

	id, ok := names[a.Name]
	if !ok {
		return fmt.Errorf("%q: %w", a.Name, ErrUnknownName)
	}
	o, ok := sess.Overlays().Find(id)
	if !ok {
		return fmt.Errorf("%q: %w", a.Name, session.ErrUnknownOverlay)
	}
	kind := o.Kind()

	var err error
	switch a.Op {
	case OpText:
		if a.Text == nil {
			return errors.New("text is required")
		}
		_, err = sess.SetText(id, *a.Text)
	case OpDrag:
		if a.At == nil {
			return errors.New("at is required")
		}
		_, err = sess.DragOverlay(id, *a.At)
	case OpRotate:
		err = rotate(sess, id, kind, a.By)
	case OpScale:
		_, err = sess.UpdateStickerScale(id, a.Scale)
	case OpFont:
		var f overlay.Font
		if f, err = overlay.ParseFont(a.Font); err == nil {
			_, err = sess.UpdateText(id, overlay.TextUpdate{Font: &f})
		}
	case OpFontSize:
		size := a.Size
		_, err = sess.UpdateText(id, overlay.TextUpdate{FontSize: &size})
	case OpSelect:
		err = sess.Select(id)
	case OpRemove:
		if kind == overlay.KindText {
			_, err = sess.RemoveText(id)
		} else {
			_, err = sess.RemoveSticker(id)
		}
		delete(names, a.Name)
	}
	return err
}

func editText(sess *session.Session, id overlay.ID, a Action) error {
	var u overlay.TextUpdate
	u.Content = a.Text
	if a.Font != "" {
		f, err := overlay.ParseFont(a.Font)
		if err != nil {
			return err
		}
		u.Font = &f
	}
	if a.Size != 0 {
		size := a.Size
		u.FontSize = &size
	}
	if _, err := sess.UpdateText(id, u); err != nil {
		return err
	}
	return place(sess, id, overlay.KindText, a)
}

// place applies the optional position and rotation of an add action.
func place(sess *session.Session, id overlay.ID, kind overlay.Kind, a Action) error {
	if a.At != nil {
		if _, err := sess.DragOverlay(id, *a.At); err != nil {
			return err
		}
	}
	if a.By != 0 {
		return rotate(sess, id, kind, a.By)
	}
	return nil
}

func rotate(sess *session.Session, id overlay.ID, kind overlay.Kind, by float64) error {
	var err error
	if kind == overlay.KindText {
		_, err = sess.RotateText(id, by)
	} else {
		_, err = sess.RotateSticker(id, by)
	}
	return err
}

// stroke draws a polyline as one pointer gesture and restores the previous
// drawing mode.
func stroke(sess *session.Session, a Action) error {
	if len(a.Points) < 2 {
		return errors.New("a stroke needs at least two points")
	}
	if a.Color != "" {
		if err := sess.SetDrawingColor(a.Color); err != nil {
			return err
		}
	}
	if a.Width != 0 {
		sess.SetBrushWidth(a.Width)
	}
	wasDrawing := sess.DrawingMode()
	sess.SetDrawingMode(true)
	sess.PointerDown(a.Points[0])
	for _, p := range a.Points[1:] {
		sess.PointerMove(p)
	}
	sess.PointerUp()
	if !wasDrawing {
		sess.SetDrawingMode(false)
	}
	return nil
}
