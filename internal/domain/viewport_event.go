package domain

import (
	"errors"
	"time"
)

// ErrUnknownSettleKind is returned for a settle event that is not one of
// load, moveend or zoomend.
var ErrUnknownSettleKind = errors.New("unknown settle kind")

// SettleKind names the map widget event that reported new bounds.
type SettleKind string

const (
	SettleLoad    SettleKind = "load"
	SettleMoveEnd SettleKind = "moveend"
	SettleZoomEnd SettleKind = "zoomend"
)

// Validate returns ErrUnknownSettleKind for anything but the three widget events.
func (k SettleKind) Validate() error {
	switch k {
	case SettleLoad, SettleMoveEnd, SettleZoomEnd:
		return nil
	}
	return ErrUnknownSettleKind
}

// ViewportEvent records one settle of the map camera.
type ViewportEvent struct {
	ID      string     `json:"id"`
	Session string     `json:"session,omitempty"`
	Kind    SettleKind `json:"kind"`
	Bounds  Bounds     `json:"bounds"`
	At      time.Time  `json:"settled_at"`
}
