package session

import "gallery/internal/scene"

// Frame types sent by the server.
const (
	FrameSnapshot = "snapshot"
	FrameActor    = "actor"
	FrameDestroy  = "destroy"
	FrameAsset    = "asset"
	FrameNotice   = "notice"
	FrameDialog   = "dialog"
)

// Frame types sent by clients. A client answers a dialog frame with a dialog frame.
const (
	FrameClick = "click"
)

// Frame is the JSON envelope exchanged in both directions.
type Frame struct {
	Type      string          `json:"type"`
	User      *Participant    `json:"user,omitempty"`
	Snapshot  *scene.Snapshot `json:"snapshot,omitempty"`
	Actor     *scene.Actor    `json:"actor,omitempty"`
	ActorID   string          `json:"actorId,omitempty"`
	Asset     *scene.Asset    `json:"asset,omitempty"`
	Text      string          `json:"text,omitempty"`
	Title     string          `json:"title,omitempty"`
	Submitted bool            `json:"submitted,omitempty"`
}

// Participant identifies the connected user in the snapshot frame.
type Participant struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Locale string `json:"locale"`
}

func patchFrame(p scene.Patch) Frame {
	switch p.Kind {
	case scene.PatchActor:
		return Frame{Type: FrameActor, Actor: p.Actor}
	case scene.PatchDestroy:
		return Frame{Type: FrameDestroy, ActorID: p.ActorID}
	default:
		return Frame{Type: FrameAsset, Asset: p.Asset}
	}
}
