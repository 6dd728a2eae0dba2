package live

import "time"

// Frame types sent by the client.
const (
	FrameScroll = "scroll"
	FrameClick  = "click"
)

// Frame types sent by the server.
const (
	FrameEmit     = "emit"
	FrameClass    = "class"
	FrameAnimate  = "animate"
	FrameListen   = "listen"
	FrameUnlisten = "unlisten"
)

// ClientFrame is a message from the page.
type ClientFrame struct {
	Type     string `json:"t"`
	Top      int    `json:"top,omitempty"`
	Selector string `json:"sel,omitempty"`
}

// ServerFrame is a message to the page. Only the fields relevant to Type are set.
type ServerFrame struct {
	Type     string `json:"t"`
	Name     string `json:"name,omitempty"`
	Data     any    `json:"data,omitempty"`
	Selector string `json:"sel,omitempty"`
	Class    string `json:"class,omitempty"`
	On       *bool  `json:"on,omitempty"`
	Top      *int   `json:"top,omitempty"`
	Millis   int64  `json:"ms,omitempty"`
}

func emitFrame(name string, data any) ServerFrame {
	return ServerFrame{Type: FrameEmit, Name: name, Data: data}
}

func classFrame(selector, class string, on bool) ServerFrame {
	return ServerFrame{Type: FrameClass, Selector: selector, Class: class, On: &on}
}

func animateFrame(top int, d time.Duration) ServerFrame {
	return ServerFrame{Type: FrameAnimate, Top: &top, Millis: d.Milliseconds()}
}

func listenFrame(selector string, listen bool) ServerFrame {
	if listen {
		return ServerFrame{Type: FrameListen, Selector: selector}
	}
	return ServerFrame{Type: FrameUnlisten, Selector: selector}
}
