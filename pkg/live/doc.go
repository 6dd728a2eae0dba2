// Package live connects page components to a browser over a WebSocket.
//
// Each connected page is a Session. A Session is the host for the page
// components: it emits client events (growl.Emitter), reports and animates the
// scroll offset (scrolltop.Viewport) and delivers scroll and click events
// (scrolltop.Events).
//
// # Wire Format
//
// Frames are JSON text messages with a "t" discriminator.
//
// Page to server:
//
//	{"t":"scroll","top":420}
//	{"t":"click","sel":"a#scroll-to-top"}
//
// Server to page:
//
//	{"t":"emit","name":"pagekit:growl","data":{...}}
//	{"t":"class","sel":"a#scroll-to-top","class":"visible","on":true}
//	{"t":"animate","top":0,"ms":600}
//	{"t":"listen","sel":"a#scroll-to-top"}
//	{"t":"unlisten","sel":"a#scroll-to-top"}
//
// # Usage
//
//	hub := live.NewHub()
//	r.Handle("/_live", live.NewHandler(hub, live.DefaultConfig(), func(s *live.Session) func() {
//	    return scrolltop.New(s).Attach(s)
//	}))
package live
