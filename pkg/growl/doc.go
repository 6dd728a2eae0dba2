// Package growl shows transient, auto-dismissing banner notifications on a page.
//
// A Notifier builds a Message with a fixed set of display options and hands it
// to a Sink. The Sink is whatever can actually put a banner on screen: a live
// WebSocket session, a test fake, or anything that can emit a client event.
//
// # Display Options
//
// Every banner is rendered with the same options:
//
//	ele:             "body"
//	offset:          20 from "top"
//	align:           "right"
//	width:           500
//	delay:           5000ms
//	allow_dismiss:   false
//	stackup_spacing: 10
//
// Concurrent banners stack with the configured spacing; there is no limit.
//
// # Usage
//
//	n := growl.New(growl.EmitSink(session))
//	n.Success("Post saved")
//	n.Error("Could not reach the server")
//
// # Client-Side Handler
//
// EmitSink dispatches the "pagekit:growl" event. The bundled thin client
// renders it; a custom page can listen for it directly:
//
//	window.addEventListener("pagekit:growl", (e) => {
//	    const { message, type, width, delay } = e.detail;
//	    showBanner(message, type, width, delay);
//	});
package growl
