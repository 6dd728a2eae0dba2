// Package pagekit drives small pieces of page behaviour from Go: growl
// banners, newline/break-tag conversion and a scroll-to-top control.
//
// Pages connect over a WebSocket and are served by App. The components live in
// their own packages and only see the capabilities they need, so they can also
// be used without App:
//
//	import "github.com/pagekit-dev/pagekit"
//
//	app := pagekit.NewApp(nil)
//	http.ListenAndServe(":3000", app)
//
//	// From any handler:
//	app.Broadcast(ctx, "Deploy finished", pagekit.SeveritySuccess)
package pagekit

import (
	"github.com/pagekit-dev/pagekit/pkg/growl"
	"github.com/pagekit-dev/pagekit/pkg/markup"
	"github.com/pagekit-dev/pagekit/pkg/scrolltop"
)

// =============================================================================
// Notifications
// =============================================================================

// Severity is the visual category of a banner.
type Severity = growl.Severity

const (
	SeverityNone    = growl.SeverityNone
	SeverityInfo    = growl.SeverityInfo
	SeverityDanger  = growl.SeverityDanger
	SeveritySuccess = growl.SeveritySuccess
)

// Notifier shows banners on a page.
type Notifier = growl.Notifier

// =============================================================================
// Scroll To Top
// =============================================================================

// ScrollState is the visibility of the scroll-to-top affordance.
type ScrollState = scrolltop.State

// =============================================================================
// Markup
// =============================================================================

// NL2BR replaces every line feed with "<br />".
func NL2BR(text string) string {
	return markup.NL2BR(text)
}

// BR2NL replaces "<br />", "<br>" and "<br/>" with line feeds.
func BR2NL(text string) string {
	return markup.BR2NL(text)
}
