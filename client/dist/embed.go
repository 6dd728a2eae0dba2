package clientdist

import _ "embed"

// PagekitJS is the thin client that hosts live sessions in the browser.
//
// It is served at "/pagekit.js".
//go:embed pagekit.js
var PagekitJS []byte

// IndexHTML is the demo page template. It is executed with html/template.
//go:embed index.html
var IndexHTML string
