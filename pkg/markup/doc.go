// Package markup converts between newline characters and HTML break tags.
//
// NL2BR and BR2NL are inverses for plain text. No escaping is performed, so
// text that already contains markup does not survive a round trip:
//
//	markup.NL2BR("a\nb")            // "a<br />b"
//	markup.BR2NL("a<br>b<br/>c")    // "a\nb\nc"
package markup
