package entity

import "strings"

// deobfuscationReplacements are applied, in order, to a scratch copy of the
// input text before any pattern matching runs. Originals are preserved
// separately so extracted entities can still report their raw form.
var deobfuscationReplacements = []struct {
	old string
	new string
}{
	{"hxxps", "https"},
	{"hxxp", "http"},
	{"[.]", "."},
	{"(.)", "."},
	{"{dot}", "."},
	{" dot ", "."},
	{"[at]", "@"},
	{"(at)", "@"},
	{" at ", "@"},
}

// zeroWidthChars are homoglyph/invisible characters scammers insert to
// break naive regex matching (zero-width space, ZWNJ, ZWJ, BOM).
var zeroWidthChars = []string{"\xe2\x80\x8b", "\xe2\x80\x8c", "\xe2\x80\x8d", "\xef\xbb\xbf"}

// deobfuscate returns a scratch copy of text with common obfuscation
// tricks reversed. The caller keeps the original text for the `raw` field
// of any entity it extracts.
func deobfuscate(text string) string {
	out := text
	for _, zw := range zeroWidthChars {
		out = strings.ReplaceAll(out, zw, "")
	}
	for _, r := range deobfuscationReplacements {
		out = strings.ReplaceAll(out, r.old, r.new)
	}
	return out
}
