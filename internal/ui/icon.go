package ui

import _ "embed"

// iconBytes is the monochrome folder glyph shown in the menu bar.
//
//go:embed icon.png
var iconBytes []byte
