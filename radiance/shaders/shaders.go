package shaders

import (
	_ "embed"
)

//go:embed cascade.wgsl
var CascadeWGSL string
