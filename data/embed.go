package data

import (
	_ "embed"
)

//go:embed seed/layout.json
var SeedLayoutJSON []byte
