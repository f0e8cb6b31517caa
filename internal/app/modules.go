package app

import (
	"github.com/vk/factorgrid/internal/registry"
	"github.com/vk/factorgrid/modules/print"
)

// coreModules is the definitive list of all function modules that are
// compiled into the factorgrid binary.
var coreModules = []registry.Module{
	&print.Module{},
}
