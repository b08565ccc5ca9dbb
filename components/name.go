package components

import "github.com/yohamta/donburi"

// NameData holds the debug label given to an entity by the registry.
type NameData struct {
	Label string
}

var Name = donburi.NewComponentType[NameData]()
