package raxis

// Plugin bundles component, event and system registrations so that a feature
// can be installed on a World in one call.
type Plugin interface {
	Register(w *World) error
}

// RegisterPlugin installs a plugin on the world. Must be called before Run.
func (w *World) RegisterPlugin(p Plugin) error {
	return p.Register(w)
}
