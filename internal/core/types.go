package core

// Size describes the dimensions of a simulation lattice.
type Size struct {
	W int
	H int
}

// Sim is the minimal contract the viewer and the sweep tool drive. Cells
// returns one display byte per lattice site; what the bytes encode is the
// simulation's business (the epidemic sim packs dominant compartment and
// intensity, see internal/sims/epidemic).
type Sim interface {
	Name() string
	Size() Size
	Reset(seed int64)
	Step()
	Cells() []uint8
}

// Factory constructs a Sim from flag-style key/value configuration.
type Factory func(cfg map[string]string) Sim

var sims = map[string]Factory{}

// Register adds a simulation factory under the provided name. Registration
// happens in package init functions; blank imports in the cmd mains pick
// the sims up.
func Register(name string, f Factory) {
	if name == "" || f == nil {
		return
	}
	sims[name] = f
}

// Sims exposes the registry of available simulation factories.
func Sims() map[string]Factory {
	return sims
}
