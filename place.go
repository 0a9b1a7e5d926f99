package cpn

// PlaceIcon decorates places in diagrams.
const PlaceIcon = "⬭"

// Place represents where tokens can be mapped to by a Marking.
type Place struct {
	id string
	// name is descriptive and usually, but not necessarily, unique within a net.
	name string
	icon string
}

type PlaceOption func(*Place)

func WithPlaceID(id string) PlaceOption {
	return func(p *Place) {
		p.id = id
	}
}

// WithPlaceIcon sets the icon shown next to the name. An empty icon hides it.
func WithPlaceIcon(icon string) PlaceOption {
	return func(p *Place) {
		p.icon = icon
	}
}

// NewPlace creates a place. An empty name defaults to the place's id.
func NewPlace(name string, opts ...PlaceOption) *Place {
	p := &Place{
		name: name,
		icon: PlaceIcon,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.id == "" {
		p.id = ID()
	}
	if p.name == "" {
		p.name = p.id
	}
	return p
}

func (p *Place) ID() string { return p.id }

func (p *Place) Name() string { return p.name }

func (p *Place) Icon() string { return p.icon }

func (p *Place) Kind() NodeKind { return PlaceNode }

func (p *Place) String() string {
	if p.icon != "" {
		return p.icon + " " + p.name
	}
	if p.name != p.id {
		return p.name
	}
	return "<Place id=" + p.id + ">"
}

// Out starts an arc from this place to a transition supplied later with To.
func (p *Place) Out(weight ColorSet) *ArcPT {
	return &ArcPT{src: p, weight: defaultWeight(weight)}
}

// In starts an arc into this place from a transition supplied later with From.
func (p *Place) In(weight ColorSet) *ArcTP {
	return &ArcTP{dest: p, weight: defaultWeight(weight)}
}
