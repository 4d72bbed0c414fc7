package scene

// Kind says whether a resource is an image or a sound.
type Kind int

const (
	KindImage Kind = iota
	KindSound
)

func (k Kind) String() string {
	if k == KindSound {
		return "sound"
	}
	return "image"
}

// Resource is a media payload attached to a scene. The zero value (apart
// from Kind) is the empty resource.
type Resource struct {
	Kind Kind
	Name string // archive path or URI of the media
	Data []byte
}

// Empty reports whether the resource carries no media.
func (r Resource) Empty() bool {
	return r.Name == "" && len(r.Data) == 0
}
