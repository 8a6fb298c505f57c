package assets

// Bundle groups the assets produced by one load operation. It does not own
// its contents; ownership is tracked by the assets' reference counts. The
// zero Bundle is the empty sentinel returned on failure.
type Bundle struct {
	contents []Asset
}

// NewBundle groups assets. All contents are expected to share one Type.
func NewBundle(contents ...Asset) Bundle {
	out := make([]Asset, 0, len(contents))
	for _, a := range contents {
		if a != nil {
			out = append(out, a)
		}
	}
	if len(out) == 0 {
		return Bundle{}
	}
	return Bundle{contents: out}
}

func (b Bundle) IsEmpty() bool {
	return len(b.contents) == 0
}

func (b Bundle) Len() int {
	return len(b.contents)
}

// Contents returns a copy of the grouped assets.
func (b Bundle) Contents() []Asset {
	return append([]Asset(nil), b.contents...)
}

// First returns the first asset or nil for an empty bundle.
func (b Bundle) First() Asset {
	if b.IsEmpty() {
		return nil
	}
	return b.contents[0]
}

// Type is the type of the bundle's contents, 0 when empty.
func (b Bundle) Type() Type {
	if b.IsEmpty() {
		return 0
	}
	return b.contents[0].Type()
}

func (b Bundle) CacheKey() string {
	if b.IsEmpty() {
		return ""
	}
	return b.contents[0].CacheKey()
}

// Contains reports whether a is part of the bundle, by identity.
func (b Bundle) Contains(a Asset) bool {
	for _, c := range b.contents {
		if c == a {
			return true
		}
	}
	return false
}

// Same reports whether both bundles group the identical asset objects in the
// same order.
func (b Bundle) Same(other Bundle) bool {
	if len(b.contents) != len(other.contents) {
		return false
	}
	for i := range b.contents {
		if b.contents[i] != other.contents[i] {
			return false
		}
	}
	return true
}

func (b Bundle) setCacheKey(key string) {
	for _, a := range b.contents {
		a.base().setCacheKey(key)
	}
}

func (b Bundle) setCached(cached bool) {
	for _, a := range b.contents {
		a.base().setCached(cached)
	}
}

func (b Bundle) grab() {
	for _, a := range b.contents {
		a.Grab()
	}
}

func (b Bundle) drop() {
	for _, a := range b.contents {
		a.Drop()
	}
}
