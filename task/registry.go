package task

// registry is the single id source for every kind and records which kind
// currently owns each id.
type registry struct {
	last  int64
	kinds map[int64]Kind
}

func newRegistry() *registry {
	return &registry{kinds: make(map[int64]Kind)}
}

// nextID mints an id greater than every id issued or reserved so far.
func (r *registry) nextID() int64 {
	r.last++
	return r.last
}

// peek returns the id the next call to nextID will mint.
func (r *registry) peek() int64 {
	return r.last + 1
}

// reserve advances the generator so that id is never minted.
func (r *registry) reserve(id int64) {
	if id > r.last {
		r.last = id
	}
}

func (r *registry) kindOf(id int64) Kind {
	return r.kinds[id]
}

func (r *registry) claim(id int64, kind Kind) {
	r.kinds[id] = kind
	r.reserve(id)
}

func (r *registry) release(id int64) {
	delete(r.kinds, id)
}
