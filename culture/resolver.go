package culture

// Resolver computes the ordered fallback chain for a requested culture.
// It is stateless apart from its fallback tag and safe for concurrent use.
type Resolver struct {
	fallback Tag
}

// NewResolver returns a resolver whose chains end in fallback.
// Pass Invariant to terminate chains at the culture-neutral resources.
func NewResolver(fallback Tag) Resolver {
	return Resolver{fallback: fallback}
}

// Fallback returns the tag appended to every chain.
func (r Resolver) Fallback() Tag {
	return r.fallback
}

// Resolve returns the chain for requested: the exact tag, its language-script
// parent when both script and region are present, the bare language, then the
// fallback tag. Entries never repeat and the chain is never empty.
func (r Resolver) Resolve(requested Tag) []Tag {
	chain := make([]Tag, 0, 4) //nolint:mnd // exact, script parent, language, fallback
	chain = appendUnique(chain, requested)

	if !requested.IsInvariant() {
		script := requested.Script()
		if script != "" && requested.Region() != "" {
			chain = appendUnique(chain, Tag{name: requested.Language().name + "-" + script})
		}
		chain = appendUnique(chain, requested.Language())
	}

	return appendUnique(chain, r.fallback)
}

func appendUnique(chain []Tag, t Tag) []Tag {
	for _, existing := range chain {
		if existing == t {
			return chain
		}
	}
	return append(chain, t)
}
