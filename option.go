package conveyor

// PartOption configures how a fragment or reference reads its content (functional options pattern).
type PartOption func(*content)

// WithTranslate enables or disables @@NAME@@ substitution in Lines.
func WithTranslate(translate bool) PartOption {
	return func(c *content) {
		c.translate = translate
	}
}

// WithResolver sets the token resolver. Nil restores EnvResolver.
func WithResolver(r Resolver) PartOption {
	return func(c *content) {
		c.resolver = r
	}
}

// BlueprintOption configures a Blueprint.
type BlueprintOption func(*Blueprint)

// WithLinker sets the durable-link implementation used by persisted references. Default is SymlinkLinker.
func WithLinker(l Linker) BlueprintOption {
	return func(b *Blueprint) {
		if l != nil {
			b.linker = l
		}
	}
}

// WithPartOptions sets options applied to every reference the blueprint loads or attaches.
func WithPartOptions(opts ...PartOption) BlueprintOption {
	return func(b *Blueprint) {
		b.partOpts = append(b.partOpts, opts...)
	}
}
