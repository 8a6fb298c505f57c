package assets

// CachePolicy is the 2-bit cache control applied at one hierarchy level.
type CachePolicy uint8

const (
	// CacheEverything looks the key up in the cache and inserts fresh loads.
	CacheEverything CachePolicy = 0b00
	// DontCache loads (or reuses a cached hit) but never inserts the result.
	DontCache CachePolicy = 0b01
	// Duplicate skips the lookup and the insert, always loading a fresh copy.
	// Its bit pattern contains DontCache.
	Duplicate CachePolicy = 0b11

	policyMask CachePolicy = 0b11
)

// MaxFlagLevels is the number of hierarchy levels CacheFlags can address.
// Deeper levels always read as CacheEverything.
const MaxFlagLevels = 32

// CacheFlags packs one CachePolicy per hierarchy level, level 0 in the lowest
// two bits.
type CacheFlags uint64

const (
	CacheFlagsCacheEverything   CacheFlags = 0
	CacheFlagsDontCacheTopLevel CacheFlags = CacheFlags(DontCache)
	CacheFlagsDuplicateTopLevel CacheFlags = CacheFlags(Duplicate)

	// Every level but the top one.
	CacheFlagsDontCacheReferences CacheFlags = 0x5555555555555554
	CacheFlagsDuplicateReferences CacheFlags = 0xffffffffffffffff ^ CacheFlagsDuplicateTopLevel
)

// Level returns the policy for a hierarchy level.
func (f CacheFlags) Level(level uint32) CachePolicy {
	if level >= MaxFlagLevels {
		return CacheEverything
	}
	return CachePolicy(f>>(2*level)) & policyMask
}

// WithLevel returns a copy of f with the policy of one level replaced.
func (f CacheFlags) WithLevel(level uint32, p CachePolicy) CacheFlags {
	if level >= MaxFlagLevels {
		return f
	}
	shift := 2 * level
	f &^= CacheFlags(policyMask) << shift
	return f | CacheFlags(p&policyMask)<<shift
}

// SkipsLookup reports whether the cache must not be consulted.
func (p CachePolicy) SkipsLookup() bool {
	return p&Duplicate == Duplicate
}

// SkipsInsert reports whether results must not be inserted into the cache.
func (p CachePolicy) SkipsInsert() bool {
	return p&DontCache == DontCache
}

func (p CachePolicy) String() string {
	switch {
	case p.SkipsLookup():
		return "duplicate"
	case p.SkipsInsert():
		return "dont-cache"
	default:
		return "cache"
	}
}
