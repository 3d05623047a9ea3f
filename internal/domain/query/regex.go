package query

import (
	"fmt"
	"regexp"

	lru "github.com/hashicorp/golang-lru/v2"
)

// regexCacheSize bounds the compiled-pattern cache; the population is
// bounded by query diversity, so a small LRU is plenty.
const regexCacheSize = 256

var regexCache, _ = lru.New[string, *regexp.Regexp](regexCacheSize)

// compileRegex returns the compiled pattern, memoized by pattern string.
// The cache is safe for concurrent use.
func compileRegex(pattern string) (*regexp.Regexp, error) {
	if re, ok := regexCache.Get(pattern); ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q for $matches: %w", pattern, err)
	}
	regexCache.Add(pattern, re)
	return re, nil
}
