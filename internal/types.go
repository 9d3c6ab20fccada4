package internal

import (
	"github.com/samber/lo"
)

// CastProviderOptions recovers a provider's typed options from the erased
// value a request carries. Anything else, including nil, comes back as the
// zero value of T.
func CastProviderOptions[T ProviderRequestOptions](opts ProviderRequestOptions) T {
	if opts == nil {
		return lo.FromPtr[T](nil)
	}

	if cast, ok := opts.(T); ok {
		return cast
	}

	return lo.FromPtr[T](nil)
}

// MaybeF64ToF32 narrows an optional float64 into the optional float32 the
// genai SDK takes for its sampling parameters.
func MaybeF64ToF32(f *float64) *float32 {
	if f == nil {
		return nil
	}

	return lo.ToPtr(float32(*f))
}

// MaybeIntToInt32 narrows an optional int the same way.
func MaybeIntToInt32(i *int) *int32 {
	if i == nil {
		return nil
	}

	return lo.ToPtr(int32(*i))
}
