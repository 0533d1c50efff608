package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion_TotalOrder(t *testing.T) {
	ordered := []Version{
		Make(1, 0, 0),
		Make(1, 1, 0),
		Make(1, 1, 1),
		Make(2, 0, 0),
	}

	for i := 0; i < len(ordered)-1; i++ {
		assert.True(t, ordered[i].Less(ordered[i+1]),
			"%s should order before %s", ordered[i], ordered[i+1])
		assert.False(t, ordered[i+1].Less(ordered[i]))
	}

	// Antisymmetry and transitivity over a sampled triple.
	a, b, c := Make(1, 2, 3), Make(1, 4, 0), Make(3, 0, 0)
	assert.True(t, a.Less(b) && b.Less(c) && a.Less(c))
	assert.False(t, b.Less(a))
	assert.False(t, c.Less(b))
}

func TestVersion_BuildBreaksTies(t *testing.T) {
	lo := New(1, 2, 3, 100, FlagStable)
	hi := New(1, 2, 3, 150, FlagStable)

	assert.True(t, lo.Less(hi))
	assert.True(t, lo.Equal(lo))
	assert.False(t, lo.Equal(hi))
}

func TestVersion_FlagsDoNotOrder(t *testing.T) {
	stable := New(1, 2, 3, 0, FlagStable)
	beta := New(1, 2, 3, 0, FlagBeta)

	assert.Equal(t, 0, stable.Compare(beta))
	assert.True(t, stable.Equal(beta))
}

func TestParse_RoundTrip(t *testing.T) {
	tests := []Version{
		Make(0, 0, 1),
		Make(1, 2, 3),
		Make(10, 20, 30),
		New(1, 2, 3, 100, FlagStable),
	}

	for _, want := range tests {
		got, err := Parse(want.String())
		require.NoError(t, err, "parse %q", want.String())
		assert.Equal(t, want.Major, got.Major)
		assert.Equal(t, want.Minor, got.Minor)
		assert.Equal(t, want.Patch, got.Patch)
		assert.Equal(t, want.Build, got.Build)
	}
}

func TestParse_Variants(t *testing.T) {
	tests := []struct {
		in      string
		want    Version
		wantErr bool
	}{
		{in: "1.2.3", want: Make(1, 2, 3)},
		{in: "v1.2.3", want: Make(1, 2, 3)},
		{in: "1.2.3+42", want: New(1, 2, 3, 42, FlagStable)},
		{in: "", wantErr: true},
		{in: "1.2", wantErr: true},
		{in: "1.2.3.4", wantErr: true},
		{in: "a.b.c", wantErr: true},
		{in: "1.2.x", wantErr: true},
	}

	for _, tt := range tests {
		got, err := Parse(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidArgument, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.True(t, got.Equal(tt.want), "input %q", tt.in)
	}
}

func TestVersion_ContentHash(t *testing.T) {
	v := New(1, 2, 3, 0, FlagStable)
	assert.True(t, v.VerifyHash())

	// Same fields hash identically even across creation times.
	again := New(1, 2, 3, 0, FlagStable)
	assert.Equal(t, v.ContentHash, again.ContentHash)

	// Tampering is detectable.
	v.Patch = 9
	assert.False(t, v.VerifyHash())

	// The hash never participates in ordering.
	other := New(1, 2, 3, 0, FlagBeta)
	assert.NotEqual(t, v.ContentHash, other.ContentHash)
}

func TestVersion_Validate(t *testing.T) {
	assert.NoError(t, Make(1, 0, 0).Validate())
	assert.ErrorIs(t, Version{}.Validate(), ErrInvalidArgument)

	bad := Make(1, 0, 0)
	bad.Flags |= 1 << 30
	assert.ErrorIs(t, bad.Validate(), ErrInvalidArgument)
}

func TestFlags(t *testing.T) {
	f := FlagStable.With(FlagLTS)
	assert.True(t, f.Has(FlagStable))
	assert.True(t, f.Has(FlagLTS))
	assert.False(t, f.Has(FlagBeta))
	assert.False(t, f.HasUnknown())
	assert.Equal(t, "stable|lts", f.String())

	assert.True(t, (f | 1<<25).HasUnknown())
	assert.True(t, FlagBeta.IsPrerelease())
	assert.True(t, FlagSnapshot.IsPrerelease())
	assert.False(t, FlagStable.IsPrerelease())
	assert.Equal(t, "none", Flags(0).String())
}
