package version

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Version is an immutable semantic version. Treat values as read-only once
// created; every constructor returns a fresh value.
type Version struct {
	Major uint32
	Minor uint32
	Patch uint32
	Build uint32

	// Flags describe release characteristics. They never participate in
	// ordering, only in compatibility classification.
	Flags Flags

	// Timestamp records when the version value was created.
	Timestamp time.Time

	// ContentHash is an opaque integrity token over the numeric fields and
	// flags. It is not used for ordering.
	ContentHash uint64
}

// New creates a version with the given numeric fields and flags. The content
// hash is computed eagerly so the value is self-verifying.
func New(major, minor, patch, build uint32, flags Flags) Version {
	v := Version{
		Major:     major,
		Minor:     minor,
		Patch:     patch,
		Build:     build,
		Flags:     flags,
		Timestamp: time.Now().UTC(),
	}
	v.ContentHash = v.computeHash()
	return v
}

// Make is shorthand for a plain stable version without build metadata.
func Make(major, minor, patch uint32) Version {
	return New(major, minor, patch, 0, FlagStable)
}

// Compare returns -1, 0, or 1 ordering v against other. The order is
// lexicographic on (major, minor, patch), then build. Flags and hashes are
// ignored.
func (v Version) Compare(other Version) int {
	if c := compareUint32(v.Major, other.Major); c != 0 {
		return c
	}
	if c := compareUint32(v.Minor, other.Minor); c != 0 {
		return c
	}
	if c := compareUint32(v.Patch, other.Patch); c != 0 {
		return c
	}
	return compareUint32(v.Build, other.Build)
}

// Less reports whether v orders strictly before other.
func (v Version) Less(other Version) bool {
	return v.Compare(other) < 0
}

// Equal reports whether the numeric fields match. Flags are intentionally
// excluded: 1.2.3-beta and 1.2.3-stable are the same version.
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

// String renders the version as "major.minor.patch", with "+build" appended
// when a build number is present. Parse accepts this format back.
func (v Version) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Build != 0 {
		fmt.Fprintf(&b, "+%d", v.Build)
	}
	return b.String()
}

// Validate reports whether the version is well-formed: at least one numeric
// field non-zero and no unknown flag bits.
func (v Version) Validate() error {
	if v.Major == 0 && v.Minor == 0 && v.Patch == 0 && v.Build == 0 {
		return fmt.Errorf("%w: zero version", ErrInvalidArgument)
	}
	if v.Flags.HasUnknown() {
		return fmt.Errorf("%w: unknown flag bits 0x%x", ErrInvalidArgument, uint32(v.Flags&^knownFlags))
	}
	return nil
}

// VerifyHash recomputes the content hash and compares it against the stored
// one. A mismatch means the value was tampered with after creation.
func (v Version) VerifyHash() bool {
	return v.ContentHash == v.computeHash()
}

// computeHash derives the integrity token: SHA-256 over the serialized
// numeric fields and flags, truncated to 64 bits. Timestamp is excluded so
// two versions with identical fields hash identically.
func (v Version) computeHash() uint64 {
	var buf [20]byte
	binary.BigEndian.PutUint32(buf[0:], v.Major)
	binary.BigEndian.PutUint32(buf[4:], v.Minor)
	binary.BigEndian.PutUint32(buf[8:], v.Patch)
	binary.BigEndian.PutUint32(buf[12:], v.Build)
	binary.BigEndian.PutUint32(buf[16:], uint32(v.Flags))
	sum := sha256.Sum256(buf[:])
	return binary.BigEndian.Uint64(sum[:8])
}

// Parse parses a version string produced by String. A leading "v" is
// accepted, as is a trailing "+build" component.
func Parse(s string) (Version, error) {
	s = strings.TrimSpace(strings.TrimPrefix(s, "v"))
	if s == "" {
		return Version{}, fmt.Errorf("%w: empty version string", ErrInvalidArgument)
	}

	var build uint32
	if idx := strings.IndexByte(s, '+'); idx != -1 {
		b, err := parseField(s[idx+1:], "build")
		if err != nil {
			return Version{}, err
		}
		build = b
		s = s[:idx]
	}

	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("%w: expected major.minor.patch, got %q", ErrInvalidArgument, s)
	}

	major, err := parseField(parts[0], "major")
	if err != nil {
		return Version{}, err
	}
	minor, err := parseField(parts[1], "minor")
	if err != nil {
		return Version{}, err
	}
	patch, err := parseField(parts[2], "patch")
	if err != nil {
		return Version{}, err
	}

	return New(major, minor, patch, build, FlagStable), nil
}

// MustParse is Parse that panics on malformed input. Intended for constants
// and tests.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func parseField(s, name string) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s component %q", ErrInvalidArgument, name, s)
	}
	return uint32(n), nil
}

func compareUint32(a, b uint32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
