package saved

import (
	"context"
	"fmt"
	"strings"
)

// ProfileNameKey is the storage key of the display name, kept beside the
// saved list on the same backend.
const ProfileNameKey = "profile_name_v1"

// Profile stores the on-device display name as raw text.
type Profile struct {
	backend Backend
}

func NewProfile(backend Backend) *Profile {
	return &Profile{backend: backend}
}

// Name returns the stored display name, or "" when none is set.
func (p *Profile) Name(ctx context.Context) (string, error) {
	raw, ok, err := p.backend.Get(ctx, ProfileNameKey)
	if err != nil {
		return "", fmt.Errorf("read profile name: %w", err)
	}
	if !ok {
		return "", nil
	}
	return string(raw), nil
}

// SetName stores name trimmed and returns what was stored.
func (p *Profile) SetName(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := p.backend.Set(ctx, ProfileNameKey, []byte(name)); err != nil {
		return "", fmt.Errorf("write profile name: %w", err)
	}
	return name, nil
}
