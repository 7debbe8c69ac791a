package entity

import (
	"fmt"
	"sort"
)

// Profile controls keyframe density and output encoding for a class of
// consuming devices. Profiles are a fixed enumerated set, not
// user-extensible.
type Profile struct {
	Name               string
	KeyframesPerMinute int
	Resolution         Resolution
	Quality            int // WebP quality 1-100
}

var profiles = map[string]Profile{
	"minimal": {
		Name:               "minimal",
		KeyframesPerMinute: 6,
		Resolution:         Resolution{Width: 384, Height: 216},
		Quality:            60,
	},
	"balanced": {
		Name:               "balanced",
		KeyframesPerMinute: 12,
		Resolution:         Resolution{Width: 512, Height: 288},
		Quality:            75,
	},
	"quality": {
		Name:               "quality",
		KeyframesPerMinute: 20,
		Resolution:         Resolution{Width: 640, Height: 360},
		Quality:            85,
	},
	"maximum": {
		Name:               "maximum",
		KeyframesPerMinute: 30,
		Resolution:         Resolution{Width: 854, Height: 480},
		Quality:            90,
	},
}

// ProfileByName returns the named device profile.
func ProfileByName(name string) (Profile, error) {
	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q, choose one of %v", name, ProfileNames())
	}
	return p, nil
}

// ProfileNames lists the available profile names in stable order.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
