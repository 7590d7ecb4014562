// Package featureflags evaluates runtime kill-switches and gradual rollouts
// for platform modules.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// Module flags checked by the API layer. Unset flags fall back to the
// default passed at the call site, so a blank FEATURE_FLAGS config leaves
// every module on.
const (
	FlagCommunity  = "community"
	FlagContests   = "contests"
	FlagCurriculum = "curriculum"
	FlagSeasons    = "seasons"
)

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "contests=on,curriculum=off,community=25%"
type Manager struct {
	flags map[string]string
}

// NewManager creates a feature-flag manager from a comma-separated config string.
func NewManager(raw string) *Manager {
	out := make(map[string]string)

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := normalize(parts[0])
		value := normalize(parts[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}

	return &Manager{flags: out}
}

// Enabled returns whether a flag is enabled for a given user.
// Supported values:
// - on/true/1
// - off/false/0
// - N% (deterministic user rollout, e.g. 25%)
// Unknown flags evaluate false; use EnabledOrDefault when absence should
// mean "on".
func (m *Manager) Enabled(name string, userID uint) bool {
	enabled, _ := m.lookup(name, userID)
	return enabled
}

// EnabledOrDefault evaluates a flag, returning def when the flag is not
// configured at all. Module kill-switches use def=true so that only an
// explicit "off" (or partial rollout) changes behavior.
func (m *Manager) EnabledOrDefault(name string, userID uint, def bool) bool {
	enabled, found := m.lookup(name, userID)
	if !found {
		return def
	}
	return enabled
}

func (m *Manager) lookup(name string, userID uint) (enabled, found bool) {
	if m == nil {
		return false, false
	}

	value, ok := m.flags[normalize(name)]
	if !ok {
		return false, false
	}

	switch value {
	case "on", "true", "1":
		return true, true
	case "off", "false", "0":
		return false, true
	}

	if strings.HasSuffix(value, "%") {
		pctRaw := strings.TrimSuffix(value, "%")
		pct, err := strconv.Atoi(pctRaw)
		if err != nil {
			return false, true
		}
		if pct <= 0 {
			return false, true
		}
		if pct >= 100 {
			return true, true
		}
		if userID == 0 {
			return false, true
		}
		return rolloutBucket(name, userID) < pct, true
	}

	return false, true
}

// Raw returns a copy of configured flags.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.flags))
	for k, v := range m.flags {
		out[k] = v
	}
	return out
}

// Snapshot returns evaluated flag status for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(m.flags))
	for name := range m.flags {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s:%d", normalize(name), userID)))
	return int(h.Sum32() % 100)
}
