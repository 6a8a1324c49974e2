package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const displaySection = "Display"

// Equal reports whether both geometries are identical.
func (d DisplayCfg) Equal(o DisplayCfg) bool {
	return d == o
}

func (d DisplayCfg) prefs() [][2]string {
	return [][2]string{
		{"iSize H", strconv.Itoa(d.Height)},
		{"iSize W", strconv.Itoa(d.Width)},
		{"iLocation X", strconv.Itoa(d.LocationX)},
		{"iLocation Y", strconv.Itoa(d.LocationY)},
		{"bFull Screen", boolFlag(d.FullScreen)},
		{"bBorderless", boolFlag(d.Borderless)},
	}
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// EnsureDisplayPrefs rewrites the [Display] section of Fallout76Prefs.ini so
// the game starts with geometry d. Unrelated lines are kept as they are.
// It reports whether the file was changed.
func EnsureDisplayPrefs(path string, d DisplayCfg) (bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("error reading prefs %s: %w", path, err)
	}

	updated, changed := rewriteDisplaySection(string(raw), d)
	if !changed {
		return false, nil
	}

	if err = os.WriteFile(path, []byte(updated), 0644); err != nil {
		return false, fmt.Errorf("error writing prefs %s: %w", path, err)
	}

	return true, nil
}

func rewriteDisplaySection(content string, d DisplayCfg) (string, bool) {
	newline := "\n"
	if strings.Contains(content, "\r\n") {
		newline = "\r\n"
	}
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	wanted := d.prefs()
	seen := make(map[string]bool, len(wanted))
	changed := false

	start, end := -1, len(lines)
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, "]") {
			continue
		}
		name := strings.TrimSpace(trimmed[1 : len(trimmed)-1])
		if start >= 0 {
			end = i
			break
		}
		if strings.EqualFold(name, displaySection) {
			start = i
		}
	}

	if start < 0 {
		lines = append(lines, "["+displaySection+"]")
		start, end = len(lines)-1, len(lines)
		changed = true
	}

	for i := start + 1; i < end; i++ {
		key, value, ok := strings.Cut(lines[i], "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		for _, kv := range wanted {
			if !strings.EqualFold(key, kv[0]) {
				continue
			}
			seen[kv[0]] = true
			if strings.TrimSpace(value) != kv[1] {
				lines[i] = kv[0] + "=" + kv[1]
				changed = true
			}
		}
	}

	var missing []string
	for _, kv := range wanted {
		if !seen[kv[0]] {
			missing = append(missing, kv[0]+"="+kv[1])
		}
	}
	if len(missing) > 0 {
		changed = true
		tail := append([]string{}, lines[end:]...)
		lines = append(append(lines[:end], missing...), tail...)
	}

	return strings.Join(lines, newline) + newline, changed
}
