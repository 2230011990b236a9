package input

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gdamore/tcell/v2"
)

// Rune aliases for keys that can't be bare single-char TOML keys
var runeAliases = map[string]rune{
	"space":     ' ',
	"backslash": '\\',
}

// keymapFile is the TOML layout:
//
//	[keys]
//	"Ctrl-N" = "next"
//	[runes]
//	n = "next"
//	q = "none"
type keymapFile struct {
	Keys  map[string]string `toml:"keys"`
	Runes map[string]string `toml:"runes"`
}

// LoadKeyConfig parses TOML keymap data into a sparse override KeyTable
// Only sections/keys present in TOML are populated
// Returns error on unknown action names, invalid key names, or parse failure
func LoadKeyConfig(data []byte) (*KeyTable, error) {
	var raw keymapFile
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, fmt.Errorf("keymap parse: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("keymap: unknown section %q", undecoded[0].String())
	}

	kt := &KeyTable{}

	if raw.Keys != nil {
		kt.Keys = make(map[tcell.Key]Command, len(raw.Keys))
		for name, action := range raw.Keys {
			k, ok := KeyByName(name)
			if !ok {
				return nil, fmt.Errorf("[keys] unknown key name: %q", name)
			}
			cmd, err := resolveAction(action)
			if err != nil {
				return nil, fmt.Errorf("[keys] key %q: %w", name, err)
			}
			kt.Keys[k] = cmd
		}
	}

	if raw.Runes != nil {
		kt.Runes = make(map[rune]Command, len(raw.Runes))
		for keyStr, action := range raw.Runes {
			r, err := resolveRune(keyStr)
			if err != nil {
				return nil, fmt.Errorf("[runes] key %q: %w", keyStr, err)
			}
			cmd, err := resolveAction(action)
			if err != nil {
				return nil, fmt.Errorf("[runes] key %q: %w", keyStr, err)
			}
			kt.Runes[r] = cmd
		}
	}

	return kt, nil
}

// resolveRune converts a TOML key string to a rune
// Accepts single characters and named aliases
func resolveRune(s string) (rune, error) {
	if r, ok := runeAliases[strings.ToLower(s)]; ok {
		return r, nil
	}
	runes := []rune(s)
	if len(runes) == 1 {
		return runes[0], nil
	}
	return 0, fmt.Errorf("invalid rune key: %q (expected single character or alias)", s)
}

func resolveAction(name string) (Command, error) {
	cmd, ok := CommandByName(name)
	if !ok {
		return CmdNone, fmt.Errorf("unknown action: %q", name)
	}
	return cmd, nil
}

// MergeKeyTable returns a new KeyTable with base values overridden by non-nil override maps
// Override entries bound to "none" delete the key from the result
func MergeKeyTable(base, override *KeyTable) *KeyTable {
	result := base.Clone()
	if override == nil {
		return result
	}
	if result.Keys == nil {
		result.Keys = make(map[tcell.Key]Command)
	}
	if result.Runes == nil {
		result.Runes = make(map[rune]Command)
	}
	mergeMap(result.Keys, override.Keys)
	mergeMap(result.Runes, override.Runes)
	return result
}

func mergeMap[K comparable](base, override map[K]Command) {
	for k, v := range override {
		if v == CmdNone {
			delete(base, k)
		} else {
			base[k] = v
		}
	}
}
