package wininput

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Mouse button codes shared with the Linux backends (evdev numbering) so
// hotkey names behave the same on every platform.
const (
	CodeBTNLeft   uint16 = 0x110
	CodeBTNRight  uint16 = 0x111
	CodeBTNMiddle uint16 = 0x112
	CodeBTNSide   uint16 = 0x113
	CodeBTNExtra  uint16 = 0x114
)

const (
	codeKEYEsc       uint16 = 1
	codeKEYTab       uint16 = 15
	codeKEYEnter     uint16 = 28
	codeKEYSpace     uint16 = 57
	codeKEYBackspace uint16 = 14
	codeKEYCapsLock  uint16 = 58
)

var codeNames = map[uint16]string{
	CodeBTNLeft:      "BTN_LEFT",
	CodeBTNRight:     "BTN_RIGHT",
	CodeBTNMiddle:    "BTN_MIDDLE",
	CodeBTNSide:      "BTN_SIDE",
	CodeBTNExtra:     "BTN_EXTRA",
	codeKEYEsc:       "KEY_ESC",
	codeKEYTab:       "KEY_TAB",
	codeKEYEnter:     "KEY_ENTER",
	codeKEYSpace:     "KEY_SPACE",
	codeKEYBackspace: "KEY_BACKSPACE",
	codeKEYCapsLock:  "KEY_CAPSLOCK",
}

// Letter and digit codes follow the Linux input-event numbering.
var letterCodes = map[byte]uint16{
	'Q': 16, 'W': 17, 'E': 18, 'R': 19, 'T': 20, 'Y': 21, 'U': 22,
	'I': 23, 'O': 24, 'P': 25, 'A': 30, 'S': 31, 'D': 32, 'F': 33,
	'G': 34, 'H': 35, 'J': 36, 'K': 37, 'L': 38, 'Z': 44, 'X': 45,
	'C': 46, 'V': 47, 'B': 48, 'N': 49, 'M': 50,
}

var digitCodes = map[byte]uint16{
	'1': 2, '2': 3, '3': 4, '4': 5, '5': 6, '6': 7, '7': 8, '8': 9,
	'9': 10, '0': 11,
}

var fnKeyCodes = map[int]uint16{
	1: 59, 2: 60, 3: 61, 4: 62, 5: 63, 6: 64, 7: 65, 8: 66, 9: 67,
	10: 68, 11: 87, 12: 88,
}

var nameAliases = map[string]string{
	"BTN_BACK":    "BTN_SIDE",
	"BTN_FORWARD": "BTN_EXTRA",
}

var (
	nameToCode = map[string]uint16{}
	codeToVK   = map[uint16]uint32{}
	vkToCode   = map[uint32]uint16{}
)

const (
	vkBACK    uint32 = 0x08
	vkTAB     uint32 = 0x09
	vkRETURN  uint32 = 0x0D
	vkCAPITAL uint32 = 0x14
	vkESCAPE  uint32 = 0x1B
	vkSPACE   uint32 = 0x20
	vk0       uint32 = 0x30
	vkA       uint32 = 0x41
	vkF1      uint32 = 0x70
)

func init() {
	for code, name := range codeNames {
		nameToCode[name] = code
	}
	for letter, code := range letterCodes {
		nameToCode["KEY_"+string(letter)] = code
		codeNames[code] = "KEY_" + string(letter)
		registerVK(code, vkA+uint32(letter-'A'))
	}
	for digit, code := range digitCodes {
		nameToCode["KEY_"+string(digit)] = code
		codeNames[code] = "KEY_" + string(digit)
		registerVK(code, vk0+uint32(digit-'0'))
	}
	for n, code := range fnKeyCodes {
		name := fmt.Sprintf("KEY_F%d", n)
		nameToCode[name] = code
		codeNames[code] = name
		registerVK(code, vkF1+uint32(n-1))
	}

	registerVK(codeKEYEsc, vkESCAPE)
	registerVK(codeKEYTab, vkTAB)
	registerVK(codeKEYEnter, vkRETURN)
	registerVK(codeKEYSpace, vkSPACE)
	registerVK(codeKEYBackspace, vkBACK)
	registerVK(codeKEYCapsLock, vkCAPITAL)
}

func registerVK(code uint16, vk uint32) {
	codeToVK[code] = vk
	vkToCode[vk] = code
}

func ParseCode(value string) (uint16, error) {
	raw := strings.ToUpper(strings.TrimSpace(value))
	if raw == "" {
		return 0, fmt.Errorf("toggle code is empty")
	}
	if canonical, ok := nameAliases[raw]; ok {
		raw = canonical
	}
	if code, ok := nameToCode[raw]; ok {
		return code, nil
	}

	parsed, err := strconv.ParseInt(raw, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("unknown toggle %q: supported names are %s", value, supportedNamesHint())
	}
	if parsed < 0 || parsed > 0xFFFF {
		return 0, fmt.Errorf("toggle code out of range: %d", parsed)
	}
	return uint16(parsed), nil
}

func FormatCodeName(code uint16) string {
	if name, ok := codeNames[code]; ok {
		return name
	}
	return strconv.Itoa(int(code))
}

// CodeFromVK maps a virtual-key code from the keyboard hook onto the
// shared code namespace.
func CodeFromVK(vk uint32) (uint16, bool) {
	code, ok := vkToCode[vk]
	return code, ok
}

func supportedNamesHint() string {
	names := make([]string, 0, len(nameToCode))
	for name := range nameToCode {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) > 8 {
		names = names[:8]
	}
	return strings.Join(names, ", ") + ", ..."
}
