package survey

import (
	"encoding/base64"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	SecurityWPA3    = "WPA3"
	SecurityWPA2    = "WPA2"
	SecurityWPA     = "WPA"
	SecurityWEP     = "WEP"
	SecurityOpen    = "Open"
	SecurityUnknown = "Unknown"

	// maxInformationElements is the size of the buffer information elements are packed into
	maxInformationElements = 512
)

const (
	// StandardLegacy covers every 802.11 standard older than 802.11n
	StandardLegacy Standard = iota
	Standard11N
	Standard11AC
	Standard11AX
)

// Standard is the newest 802.11 standard a radio announced.
type Standard int

var standardNames = map[Standard]string{
	StandardLegacy: "legacy",
	Standard11N:    "11n",
	Standard11AC:   "11ac",
	Standard11AX:   "11ax",
}

func (s Standard) String() string {
	if name, ok := standardNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Standard(%d)", int(s))
}

// ParseStandard accepts the names returned by String, with or without the
// "11" prefix, in any case.
func ParseStandard(name string) (Standard, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for s, n := range standardNames {
		if name == n || "11"+name == n {
			return s, nil
		}
	}
	return StandardLegacy, fmt.Errorf("unknown 802.11 standard '%s'", name)
}

func (s Standard) MarshalYAML() (any, error) {
	return s.String(), nil
}

func (s *Standard) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseStandard(value.Value)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// InformationElement is a raw 802.11 information element.
type InformationElement struct {
	ID    byte   `yaml:"id" json:"id"`
	Value []byte `yaml:"value" json:"value"`
}

// ParseSecurity classifies a capabilities string such as "[WPA2-PSK-CCMP][ESS]".
// The strongest matching scheme wins.
func ParseSecurity(capabilities string) string {
	switch {
	case strings.Contains(capabilities, "WPA3"):
		return SecurityWPA3
	case strings.Contains(capabilities, "WPA2"):
		return SecurityWPA2
	case strings.Contains(capabilities, "WPA"):
		return SecurityWPA
	case strings.Contains(capabilities, "WEP"):
		return SecurityWEP
	case strings.Contains(capabilities, "ESS"):
		return SecurityOpen
	default:
		return SecurityUnknown
	}
}

// Technologies returns the sorted technology codes of a radio given its
// announced standard and frequency in MHz.
func Technologies(standard Standard, frequency int) []string {
	set := make(map[string]struct{})

	switch standard {
	case Standard11AX:
		set["AX"], set["AC"], set["N"] = struct{}{}, struct{}{}, struct{}{}
	case Standard11AC:
		set["AC"], set["N"] = struct{}{}, struct{}{}
	case Standard11N:
		set["N"] = struct{}{}
	}

	switch {
	case frequency >= 2400 && frequency <= 3000:
		set["G"], set["B"] = struct{}{}, struct{}{}
	case frequency > 3000:
		set["A"] = struct{}{}
	}

	techs := make([]string, 0, len(set))
	for tech := range set {
		techs = append(techs, tech)
	}
	slices.Sort(techs)
	return techs
}

// EncodeInformationElements packs elements as id/length/value triples and
// returns them base64 encoded. Elements not fitting into the buffer are skipped.
func EncodeInformationElements(elements []InformationElement) string {
	buf := make([]byte, 0, maxInformationElements)
	for _, ie := range elements {
		if len(ie.Value) > 255 || cap(buf)-len(buf) < 2+len(ie.Value) {
			continue
		}
		buf = append(buf, ie.ID, byte(len(ie.Value)))
		buf = append(buf, ie.Value...)
	}
	return base64.StdEncoding.EncodeToString(buf)
}

// Channel converts a center frequency in MHz to its 802.11 channel number.
// Frequencies outside the known bands are returned unchanged.
func Channel(frequency int) int {
	switch {
	case frequency == 2484:
		return 14
	case frequency >= 2412 && frequency <= 2472:
		return (frequency - 2407) / 5
	case frequency >= 5150 && frequency <= 5895:
		return (frequency - 5000) / 5
	case frequency >= 5955 && frequency <= 7115:
		return (frequency - 5950) / 5
	default:
		return frequency
	}
}
