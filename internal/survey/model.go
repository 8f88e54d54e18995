package survey

import (
	"errors"
	"fmt"
	"time"
)

// Network is a single wireless network observation as returned by the platform
// scanner. It is immutable once captured.
type Network struct {
	SSID                string   `yaml:"ssid" json:"ssid"`                               // Network name, may be empty for hidden networks
	BSSID               string   `yaml:"bssid" json:"bssid"`                             // MAC address of the emitting radio
	Level               int      `yaml:"level" json:"level"`                             // Signal level in dBm
	Frequency           int      `yaml:"frequency" json:"frequency"`                     // Center frequency in MHz
	Security            string   `yaml:"security" json:"security"`                       // Security classification, see ParseSecurity
	Technologies        []string `yaml:"technologies" json:"technologies"`               // Supported 802.11 technologies, see Technologies
	InformationElements string   `yaml:"informationElements" json:"informationElements"` // Base64 encoded raw information elements

	// Raw scanner fields, the classified fields above are derived from them
	// when a capture leaves those empty.
	Capabilities           string               `yaml:"capabilities,omitempty" json:"capabilities,omitempty"`                     // e.g. "[WPA2-PSK-CCMP][ESS]"
	Standard               *Standard            `yaml:"standard,omitempty" json:"standard,omitempty"`                             // Newest announced 802.11 standard
	RawInformationElements []InformationElement `yaml:"rawInformationElements,omitempty" json:"rawInformationElements,omitempty"` // Undecoded information elements
}

// complete fills Security, Technologies and InformationElements from the raw
// scanner fields. Values already present are kept.
func (n *Network) complete() {
	if n.Security == "" && n.Capabilities != "" {
		n.Security = ParseSecurity(n.Capabilities)
	}
	if n.Technologies == nil && n.Standard != nil {
		n.Technologies = Technologies(*n.Standard, n.Frequency)
	}
	if n.InformationElements == "" && len(n.RawInformationElements) > 0 {
		n.InformationElements = EncodeInformationElements(n.RawInformationElements)
	}
}

// ScanPoint is a single stationary scan tapped on the floor plan.
type ScanPoint struct {
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"` // When the scan completed
	X         float64   `yaml:"x" json:"x"`                 // Floor plan X coordinate in pixels
	Y         float64   `yaml:"y" json:"y"`                 // Floor plan Y coordinate in pixels
	Networks  []Network `yaml:"networks" json:"networks"`   // Networks observed by the scan
}

// Waypoint is a point of a walking path, Time is relative to the session start.
type Waypoint struct {
	Time int64   `yaml:"time" json:"time"` // Milliseconds since the session start
	X    float64 `yaml:"x" json:"x"`
	Y    float64 `yaml:"y" json:"y"`
}

// ScanEvent is a background scan completed while walking a continuous session.
type ScanEvent struct {
	CompletedAt int64     `yaml:"completedAt" json:"completedAt"` // Milliseconds since the session start
	Duration    int64     `yaml:"duration" json:"duration"`       // How long the scan took, in milliseconds
	Networks    []Network `yaml:"networks" json:"networks"`
}

// StartedAt returns the scan start relative to the session start, clamped to zero.
func (e ScanEvent) StartedAt() int64 {
	return max(e.CompletedAt-e.Duration, 0)
}

// ContinuousSession is a walking survey: an ordered path and the scans
// performed along it.
type ContinuousSession struct {
	ID        string      `yaml:"id" json:"id"`
	Start     time.Time   `yaml:"start" json:"start"`
	End       time.Time   `yaml:"end" json:"end"`
	Waypoints []Waypoint  `yaml:"waypoints" json:"waypoints"`
	Scans     []ScanEvent `yaml:"scans" json:"scans"`
}

// Duration returns the wall clock length of the session.
func (s *ContinuousSession) Duration() time.Duration {
	if s.End.Before(s.Start) {
		return 0
	}
	return s.End.Sub(s.Start)
}

// MapInfo describes the floor plan image the survey was taken on.
type MapInfo struct {
	FileName string `yaml:"fileName" json:"fileName"`
	Width    int    `yaml:"width" json:"width"`
	Height   int    `yaml:"height" json:"height"`
}

// Photo is an image attached to a note.
type Photo struct {
	FileName string `yaml:"fileName" json:"fileName"`
	Width    int    `yaml:"width" json:"width"`
	Height   int    `yaml:"height" json:"height"`
}

// Note is a free form annotation pinned to the floor plan.
type Note struct {
	Text  string  `yaml:"text" json:"text"`
	Photo *Photo  `yaml:"photo,omitempty" json:"photo,omitempty"`
	X     float64 `yaml:"x" json:"x"`
	Y     float64 `yaml:"y" json:"y"`
}

// Capture is everything recorded on one floor plan: the input of an export.
type Capture struct {
	Name          string              `yaml:"name" json:"name"`
	Map           *MapInfo            `yaml:"map" json:"map"`
	MetersPerUnit *float64            `yaml:"metersPerUnit,omitempty" json:"metersPerUnit,omitempty"` // Calibrated scale, nil if never calibrated
	ScanPoints    []ScanPoint         `yaml:"scanPoints" json:"scanPoints"`
	Sessions      []ContinuousSession `yaml:"sessions" json:"sessions"`
	Notes         []Note              `yaml:"notes" json:"notes"`
}

// Validate checks the capture holds what an export needs.
func (c *Capture) Validate() error {
	if c.Map == nil {
		return errors.New("survey.Capture: map is required")
	}
	if c.Map.FileName == "" {
		return errors.New("survey.Capture: map file name is required")
	}
	if c.Map.Width < 0 || c.Map.Height < 0 {
		return fmt.Errorf("survey.Capture: invalid map size %dx%d", c.Map.Width, c.Map.Height)
	}
	if c.MetersPerUnit != nil && *c.MetersPerUnit <= 0 {
		return fmt.Errorf("survey.Capture: meters per unit must be positive: %f", *c.MetersPerUnit)
	}

	for i, session := range c.Sessions {
		if session.End.Before(session.Start) {
			return fmt.Errorf("survey.Capture: session %d ends before it starts", i)
		}
	}

	for i, note := range c.Notes {
		if note.Text == "" && note.Photo == nil {
			return fmt.Errorf("survey.Capture: note %d has neither text nor photo", i)
		}
		if note.Photo != nil && note.Photo.FileName == "" {
			return fmt.Errorf("survey.Capture: note %d photo has no file name", i)
		}
	}

	return nil
}

// complete derives the classified network fields of every observation.
func (c *Capture) complete() {
	for i := range c.ScanPoints {
		for j := range c.ScanPoints[i].Networks {
			c.ScanPoints[i].Networks[j].complete()
		}
	}
	for i := range c.Sessions {
		for j := range c.Sessions[i].Scans {
			for k := range c.Sessions[i].Scans[j].Networks {
				c.Sessions[i].Scans[j].Networks[k].complete()
			}
		}
	}
}
