package fusionmodel

import "encoding/json"

// Model is a trained late-fusion model file as stored on disk.
//
//	{
//	  "architecture": "Late Fusion",
//	  "version": "1.0",
//	  "weights": { ... },
//	  "config": { ... }
//	}
type Model struct {
	Architecture string          `json:"architecture"`
	Version      string          `json:"version"`
	Weights      json.RawMessage `json:"weights,omitempty"`
	Config       json.RawMessage `json:"config,omitempty"`
}

// DefaultArchitecture is reported when the file does not name one.
const DefaultArchitecture = "Late Fusion"

// HasWeights reports whether the file carried a non-null weights section.
func (m *Model) HasWeights() bool {
	if m == nil || len(m.Weights) == 0 {
		return false
	}
	return string(m.Weights) != "null"
}

// Info is the public summary returned after loading.
type Info struct {
	Architecture string `json:"architecture"`
	Version      string `json:"version"`
}

func (m *Model) Info() Info {
	return Info{Architecture: m.Architecture, Version: m.Version}
}
