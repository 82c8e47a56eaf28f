package image

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest is the YAML form of an Image. The code is either inline hex or a
// raw file next to the manifest.
type Manifest struct {
	Version     int      `yaml:"version"`
	Arch        string   `yaml:"arch"`
	Entry       int      `yaml:"entry"`
	Code        string   `yaml:"code,omitempty"`
	CodeFile    string   `yaml:"codeFile,omitempty"`
	Relocations []int    `yaml:"relocations,omitempty"`
	Imports     []Import `yaml:"imports,omitempty"`
	BSSSize     int      `yaml:"bssSize,omitempty"`
}

func (m *Manifest) normalize() {
	if m.Version == 0 {
		m.Version = CurrentVersion
	}
	if m.Arch == "" {
		m.Arch = ArchAMD64
	}
}

// ParseManifest decodes a manifest. Relative codeFile paths resolve against dir.
func ParseManifest(data []byte, dir string) (Image, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Image{}, fmt.Errorf("parse manifest: %w", err)
	}
	m.normalize()

	var code []byte
	switch {
	case m.Code != "" && m.CodeFile != "":
		return Image{}, fmt.Errorf("%w: manifest sets both code and codeFile", ErrInvalid)
	case m.Code != "":
		decoded, err := hex.DecodeString(strings.Join(strings.Fields(m.Code), ""))
		if err != nil {
			return Image{}, fmt.Errorf("decode manifest code: %w", err)
		}
		code = decoded
	case m.CodeFile != "":
		path := m.CodeFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return Image{}, fmt.Errorf("read code file: %w", err)
		}
		code = raw
	}

	img := Image{
		Version:     m.Version,
		Arch:        m.Arch,
		Entry:       m.Entry,
		Code:        code,
		Relocations: m.Relocations,
		Imports:     m.Imports,
		BSSSize:     m.BSSSize,
	}
	if err := img.Validate(); err != nil {
		return Image{}, err
	}
	return img, nil
}

func LoadManifest(path string) (Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(data, filepath.Dir(path))
}

// MarshalManifest encodes img as YAML with the code inline.
func MarshalManifest(img Image) ([]byte, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	m := Manifest{
		Version:     img.Version,
		Arch:        img.Arch,
		Entry:       img.Entry,
		Code:        hex.EncodeToString(img.Code),
		Relocations: img.Relocations,
		Imports:     img.Imports,
		BSSSize:     img.BSSSize,
	}
	data, err := yaml.Marshal(&m)
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return data, nil
}
