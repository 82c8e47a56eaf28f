package image

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format is an on-disk encoding of an Image, chosen by file extension.
type Format string

const (
	FormatManifest Format = "manifest"
	FormatBundle   Format = "bundle"
	// FormatRaw is flat machine code entered at offset zero with nothing to patch.
	FormatRaw Format = "raw"
)

func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatManifest, nil
	case ".cbor", ".epcp":
		return FormatBundle, nil
	case ".bin":
		return FormatRaw, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

func Load(path string) (Image, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return Image{}, err
	}

	if format == FormatManifest {
		img, err := LoadManifest(path)
		if err != nil {
			return Image{}, fmt.Errorf("load %s: %w", path, err)
		}
		return img, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, fmt.Errorf("read image: %w", err)
	}

	var img Image
	switch format {
	case FormatBundle:
		img, err = UnmarshalBundle(data)
	case FormatRaw:
		img = Image{Version: CurrentVersion, Arch: ArchAMD64, Code: data}
		err = img.Validate()
	}
	if err != nil {
		return Image{}, fmt.Errorf("load %s: %w", path, err)
	}
	return img, nil
}

func Save(path string, img Image) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case FormatManifest:
		data, err = MarshalManifest(img)
	case FormatBundle:
		data, err = MarshalBundle(img)
	case FormatRaw:
		if len(img.Relocations) > 0 || len(img.Imports) > 0 || img.Entry != 0 || img.BSSSize != 0 {
			return fmt.Errorf("%w: raw images cannot carry an entry offset, relocations, imports or bss", ErrInvalid)
		}
		err = img.Validate()
		data = img.Code
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	return nil
}
